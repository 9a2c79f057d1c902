package core

import (
	"testing"

	"github.com/jabolina/go-discover/pkg/discover/definition"
	"github.com/jabolina/go-discover/pkg/discover/types"
)

func newTestCheckLoop(t *testing.T, table *PeerTable, state *LocalState, weight float64, mastersRequired int) (*CheckLoop, *[]types.Topic) {
	t.Helper()
	opts := types.DefaultOptions()
	if err := opts.SetOption("weight", weight); err != nil {
		t.Fatalf("SetOption(weight): %v", err)
	}
	if err := opts.SetOption("mastersRequired", mastersRequired); err != nil {
		t.Fatalf("SetOption(mastersRequired): %v", err)
	}
	var topics []types.Topic
	loop := NewCheckLoop(opts, state, table, testLogger{}, definition.NewNoopRecorder(),
		func(topic types.Topic, peer *types.Peer, envelope *types.Envelope) { topics = append(topics, topic) },
		func() int64 { return 0 })
	return loop, &topics
}

func TestCheckLoopPromotesWhenNoHigherWeightPeer(t *testing.T) {
	table := NewPeerTable()
	table.Upsert("p1", "i1", "h", "10.0.0.1", 1, helloData(false, true, -0.9), 0)
	state := NewLocalState(true)

	loop, topics := newTestCheckLoop(t, table, state, -0.1, 1)
	loop.tick()

	if !state.IsMaster() {
		t.Fatalf("expected instance to self-promote when no peer outweighs it")
	}
	if !containsTopic(*topics, types.TopicPromotion) {
		t.Fatalf("expected a promotion topic to fire, got %v", *topics)
	}
}

func TestCheckLoopDoesNotPromoteWhenHigherWeightEligiblePeerExists(t *testing.T) {
	table := NewPeerTable()
	table.Upsert("p1", "i1", "h", "10.0.0.1", 1, helloData(false, true, 0.9), 0)
	state := NewLocalState(true)

	loop, topics := newTestCheckLoop(t, table, state, -0.1, 1)
	loop.tick()

	if state.IsMaster() {
		t.Fatalf("expected instance not to self-promote while a higher-weight eligible peer exists")
	}
	if containsTopic(*topics, types.TopicPromotion) {
		t.Fatalf("did not expect a promotion topic, got %v", *topics)
	}
}

func TestCheckLoopDemotesWhenEnoughHigherWeightMasters(t *testing.T) {
	table := NewPeerTable()
	table.Upsert("p1", "i1", "h", "10.0.0.1", 1, helloData(true, true, 0.9), 0)
	state := NewLocalState(true)
	state.SetMaster(true)

	loop, topics := newTestCheckLoop(t, table, state, -0.1, 1)
	loop.tick()

	if state.IsMaster() {
		t.Fatalf("expected instance to demote once mastersHigherWeight >= mastersRequired")
	}
	if !containsTopic(*topics, types.TopicDemotion) {
		t.Fatalf("expected a demotion topic to fire, got %v", *topics)
	}
}

func TestCheckLoopAlwaysFiresCheckTopic(t *testing.T) {
	table := NewPeerTable()
	state := NewLocalState(true)
	loop, topics := newTestCheckLoop(t, table, state, -0.1, 1)
	loop.tick()
	if !containsTopic(*topics, types.TopicCheck) {
		t.Fatalf("expected check topic to always fire, got %v", *topics)
	}
}

func TestCheckLoopFiresRemovedForExpiredPeers(t *testing.T) {
	table := NewPeerTable()
	table.Upsert("p1", "i1", "h", "10.0.0.1", 1, helloData(false, true, -0.9), -1000)
	state := NewLocalState(true)
	loop, topics := newTestCheckLoop(t, table, state, -0.1, 1)
	loop.tick()
	if !containsTopic(*topics, types.TopicRemoved) {
		t.Fatalf("expected removed topic for an aged-out peer, got %v", *topics)
	}
}

func containsTopic(topics []types.Topic, want types.Topic) bool {
	for _, tp := range topics {
		if tp == want {
			return true
		}
	}
	return false
}
