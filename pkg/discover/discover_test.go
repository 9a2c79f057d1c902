package discover

import (
	"encoding/json"
	"testing"

	"github.com/jabolina/go-discover/pkg/discover/types"
)

func TestNewAssignsSeparateInstanceIDsSharedProcessID(t *testing.T) {
	a := New(nil)
	b := New(nil)
	if a.ProcessID != b.ProcessID {
		t.Fatalf("expected instances in the same process to share a processID: %s != %s", a.ProcessID, b.ProcessID)
	}
	if a.InstanceID == b.InstanceID {
		t.Fatalf("expected distinct instanceIDs, got %s twice", a.InstanceID)
	}
}

func TestInstancePromoteSetsMasterAndEligible(t *testing.T) {
	i := New(nil)
	i.Demote(true)
	if i.IsMaster() || i.IsMasterEligible() {
		t.Fatalf("expected permanent demote to clear both flags")
	}
	i.Promote()
	if !i.IsMaster() || !i.IsMasterEligible() {
		t.Fatalf("expected Promote to set both master and eligible")
	}
}

func TestInstanceDemoteTemporaryKeepsEligible(t *testing.T) {
	i := New(nil)
	i.Promote()
	i.Demote(false)
	if i.IsMaster() {
		t.Fatalf("expected Demote(false) to clear master")
	}
	if !i.IsMasterEligible() {
		t.Fatalf("expected Demote(false) to leave eligibility untouched")
	}
}

func TestInstanceOnRegistersCallback(t *testing.T) {
	i := New(nil)
	fired := false
	i.On(types.TopicCheck, func(peer *types.Peer, envelope *types.Envelope, err error, user interface{}) {
		fired = true
	}, nil)
	i.emit(types.TopicCheck, nil, nil)
	if !fired {
		t.Fatalf("expected registered callback to fire on emit")
	}
}

func TestInstanceJoinAndLeave(t *testing.T) {
	i := New(nil)
	fired := false
	if err := i.Join("topic\\.a", func(event string, payload interface{}, user interface{}) {
		fired = true
	}, nil); err != nil {
		t.Fatalf("Join: %v", err)
	}
	i.channels.Dispatch("topic.a", nil)
	if !fired {
		t.Fatalf("expected join to register a live binding")
	}

	i.Leave("topic\\.a")
	fired = false
	i.channels.Dispatch("topic.a", nil)
	if fired {
		t.Fatalf("expected leave to remove the binding")
	}
}

func TestInstanceAdvertiseSetsOption(t *testing.T) {
	i := New(nil)
	if err := i.Advertise(map[string]string{"role": "worker"}); err != nil {
		t.Fatalf("Advertise: %v", err)
	}
	raw := i.opts.Advertisement()
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal advertisement: %v", err)
	}
	if got["role"] != "worker" {
		t.Fatalf("advertisement not stored: %v", got)
	}
}

func TestInstanceSendRejectsReservedEvent(t *testing.T) {
	i := New(nil)
	if err := i.Send(types.ReservedHelloEvent, nil); err == nil {
		t.Fatalf("expected Send to reject the reserved hello event")
	}
}

func TestInstanceSetGetOption(t *testing.T) {
	i := New(nil)
	if err := i.SetOption("mastersRequired", 3); err != nil {
		t.Fatalf("SetOption: %v", err)
	}
	got, err := i.GetOption("mastersRequired")
	if err != nil {
		t.Fatalf("GetOption: %v", err)
	}
	if got.(int) != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestInstanceReleaseIsIdempotentBeforeStart(t *testing.T) {
	i := New(nil)
	if err := i.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := i.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if err := i.SetOption("weight", 0.1); err != types.ErrReleased {
		t.Fatalf("expected SetOption after release to return ErrReleased, got %v", err)
	}
}
