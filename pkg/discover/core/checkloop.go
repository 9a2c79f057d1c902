package core

import (
	"context"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/definition"
	"github.com/jabolina/go-discover/pkg/discover/types"
)

// CheckLoop periodically ages peers and re-evaluates the election rule
// (§4.5). Promotion/demotion is purely a function of locally observed
// peer state; there is no election message round-trip.
type CheckLoop struct {
	opts     *types.Options
	state    *LocalState
	table    *PeerTable
	log      types.Logger
	recorder definition.Recorder
	sink     EventSink
	now      func() int64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCheckLoop builds a loop bound to the given options, election state
// and peer table. It does nothing until Start is called.
func NewCheckLoop(opts *types.Options, state *LocalState, table *PeerTable, log types.Logger, recorder definition.Recorder, sink EventSink, now func() int64) *CheckLoop {
	return &CheckLoop{
		opts:     opts,
		state:    state,
		table:    table,
		log:      log,
		recorder: recorder,
		sink:     sink,
		now:      now,
	}
}

// Start launches the loop goroutine. Unlike the hello loop this runs in
// every mode, including client mode, since a client still needs to age
// out dead peers.
func (c *CheckLoop) Start() {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.done = make(chan struct{})
	go c.run()
}

// Stop cancels the loop and waits for its goroutine to exit.
func (c *CheckLoop) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

func (c *CheckLoop) run() {
	defer close(c.done)
	for {
		c.tick()

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.opts.CheckInterval()):
		}
	}
}

// tick implements §4.5 steps 1-5 for a single iteration.
func (c *CheckLoop) tick() {
	now := c.now()

	removed := c.table.Sweep(now, c.opts.NodeTimeout(), c.opts.MasterTimeout())
	for _, peer := range removed {
		c.recorder.PeerRemoved()
		c.sink(types.TopicRemoved, peer, nil)
	}
	c.recorder.PeersGauge(c.table.Len())

	_, mastersHigherWeight, anyEligibleHigherWeight := c.table.Summary(c.opts.Weight())
	mastersRequired := c.opts.MastersRequired()

	switch {
	case c.state.IsMaster() && mastersHigherWeight >= mastersRequired:
		c.state.SetMaster(false)
		c.recorder.Demoted()
		c.sink(types.TopicDemotion, nil, nil)
	case !c.state.IsMaster() && !c.opts.Client() && c.state.IsEligible() && mastersHigherWeight < mastersRequired && !anyEligibleHigherWeight:
		c.state.SetMaster(true)
		c.recorder.Promoted()
		c.sink(types.TopicPromotion, nil, nil)
	}

	c.sink(types.TopicCheck, nil, nil)
}
