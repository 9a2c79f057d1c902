package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/definition"
	"github.com/jabolina/go-discover/pkg/discover/types"
)

// HelloLoop periodically builds and broadcasts the local peer's hello
// datagram (§4.4). It never runs in client mode.
type HelloLoop struct {
	processID  string
	instanceID string
	opts       *types.Options
	state      *LocalState
	transport  Transport
	log        types.Logger
	recorder   definition.Recorder
	sink       EventSink

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHelloLoop builds a loop bound to the given identity, options,
// election state and transport. It does nothing until Start is called.
func NewHelloLoop(processID, instanceID string, opts *types.Options, state *LocalState, transport Transport, log types.Logger, recorder definition.Recorder, sink EventSink) *HelloLoop {
	return &HelloLoop{
		processID:  processID,
		instanceID: instanceID,
		opts:       opts,
		state:      state,
		transport:  transport,
		log:        log,
		recorder:   recorder,
		sink:       sink,
	}
}

// Start launches the loop goroutine. A no-op when opts.Client() is true
// (§4.4: "the loop runs only if client mode is false").
func (h *HelloLoop) Start() {
	if h.opts.Client() {
		return
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.done = make(chan struct{})
	go h.run()
}

// Stop cancels the loop and waits for its goroutine to exit. Safe to call
// even if Start was a no-op (client mode).
func (h *HelloLoop) Stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *HelloLoop) run() {
	defer close(h.done)
	for {
		h.emit()

		// Changes to helloInterval take effect on the following
		// iteration, not immediately (§4.4) — re-reading it each pass
		// is enough to satisfy that.
		select {
		case <-h.ctx.Done():
			return
		case <-time.After(h.opts.HelloInterval()):
		}
	}
}

func (h *HelloLoop) emit() {
	data := types.HelloData{
		IsMaster:         h.state.IsMaster(),
		IsMasterEligible: h.state.IsEligible(),
		Weight:           h.opts.Weight(),
		Address:          h.opts.Address(),
		Advertisement:    h.opts.Advertisement(),
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		h.log.Errorf("discover: failed marshalling hello data: %v", err)
		return
	}

	envelope := types.Envelope{
		Event:    types.ReservedHelloEvent,
		Pid:      h.processID,
		Iid:      h.instanceID,
		HostName: h.opts.HostName(),
		Data:     dataBytes,
	}
	buf, err := envelope.Encode()
	if err != nil {
		h.log.Errorf("discover: failed encoding hello: %v", err)
		return
	}

	if err := h.transport.Send(buf); err != nil {
		h.log.Warnf("discover: failed sending hello: %v", err)
		return
	}
	h.recorder.HelloSent()
	h.sink(types.TopicHelloEmitted, nil, &envelope)
}
