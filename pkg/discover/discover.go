// Package discover implements a decentralized peer-discovery and
// master-election core: processes on an IP network (re)discover one
// another over UDP, elect one or more "master" peers by weighted
// consensus with no coordinator round-trip, and exchange named
// application messages over a regex-matched pub/sub layered on the same
// transport.
package discover

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/core"
	"github.com/jabolina/go-discover/pkg/discover/definition"
	"github.com/jabolina/go-discover/pkg/discover/helper"
	"github.com/jabolina/go-discover/pkg/discover/types"
)

var (
	hostProcessOnce sync.Once
	hostProcessID   string
)

// currentProcessID returns a v4 UUID that's stable for the life of the
// host process and shared by every Instance created in it unless
// overridden (§3: "intended to be shared if multiple instances live in
// one process").
func currentProcessID() string {
	hostProcessOnce.Do(func() {
		hostProcessID = helper.GenerateID()
	})
	return hostProcessID
}

type registeredCallback struct {
	cb   types.Callback
	user interface{}
}

// Instance is the running object described by §3: it owns its transport,
// its peer table and its channel registry exclusively, and exposes the
// operation surface of §6 (create/setOption/start/on/advertise/promote/
// demote/join/leave/send/release).
type Instance struct {
	ProcessID  string
	InstanceID string

	opts     *types.Options
	state    *core.LocalState
	table    *core.PeerTable
	channels *core.ChannelRegistry
	invoker  core.Invoker
	log      types.Logger
	recorder definition.Recorder

	transport  core.Transport
	dispatcher *core.Dispatcher
	helloLoop  *core.HelloLoop
	checkLoop  *core.CheckLoop

	mu        sync.Mutex
	callbacks map[types.Topic]registeredCallback
	started   bool
	released  bool
}

// New creates an Instance (§6 "create"). opts may be nil, in which case
// types.DefaultOptions() is used. The instance isn't bound to a socket or
// running any loop until Start is called.
func New(opts *types.Options) *Instance {
	if opts == nil {
		opts = types.DefaultOptions()
	}
	return &Instance{
		ProcessID:  currentProcessID(),
		InstanceID: helper.GenerateID(),
		opts:       opts,
		state:      core.NewLocalState(true),
		table:      core.NewPeerTable(),
		channels:   core.NewChannelRegistry(),
		invoker:    core.NewInvoker(),
		log:        definition.NewDefaultLogger(),
		recorder:   definition.NewNoopRecorder(),
		callbacks:  make(map[types.Topic]registeredCallback),
	}
}

// SetLogger overrides the default logrus-backed logger. Must be called
// before Start.
func (i *Instance) SetLogger(log types.Logger) {
	i.log = log
}

// SetRecorder overrides the default no-op metrics recorder. Must be
// called before Start.
func (i *Instance) SetRecorder(r definition.Recorder) {
	i.recorder = r
}

// SetOption routes a string-keyed option write to its typed field (§6,
// §9). Returns ErrReleased after Release.
func (i *Instance) SetOption(name string, value interface{}) error {
	i.mu.Lock()
	released := i.released
	i.mu.Unlock()
	if released {
		return types.ErrReleased
	}
	return i.opts.SetOption(name, value)
}

// GetOption is the read-side counterpart of SetOption.
func (i *Instance) GetOption(name string) (interface{}, error) {
	return i.opts.GetOption(name)
}

// On registers the callback for one of the nine topics (§6). Re-registering
// the same topic replaces the previous binding.
func (i *Instance) On(topic types.Topic, cb types.Callback, user interface{}) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.callbacks[topic] = registeredCallback{cb: cb, user: user}
}

// emit is the EventSink passed to the dispatcher/loops: it looks up the
// registered callback for topic (if any) and invokes it.
func (i *Instance) emit(topic types.Topic, peer *types.Peer, envelope *types.Envelope) {
	i.mu.Lock()
	reg, ok := i.callbacks[topic]
	i.mu.Unlock()
	if !ok {
		return
	}
	reg.cb(peer, envelope, nil, reg.user)
}

func (i *Instance) emitError(err error) {
	i.mu.Lock()
	reg, ok := i.callbacks[types.TopicError]
	i.mu.Unlock()
	if !ok {
		return
	}
	reg.cb(nil, nil, err, reg.user)
}

// Advertise sets the JSON advertisement payload attached to every future
// hello (§6).
func (i *Instance) Advertise(v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	i.opts.SetAdvertisement(raw)
	return nil
}

// Promote makes this instance master immediately and marks it eligible
// again, overriding a prior permanent demotion (§6).
func (i *Instance) Promote() {
	i.state.SetEligible(true)
	i.state.SetMaster(true)
}

// Demote clears the local master flag. If permanent is true, eligibility
// is cleared too: no check iteration will set isMaster back to true until
// a subsequent explicit Promote (§3, §8).
func (i *Instance) Demote(permanent bool) {
	i.state.SetMaster(false)
	if permanent {
		i.state.SetEligible(false)
	}
}

// Join binds cb to the given regex event pattern (§6).
func (i *Instance) Join(event string, cb types.ChannelCallback, user interface{}) error {
	return i.channels.Join(event, cb, user)
}

// Leave removes the binding for the exact event string (§6).
func (i *Instance) Leave(event string) {
	i.channels.Leave(event)
}

// Send publishes payload under event (§6). event must not be "hello",
// which is reserved for the core's own heartbeat.
func (i *Instance) Send(event string, payload interface{}) error {
	if event == types.ReservedHelloEvent {
		return fmt.Errorf("discover: %q is a reserved event name", types.ReservedHelloEvent)
	}
	i.mu.Lock()
	released := i.released
	transport := i.transport
	i.mu.Unlock()
	if released {
		return types.ErrReleased
	}
	if transport == nil {
		return fmt.Errorf("discover: instance not started")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope := types.Envelope{
		Event:    event,
		Pid:      i.ProcessID,
		Iid:      i.InstanceID,
		HostName: i.opts.HostName(),
		Data:     data,
	}
	buf, err := envelope.Encode()
	if err != nil {
		return err
	}
	return transport.Send(buf)
}

// Start binds the transport and launches the hello and check loops (§6,
// §3: "started explicitly"). A bind failure is returned here and also
// reported through the error callback (§7).
func (i *Instance) Start() error {
	i.mu.Lock()
	if i.released {
		i.mu.Unlock()
		return types.ErrReleased
	}
	if i.started {
		i.mu.Unlock()
		return types.ErrAlreadyStarted
	}
	i.started = true
	i.mu.Unlock()

	transport, err := core.NewTransport(i.opts, i.invoker, i.log)
	if err != nil {
		return err
	}
	transport.OnError(i.emitError)
	transport.OnMessage(func(addr string, port int, payload []byte) {
		i.dispatcher.HandleDatagram(addr, port, payload)
	})

	i.dispatcher = core.NewDispatcher(i.ProcessID, i.InstanceID, i.opts, i.table, i.channels, i.log, i.recorder, i.emit, nowSeconds)

	if err := transport.Start(); err != nil {
		return err
	}
	i.transport = transport

	i.helloLoop = core.NewHelloLoop(i.ProcessID, i.InstanceID, i.opts, i.state, i.transport, i.log, i.recorder, i.emit)
	i.checkLoop = core.NewCheckLoop(i.opts, i.state, i.table, i.log, i.recorder, i.emit, nowSeconds)

	i.helloLoop.Start()
	i.checkLoop.Start()
	return nil
}

// nowSeconds is the clock used for peer lastSeen/expiry comparisons (§3:
// "wall-clock seconds are acceptable given the timeout scales").
func nowSeconds() int64 {
	return time.Now().Unix()
}

// Release stops both loops, closes the transport, and waits for in-flight
// datagram handlers to finish (§3: "released explicitly"). Idempotent.
// The peer table and channel subscriptions are not cleared: Peers() still
// returns the last known records after Release.
func (i *Instance) Release() error {
	i.mu.Lock()
	if i.released {
		i.mu.Unlock()
		return nil
	}
	i.released = true
	started := i.started
	i.mu.Unlock()

	if !started {
		return nil
	}

	if i.helloLoop != nil {
		i.helloLoop.Stop()
	}
	if i.checkLoop != nil {
		i.checkLoop.Stop()
	}

	var err error
	if i.transport != nil {
		err = i.transport.Release()
	}
	i.invoker.Stop()
	return err
}

// Peers returns a snapshot of every currently known peer record, in
// discovery order.
func (i *Instance) Peers() []*types.Peer {
	return i.table.Snapshot()
}

// IsMaster reports whether this instance currently believes itself to be
// master.
func (i *Instance) IsMaster() bool {
	return i.state.IsMaster()
}

// IsMasterEligible reports whether this instance is currently eligible to
// self-promote.
func (i *Instance) IsMasterEligible() bool {
	return i.state.IsEligible()
}
