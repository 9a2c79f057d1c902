package core

import (
	"encoding/json"

	"github.com/jabolina/go-discover/pkg/discover/definition"
	"github.com/jabolina/go-discover/pkg/discover/types"
)

// rawEnvelope and rawHelloData use pointer fields so a missing JSON key is
// distinguishable from a present-but-zero value (§4.6: "any missing
// required field: drop"). A type mismatch surfaces as a json.Unmarshal
// error, which is handled the same way — dropped, no callback.
type rawEnvelope struct {
	Event    *string         `json:"event"`
	Pid      *string         `json:"pid"`
	Iid      *string         `json:"iid"`
	HostName *string         `json:"hostName"`
	Data     json.RawMessage `json:"data"`
}

type rawHelloData struct {
	IsMaster         *bool           `json:"isMaster"`
	IsMasterEligible *bool           `json:"isMasterEligible"`
	Weight           *float64        `json:"weight"`
	Address          *string         `json:"address"`
	Advertisement    json.RawMessage `json:"advertisement,omitempty"`
}

// EventSink is how the dispatcher reports lifecycle events back to the
// facade (discover.Instance), which owns the user-registered callback
// table. Peer and Envelope are nil where the topic doesn't carry them.
type EventSink func(topic types.Topic, peer *types.Peer, envelope *types.Envelope)

// Dispatcher implements §4.6: parse an inbound datagram, decide whether
// it's a hello or a channel event, and update the peer table or invoke
// subscribers accordingly.
type Dispatcher struct {
	processID  string
	instanceID string
	opts       *types.Options
	table      *PeerTable
	channels   *ChannelRegistry
	log        types.Logger
	recorder   definition.Recorder
	sink       EventSink
	now        func() int64
}

// NewDispatcher wires a Dispatcher to the local identity, the shared peer
// table and channel registry, and the sink used to fan lifecycle events
// back out to user callbacks.
func NewDispatcher(processID, instanceID string, opts *types.Options, table *PeerTable, channels *ChannelRegistry, log types.Logger, recorder definition.Recorder, sink EventSink, now func() int64) *Dispatcher {
	return &Dispatcher{
		processID:  processID,
		instanceID: instanceID,
		opts:       opts,
		table:      table,
		channels:   channels,
		log:        log,
		recorder:   recorder,
		sink:       sink,
		now:        now,
	}
}

// HandleDatagram implements the full §4.6 decision tree for one inbound
// datagram. addr/port are the transport-observed sender, recorded as the
// peer's observed address/port when the message is a hello (the peer's
// self-reported bind address is kept in its Data.Address).
func (d *Dispatcher) HandleDatagram(addr string, port int, payload []byte) {
	var env rawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		d.log.Debugf("discover: dropping malformed datagram from %s:%d: %v", addr, port, err)
		return
	}

	if env.Pid == nil || env.Iid == nil || *env.Pid == "" || *env.Iid == "" {
		return
	}
	if d.opts.IgnoreProcess() && *env.Pid == d.processID {
		return
	}
	if d.opts.IgnoreInstance() && *env.Iid == d.instanceID {
		return
	}
	if env.Event == nil || *env.Event == "" {
		return
	}

	if *env.Event == types.ReservedHelloEvent {
		d.handleHello(env, addr, port)
		return
	}

	d.handleChannelEvent(payload, *env.Event)
}

func (d *Dispatcher) handleHello(env rawEnvelope, addr string, port int) {
	if env.HostName == nil || env.Data == nil {
		return
	}

	var hello rawHelloData
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		d.log.Debugf("discover: dropping malformed hello data: %v", err)
		return
	}
	if hello.IsMaster == nil || hello.IsMasterEligible == nil || hello.Weight == nil || hello.Address == nil {
		return
	}

	data := types.PeerData{
		IsMaster:         *hello.IsMaster,
		IsMasterEligible: *hello.IsMasterEligible,
		Weight:           *hello.Weight,
		Address:          *hello.Address,
		Advertisement:    hello.Advertisement,
	}

	peer, wasNew, wasMaster := d.table.Upsert(*env.Pid, *env.Iid, *env.HostName, addr, port, data, d.now())
	d.recorder.HelloReceived()
	d.recorder.PeersGauge(d.table.Len())

	envelope := &types.Envelope{Event: types.ReservedHelloEvent, Pid: *env.Pid, Iid: *env.Iid, HostName: *env.HostName}

	if wasNew {
		d.sink(types.TopicAdded, peer, envelope)
	}
	if peer.Data.IsMaster && (wasNew || !wasMaster) {
		d.sink(types.TopicMaster, peer, envelope)
	}
	d.sink(types.TopicHelloReceived, peer, envelope)
}

func (d *Dispatcher) handleChannelEvent(payload []byte, event string) {
	value, err := types.DecodeGeneric(payload)
	if err != nil {
		d.log.Debugf("discover: dropping malformed channel event: %v", err)
		return
	}
	d.channels.Dispatch(event, value)
}
