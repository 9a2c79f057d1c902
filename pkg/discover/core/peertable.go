package core

import (
	"container/list"
	"sync"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/types"
)

// PeerTable holds and ages peer records (§4.2). The original C
// implementation's peer/worker lists are intrusive doubly-linked lists kept purely for stable
// insertion-order iteration; container/list is the idiomatic Go stand-in
// for exactly that (§9: "replace with the idiomatic ordered collection of
// the target language, stable iteration order is the only behavioral
// requirement").
type PeerTable struct {
	mu    sync.Mutex
	order *list.List
	index map[types.PeerKey]*list.Element
}

// NewPeerTable returns an empty table.
func NewPeerTable() *PeerTable {
	return &PeerTable{
		order: list.New(),
		index: make(map[types.PeerKey]*list.Element),
	}
}

// Upsert applies a hello's data to the table (§4.2). If no record exists
// for (pid, iid) one is created and appended; otherwise every mutable
// field is replaced and lastSeen refreshed. The returned peer is the live
// table record, handed to the caller by reference for the duration of the
// dispatch that triggered this call (§3 ownership) — it must not be
// retained past that.
func (t *PeerTable) Upsert(pid, iid, hostname, observedAddr string, observedPort int, data types.PeerData, now int64) (peer *types.Peer, wasNew bool, wasMaster bool) {
	key := types.PeerKey{ProcessID: pid, InstanceID: iid}

	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.index[key]; ok {
		p := el.Value.(*types.Peer)
		wasMaster = p.Data.IsMaster
		p.HostName = hostname
		p.Address = observedAddr
		p.Port = observedPort
		p.LastSeen = now
		p.Data = data
		return p, false, wasMaster
	}

	p := &types.Peer{
		ProcessID:  pid,
		InstanceID: iid,
		HostName:   hostname,
		Address:    observedAddr,
		Port:       observedPort,
		LastSeen:   now,
		Data:       data,
	}
	el := t.order.PushBack(p)
	t.index[key] = el
	return p, true, false
}

// Sweep ages every record against now and removes any that have expired,
// returning the removed records in table order (§4.2, §3 invariant: a
// record is removed iff now < lastSeen, i.e. clock skew, or its age
// exceeds masterTimeout when last known as master, else nodeTimeout).
func (t *PeerTable) Sweep(now int64, nodeTimeout, masterTimeout time.Duration) []*types.Peer {
	nodeTimeoutSeconds := int64(nodeTimeout / time.Second)
	masterTimeoutSeconds := int64(masterTimeout / time.Second)

	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []*types.Peer
	for el := t.order.Front(); el != nil; {
		next := el.Next()
		p := el.Value.(*types.Peer)

		expired := now < p.LastSeen
		if !expired {
			timeout := nodeTimeoutSeconds
			if p.Data.IsMaster {
				timeout = masterTimeoutSeconds
			}
			expired = now-p.LastSeen > timeout
		}

		if expired {
			t.order.Remove(el)
			delete(t.index, p.Key())
			removed = append(removed, p)
		}
		el = next
	}
	return removed
}

// Summary runs the single linear pass the election rule needs (§4.2,
// §4.5 step 3): how many peers currently claim mastership, how many of
// those outweigh the local instance, and whether any non-master eligible
// peer outweighs it.
func (t *PeerTable) Summary(localWeight float64) (masters int, mastersHigherWeight int, anyEligibleHigherWeight bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for el := t.order.Front(); el != nil; el = el.Next() {
		p := el.Value.(*types.Peer)
		if p.Data.IsMaster {
			masters++
			if p.Data.Weight > localWeight {
				mastersHigherWeight++
			}
			continue
		}
		if p.Data.IsMasterEligible && p.Data.Weight > localWeight {
			anyEligibleHigherWeight = true
		}
	}
	return masters, mastersHigherWeight, anyEligibleHigherWeight
}

// Len returns the current peer count, used for metrics.
func (t *PeerTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// Get returns a clone of the record for (pid, iid), if any, safe to keep
// past the call (§5; types.Peer.Clone). Used by tests and by callers that
// want to inspect a specific peer outside of a callback.
func (t *PeerTable) Get(pid, iid string) (*types.Peer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.index[types.PeerKey{ProcessID: pid, InstanceID: iid}]
	if !ok {
		return nil, false
	}
	return el.Value.(*types.Peer).Clone(), true
}

// Snapshot returns a clone of every current record, in table order,
// decoupled from the live table so a caller may retain it indefinitely
// (§5; types.Peer.Clone). Backs the facade's exported Peers().
func (t *PeerTable) Snapshot() []*types.Peer {
	t.mu.Lock()
	defer t.mu.Unlock()
	peers := make([]*types.Peer, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		peers = append(peers, el.Value.(*types.Peer).Clone())
	}
	return peers
}
