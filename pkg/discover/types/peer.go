package types

import "encoding/json"

// PeerKey identifies a peer record uniquely (§3: "peer identity is
// (processId, instanceId); no two records may share both").
type PeerKey struct {
	ProcessID  string
	InstanceID string
}

// PeerData is the nested block of a peer record carrying everything the
// peer self-reported in its most recent hello (§3).
type PeerData struct {
	IsMaster         bool            `json:"isMaster"`
	IsMasterEligible bool            `json:"isMasterEligible"`
	Weight           float64         `json:"weight"`
	Address          string          `json:"address"`
	Advertisement    json.RawMessage `json:"advertisement,omitempty"`
}

// Peer is a record for a remote instance observed through its hellos.
type Peer struct {
	ProcessID  string   `json:"pid"`
	InstanceID string   `json:"iid"`
	HostName   string   `json:"hostName"`
	Address    string   `json:"address"`
	Port       int      `json:"port"`
	LastSeen   int64    `json:"lastSeen"`
	Data       PeerData `json:"data"`
}

// Key returns the peer's identity tuple.
func (p *Peer) Key() PeerKey {
	return PeerKey{ProcessID: p.ProcessID, InstanceID: p.InstanceID}
}

// Clone returns a shallow copy safe to read after the peer table's lock is
// released (§5: peer records are owned by the table and must not be
// retained by the user beyond the callback that receives them; callers
// that need to keep data around should copy it, which this method makes
// cheap and explicit).
func (p *Peer) Clone() *Peer {
	cp := *p
	return &cp
}
