package types

import "encoding/json"

// ReservedHelloEvent is the one event name that never reaches the channel
// registry: it is consumed by the dispatcher as a peer-state update (§4.3).
const ReservedHelloEvent = "hello"

// Envelope is the single JSON object carried by every datagram (§6 wire
// format). Data is kept as a raw message so the dispatcher can decide,
// based on Event, whether to decode it as HelloData or hand it untouched
// to a channel subscriber.
type Envelope struct {
	Event    string          `json:"event"`
	Pid      string          `json:"pid"`
	Iid      string          `json:"iid"`
	HostName string          `json:"hostName"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// HelloData is the required shape of Envelope.Data when Event is "hello".
type HelloData struct {
	IsMaster         bool            `json:"isMaster"`
	IsMasterEligible bool            `json:"isMasterEligible"`
	Weight           float64         `json:"weight"`
	Address          string          `json:"address"`
	Advertisement    json.RawMessage `json:"advertisement,omitempty"`
}

// Encode marshals the envelope to the wire format.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeGeneric parses a datagram payload into a generic JSON value, the
// form delivered to channel subscribers (§4.6 step 7: "the full parsed
// JSON, not just data, is delivered").
func DecodeGeneric(buf []byte) (interface{}, error) {
	var v interface{}
	err := json.Unmarshal(buf, &v)
	return v, err
}
