package types

// Topic enumerates the nine lifecycle hooks exposed by On (§6).
type Topic string

const (
	TopicHelloReceived Topic = "helloReceived"
	TopicHelloEmitted  Topic = "helloEmitted"
	TopicPromotion     Topic = "promotion"
	TopicDemotion      Topic = "demotion"
	TopicCheck         Topic = "check"
	TopicAdded         Topic = "added"
	TopicMaster        Topic = "master"
	TopicRemoved       Topic = "removed"
	TopicError         Topic = "error"
)

// Callback is the single signature backing every topic (§9: "replace void*
// callbacks with opaque user pointers with closures capturing state, or a
// small polymorphic dispatch interface whose variants are the nine
// callback kinds"). Not every field is meaningful for every topic: Peer is
// nil for promotion/demotion/check/helloEmitted/error, Envelope is set
// only for added/master/helloReceived/helloEmitted, Err is set only for
// error.
type Callback func(peer *Peer, envelope *Envelope, err error, user interface{})

// ChannelCallback is the callback shape for channel subscriptions (§4.3):
// it receives the literal event string that matched, the parsed JSON
// value of the whole datagram, and the opaque user data supplied at join.
type ChannelCallback func(event string, payload interface{}, user interface{})
