package core

import (
	"container/list"
	"regexp"
	"sync"

	"github.com/jabolina/go-discover/pkg/discover/types"
)

// binding is one regex-keyed subscription (§4.3).
type binding struct {
	event   string
	pattern *regexp.Regexp
	cb      types.ChannelCallback
	user    interface{}
}

// ChannelRegistry holds regex-keyed subscriptions and dispatches
// non-reserved events to every matching one (§4.3). The reserved event
// name "hello" never reaches Dispatch; that's enforced by the message
// dispatcher, not here.
type ChannelRegistry struct {
	mu    sync.Mutex
	order *list.List
	index map[string]*list.Element
}

// NewChannelRegistry returns an empty registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		order: list.New(),
		index: make(map[string]*list.Element),
	}
}

// Join compiles event as an extended regular expression and binds cb/user
// to it. Re-joining the same exact event string replaces the existing
// binding's callback and user data in place (§4.3).
func (r *ChannelRegistry) Join(event string, cb types.ChannelCallback, user interface{}) error {
	pattern, err := regexp.Compile(event)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.index[event]; ok {
		b := el.Value.(*binding)
		b.pattern = pattern
		b.cb = cb
		b.user = user
		return nil
	}

	b := &binding{event: event, pattern: pattern, cb: cb, user: user}
	el := r.order.PushBack(b)
	r.index[event] = el
	return nil
}

// Leave removes the binding for the exact event string, if any (§4.3).
func (r *ChannelRegistry) Leave(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	el, ok := r.index[event]
	if !ok {
		return
	}
	r.order.Remove(el)
	delete(r.index, event)
}

// Dispatch invokes every binding whose pattern matches eventString
// anywhere in the string, passing the already-parsed JSON payload
// (§4.3, §4.6 step 7). Matching bindings are collected under the lock,
// which is released before any callback runs.
func (r *ChannelRegistry) Dispatch(eventString string, payload interface{}) {
	r.mu.Lock()
	matched := make([]*binding, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		b := el.Value.(*binding)
		if b.pattern.MatchString(eventString) {
			matched = append(matched, b)
		}
	}
	r.mu.Unlock()

	for _, b := range matched {
		b.cb(eventString, payload, b.user)
	}
}

// Len returns the current number of bindings, useful for tests.
func (r *ChannelRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
