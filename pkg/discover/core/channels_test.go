package core

import (
	"sync"
	"testing"
)

func TestChannelRegistryJoinAndDispatch(t *testing.T) {
	r := NewChannelRegistry()

	var mu sync.Mutex
	var got []string
	err := r.Join("^chat\\..*$", func(event string, payload interface{}, user interface{}) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, event)
	}, nil)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}

	r.Dispatch("chat.room1", "hello")
	r.Dispatch("other.event", "ignored")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "chat.room1" {
		t.Fatalf("expected exactly one matching dispatch, got %v", got)
	}
}

func TestChannelRegistryRejoinReplacesBinding(t *testing.T) {
	r := NewChannelRegistry()
	calls := 0
	r.Join("greeting", func(event string, payload interface{}, user interface{}) {
		calls++
	}, nil)
	r.Join("greeting", func(event string, payload interface{}, user interface{}) {
		calls += 100
	}, nil)

	if r.Len() != 1 {
		t.Fatalf("expected rejoin to replace, not add, a binding; len=%d", r.Len())
	}

	r.Dispatch("greeting", nil)
	if calls != 100 {
		t.Fatalf("expected the replacement callback to fire, calls=%d", calls)
	}
}

func TestChannelRegistryLeave(t *testing.T) {
	r := NewChannelRegistry()
	r.Join("topic", func(event string, payload interface{}, user interface{}) {}, nil)
	r.Leave("topic")
	if r.Len() != 0 {
		t.Fatalf("expected Leave to remove the binding, len=%d", r.Len())
	}
}

func TestChannelRegistryInvalidPattern(t *testing.T) {
	r := NewChannelRegistry()
	if err := r.Join("(unterminated", func(string, interface{}, interface{}) {}, nil); err == nil {
		t.Fatalf("expected an error for an invalid regex pattern")
	}
}

func TestChannelRegistryMultipleMatchesAllFire(t *testing.T) {
	r := NewChannelRegistry()
	var mu sync.Mutex
	fired := make(map[string]bool)

	r.Join("ev", func(event string, payload interface{}, user interface{}) {
		mu.Lock()
		fired["first"] = true
		mu.Unlock()
	}, nil)
	r.Join("e.", func(event string, payload interface{}, user interface{}) {
		mu.Lock()
		fired["second"] = true
		mu.Unlock()
	}, nil)

	r.Dispatch("ev", nil)

	mu.Lock()
	defer mu.Unlock()
	if !fired["first"] || !fired["second"] {
		t.Fatalf("expected both overlapping patterns to fire, got %v", fired)
	}
}
