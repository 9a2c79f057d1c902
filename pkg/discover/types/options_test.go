package types

import "testing"

func TestDefaultOptionsTimeoutOrdering(t *testing.T) {
	o := DefaultOptions()
	if o.CheckInterval() > o.NodeTimeout() || o.NodeTimeout() > o.MasterTimeout() {
		t.Fatalf("default timeouts violate check <= node <= master: %v %v %v",
			o.CheckInterval(), o.NodeTimeout(), o.MasterTimeout())
	}
}

func TestDefaultOptionsWeightInOpenInterval(t *testing.T) {
	o := DefaultOptions()
	w := o.Weight()
	if w <= -1 || w >= 0 {
		t.Fatalf("default weight %v is not in (-1, 0)", w)
	}
}

func TestSetTimeoutsRejectsInvalidOrdering(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetTimeouts(3000, 2000, 1000); err != ErrInvalidOption {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestSetTimeoutsAppliesValidOrdering(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetTimeouts(500, 1000, 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.CheckInterval() != 500 || o.NodeTimeout() != 1000 || o.MasterTimeout() != 1500 {
		t.Fatalf("timeouts not applied: %v %v %v", o.CheckInterval(), o.NodeTimeout(), o.MasterTimeout())
	}
}

func TestSetOptionUnknownName(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetOption("doesNotExist", 1); err != ErrUnknownOption {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestSetOptionTypeMismatch(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetOption("port", "not-a-uint16"); err != ErrInvalidOption {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestSetGetOptionRoundTrip(t *testing.T) {
	o := DefaultOptions()
	cases := []struct {
		name  string
		value interface{}
	}{
		{"address", "10.0.0.1"},
		{"broadcast", "10.0.0.255"},
		{"multicast", "239.0.0.1"},
		{"unicast", "10.0.0.2,10.0.0.3"},
		{"mastersRequired", 2},
		{"weight", 0.5},
		{"client", true},
		{"hostname", "custom-host"},
	}
	for _, c := range cases {
		if err := o.SetOption(c.name, c.value); err != nil {
			t.Fatalf("SetOption(%s): %v", c.name, err)
		}
		got, err := o.GetOption(c.name)
		if err != nil {
			t.Fatalf("GetOption(%s): %v", c.name, err)
		}
		if got != c.value {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.value)
		}
	}
}

func TestSetOptionPortUsesUint16(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetOption("port", uint16(9999)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Port() != 9999 {
		t.Fatalf("port not applied: %v", o.Port())
	}
}

func TestSetOptionIntervalsInMilliseconds(t *testing.T) {
	o := DefaultOptions()
	if err := o.SetOption("helloInterval", 250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := o.GetOption("helloInterval")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(int) != 250 {
		t.Fatalf("helloInterval: got %v, want 250", got)
	}
}
