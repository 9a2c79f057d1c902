package types

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/helper"
)

// Default option values (§6).
const (
	DefaultHelloInterval   = 1000 * time.Millisecond
	DefaultCheckInterval   = 2000 * time.Millisecond
	DefaultNodeTimeout     = 2000 * time.Millisecond
	DefaultMasterTimeout   = 2000 * time.Millisecond
	DefaultAddress         = "0.0.0.0"
	DefaultPort            = uint16(12345)
	DefaultBroadcast       = "255.255.255.255"
	DefaultMulticastTTL    = uint8(1)
	DefaultMastersRequired = 1
	DefaultReuseAddr       = true
	DefaultIgnoreProcess   = true
	DefaultIgnoreInstance  = true
)

// Options holds every configuration knob of §6, guarded by a single mutex
// because setOption may mutate strings read concurrently on the send/
// receive path (§5: "Options: one mutex; held for every read of any option
// field used on the send/receive path").
type Options struct {
	mu sync.RWMutex

	helloInterval time.Duration
	checkInterval time.Duration
	nodeTimeout   time.Duration
	masterTimeout time.Duration

	address      string
	port         uint16
	broadcast    string
	multicast    string
	multicastTTL uint8
	unicast      string
	reuseAddr    bool

	key string

	mastersRequired int
	weight          float64

	client bool

	ignoreProcess  bool
	ignoreInstance bool

	advertisement json.RawMessage
	hostname      string
}

// DefaultOptions returns an Options populated with every §6 default. The
// weight default is derived from wall-clock time per §3's algorithm.
func DefaultOptions() *Options {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	o := &Options{
		helloInterval:   DefaultHelloInterval,
		checkInterval:   DefaultCheckInterval,
		nodeTimeout:     DefaultNodeTimeout,
		masterTimeout:   DefaultMasterTimeout,
		address:         DefaultAddress,
		port:            DefaultPort,
		broadcast:       DefaultBroadcast,
		multicastTTL:    DefaultMulticastTTL,
		reuseAddr:       DefaultReuseAddr,
		mastersRequired: DefaultMastersRequired,
		ignoreProcess:   DefaultIgnoreProcess,
		ignoreInstance:  DefaultIgnoreInstance,
		hostname:        hostname,
		weight:          helper.DefaultWeight(time.Now()),
	}
	return o
}

// validateTimeouts enforces checkInterval <= nodeTimeout <= masterTimeout
// (§6) against the given candidate values.
func validateTimeouts(check, node, master time.Duration) bool {
	return check <= node && node <= master
}

// --- typed accessors, used internally by core components ---

func (o *Options) HelloInterval() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.helloInterval
}

func (o *Options) SetHelloInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidOption
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.helloInterval = d
	return nil
}

func (o *Options) CheckInterval() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.checkInterval
}

func (o *Options) NodeTimeout() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.nodeTimeout
}

func (o *Options) MasterTimeout() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.masterTimeout
}

// SetTimeouts validates and applies the (checkInterval, nodeTimeout,
// masterTimeout) triple as a unit, since each leg's validity depends on the
// others (§6).
func (o *Options) SetTimeouts(check, node, master time.Duration) error {
	if !validateTimeouts(check, node, master) {
		return ErrInvalidOption
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checkInterval = check
	o.nodeTimeout = node
	o.masterTimeout = master
	return nil
}

func (o *Options) Address() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.address
}

func (o *Options) Port() uint16 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.port
}

func (o *Options) Broadcast() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.broadcast
}

func (o *Options) Multicast() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.multicast
}

func (o *Options) MulticastTTL() uint8 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.multicastTTL
}

func (o *Options) Unicast() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.unicast
}

func (o *Options) ReuseAddr() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.reuseAddr
}

func (o *Options) Key() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.key
}

func (o *Options) MastersRequired() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mastersRequired
}

func (o *Options) Weight() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.weight
}

func (o *Options) SetWeight(w float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.weight = w
}

func (o *Options) Client() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.client
}

func (o *Options) IgnoreProcess() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ignoreProcess
}

func (o *Options) IgnoreInstance() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ignoreInstance
}

func (o *Options) Advertisement() json.RawMessage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.advertisement
}

func (o *Options) SetAdvertisement(v json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advertisement = v
}

func (o *Options) HostName() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.hostname
}

// SetOption is the string-keyed API required for wire/CLI compatibility
// (§6, §9: "acceptable as the external API for compatibility, but
// internally route each to a typed field"). Values are passed in their
// natural Go type; callers that only have strings (e.g. a config file
// loader) are expected to parse before calling this.
func (o *Options) SetOption(name string, value interface{}) error {
	switch name {
	case "helloInterval":
		ms, ok := value.(int)
		if !ok {
			return ErrInvalidOption
		}
		return o.SetHelloInterval(time.Duration(ms) * time.Millisecond)
	case "checkInterval", "nodeTimeout", "masterTimeout":
		ms, ok := value.(int)
		if !ok {
			return ErrInvalidOption
		}
		check, node, master := o.CheckInterval(), o.NodeTimeout(), o.MasterTimeout()
		d := time.Duration(ms) * time.Millisecond
		switch name {
		case "checkInterval":
			check = d
		case "nodeTimeout":
			node = d
		case "masterTimeout":
			master = d
		}
		return o.SetTimeouts(check, node, master)
	case "address":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.address = s
		o.mu.Unlock()
	case "port":
		p, ok := value.(uint16)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.port = p
		o.mu.Unlock()
	case "broadcast":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.broadcast = s
		o.mu.Unlock()
	case "multicast":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.multicast = s
		o.mu.Unlock()
	case "multicastTTL":
		ttl, ok := value.(uint8)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.multicastTTL = ttl
		o.mu.Unlock()
	case "unicast":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.unicast = s
		o.mu.Unlock()
	case "key":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		// Reserved: stored but intentionally never used to encrypt
		// anything (§9 open question).
		o.mu.Lock()
		o.key = s
		o.mu.Unlock()
	case "mastersRequired":
		n, ok := value.(int)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.mastersRequired = n
		o.mu.Unlock()
	case "weight":
		w, ok := value.(float64)
		if !ok {
			return ErrInvalidOption
		}
		o.SetWeight(w)
	case "client":
		b, ok := value.(bool)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.client = b
		o.mu.Unlock()
	case "reuseAddr":
		b, ok := value.(bool)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.reuseAddr = b
		o.mu.Unlock()
	case "ignoreProcess":
		b, ok := value.(bool)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.ignoreProcess = b
		o.mu.Unlock()
	case "ignoreInstance":
		b, ok := value.(bool)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.ignoreInstance = b
		o.mu.Unlock()
	case "advertisement":
		raw, ok := value.(json.RawMessage)
		if !ok {
			return ErrInvalidOption
		}
		o.SetAdvertisement(raw)
	case "hostname":
		s, ok := value.(string)
		if !ok {
			return ErrInvalidOption
		}
		o.mu.Lock()
		o.hostname = s
		o.mu.Unlock()
	default:
		return ErrUnknownOption
	}
	return nil
}

// GetOption is the read-side counterpart of SetOption.
func (o *Options) GetOption(name string) (interface{}, error) {
	switch name {
	case "helloInterval":
		return int(o.HelloInterval() / time.Millisecond), nil
	case "checkInterval":
		return int(o.CheckInterval() / time.Millisecond), nil
	case "nodeTimeout":
		return int(o.NodeTimeout() / time.Millisecond), nil
	case "masterTimeout":
		return int(o.MasterTimeout() / time.Millisecond), nil
	case "address":
		return o.Address(), nil
	case "port":
		return o.Port(), nil
	case "broadcast":
		return o.Broadcast(), nil
	case "multicast":
		return o.Multicast(), nil
	case "multicastTTL":
		return o.MulticastTTL(), nil
	case "unicast":
		return o.Unicast(), nil
	case "key":
		return o.Key(), nil
	case "mastersRequired":
		return o.MastersRequired(), nil
	case "weight":
		return o.Weight(), nil
	case "client":
		return o.Client(), nil
	case "reuseAddr":
		return o.ReuseAddr(), nil
	case "ignoreProcess":
		return o.IgnoreProcess(), nil
	case "ignoreInstance":
		return o.IgnoreInstance(), nil
	case "advertisement":
		return o.Advertisement(), nil
	case "hostname":
		return o.HostName(), nil
	default:
		return nil, ErrUnknownOption
	}
}
