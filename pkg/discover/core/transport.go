package core

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jabolina/go-discover/pkg/discover/types"
	"golang.org/x/net/ipv4"
)

// receiveCeiling bounds how long the listener blocks in a single read so
// Release can cancel it promptly (§4.1: "a bounded wait, 5-second ceiling,
// so the loop is responsive to cancellation").
const receiveCeiling = 5 * time.Second

// maxDatagram is large enough for any UDP payload this core will ever
// build (a hello plus a reasonably sized advertisement).
const maxDatagram = 65536

// Mode selects one of the three routing strategies a Transport can bind
// in (§4.1). Selection precedence when more than one is configured:
// unicast beats multicast beats broadcast.
type Mode int

const (
	ModeBroadcast Mode = iota
	ModeMulticast
	ModeUnicast
)

// MessageHandler receives one inbound datagram: the sender's address as
// dotted-quad text, its port, and the raw payload.
type MessageHandler func(addr string, port int, payload []byte)

// ErrorHandler is invoked for transport-io failures (§7): bind failures
// are fatal to the transport, send/receive failures are logged and the
// datagram is lost, the loop continues.
type ErrorHandler func(err error)

// Transport hides the three routing modes behind one send/receive
// contract (§4.1).
type Transport interface {
	// Send is fire-and-forget, at-most-once, best-effort (§4.1: "send").
	Send(payload []byte) error

	// OnMessage registers the single inbound delivery callback.
	OnMessage(cb MessageHandler)

	// OnError registers the error callback.
	OnError(cb ErrorHandler)

	// Start binds the socket, applies the mode-specific setup, and
	// launches the listener loop. A bind failure is fatal (§7) and is
	// both returned here and, if registered, reported to OnError.
	Start() error

	// Release stops the listener, cancels any in-flight receive, and
	// closes the socket (§4.1).
	Release() error

	// LocalAddress returns the bound local address, useful for tests and
	// for instances that bind an ephemeral port.
	LocalAddress() string
}

// udpTransport is the one Transport implementation: a single UDP socket,
// in one of the three modes, read by a single listener goroutine.
type udpTransport struct {
	mode Mode

	bindAddr     string
	bindPort     uint16
	destinations []*net.UDPAddr // broadcast: one entry. multicast: the group. unicast: the list, in order.
	multicastTTL uint8
	reuseAddr    bool

	invoker Invoker
	log     types.Logger

	// connMu guards the bound socket itself (§5: "Clients FD set:
	// one mutex guarding the set of bound sockets").
	connMu sync.Mutex
	conn   *net.UDPConn
	pconn  *ipv4.PacketConn

	// cbMu guards the two registered callbacks, which may be set before
	// Start and read from the listener goroutine afterward.
	cbMu      sync.Mutex
	onMessage MessageHandler
	onError   ErrorHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTransport builds (but does not Start) a Transport from the resolved
// mode and destinations of opts, following the precedence unicast >
// multicast > broadcast (§4.1).
func NewTransport(opts *types.Options, invoker Invoker, log types.Logger) (Transport, error) {
	t := &udpTransport{
		bindAddr:     opts.Address(),
		bindPort:     opts.Port(),
		multicastTTL: opts.MulticastTTL(),
		reuseAddr:    opts.ReuseAddr(),
		invoker:      invoker,
		log:          log,
	}

	switch {
	case opts.Unicast() != "":
		t.mode = ModeUnicast
		for _, host := range strings.Split(opts.Unicast(), ",") {
			host = strings.TrimSpace(host)
			if host == "" {
				continue
			}
			addr, err := resolveDestination(host, opts.Port())
			if err != nil {
				return nil, err
			}
			t.destinations = append(t.destinations, addr)
		}
	case opts.Multicast() != "":
		t.mode = ModeMulticast
		addr, err := resolveDestination(opts.Multicast(), opts.Port())
		if err != nil {
			return nil, err
		}
		t.destinations = []*net.UDPAddr{addr}
	default:
		t.mode = ModeBroadcast
		broadcast := opts.Broadcast()
		if broadcast == "" {
			broadcast = types.DefaultBroadcast
		}
		addr, err := resolveDestination(broadcast, opts.Port())
		if err != nil {
			return nil, err
		}
		t.destinations = []*net.UDPAddr{addr}
	}

	return t, nil
}

func resolveDestination(host string, defaultPort uint16) (*net.UDPAddr, error) {
	if !strings.Contains(host, ":") {
		host = fmt.Sprintf("%s:%d", host, defaultPort)
	}
	return net.ResolveUDPAddr("udp4", host)
}

func (t *udpTransport) OnMessage(cb MessageHandler) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.onMessage = cb
}

func (t *udpTransport) OnError(cb ErrorHandler) {
	t.cbMu.Lock()
	defer t.cbMu.Unlock()
	t.onError = cb
}

func (t *udpTransport) reportError(err error) {
	t.cbMu.Lock()
	cb := t.onError
	t.cbMu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func (t *udpTransport) deliver(addr string, port int, payload []byte) {
	t.cbMu.Lock()
	cb := t.onMessage
	t.cbMu.Unlock()
	if cb != nil {
		cb(addr, port, payload)
	}
}

// Start binds the socket per §4.1's bind contract: reuseAddr (if set) and,
// for broadcast mode, SO_BROADCAST are applied through a Control callback
// before bind; multicast mode additionally joins the group and sets TTL
// after bind.
func (t *udpTransport) Start() error {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if t.reuseAddr {
					sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
					if sockErr != nil {
						return
					}
				}
				if t.mode == ModeBroadcast {
					sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	bind := fmt.Sprintf("%s:%d", t.bindAddr, t.bindPort)
	pc, err := lc.ListenPacket(context.Background(), "udp4", bind)
	if err != nil {
		wrapped := fmt.Errorf("discover: transport bind %s: %w", bind, err)
		t.reportError(wrapped)
		return wrapped
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		err := fmt.Errorf("discover: transport bind %s: not a UDP socket", bind)
		t.reportError(err)
		return err
	}

	t.connMu.Lock()
	t.conn = conn
	if t.mode == ModeMulticast {
		pconn := ipv4.NewPacketConn(conn)
		for _, group := range t.destinations {
			if err := pconn.JoinGroup(nil, &net.UDPAddr{IP: group.IP}); err != nil {
				t.connMu.Unlock()
				_ = conn.Close()
				wrapped := fmt.Errorf("discover: join multicast group %s: %w", group.IP, err)
				t.reportError(wrapped)
				return wrapped
			}
		}
		if err := pconn.SetMulticastTTL(int(t.multicastTTL)); err != nil {
			t.connMu.Unlock()
			_ = conn.Close()
			wrapped := fmt.Errorf("discover: set multicast TTL: %w", err)
			t.reportError(wrapped)
			return wrapped
		}
		t.pconn = pconn
	}
	t.connMu.Unlock()

	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.wg.Add(1)
	go t.listen()
	return nil
}

// listen is the bounded-wait receive loop (§4.1): each iteration reads at
// most one datagram, with a receiveCeiling deadline so Release's context
// cancellation is noticed promptly.
func (t *udpTransport) listen() {
	defer t.wg.Done()
	buf := make([]byte, maxDatagram)
	for {
		select {
		case <-t.ctx.Done():
			return
		default:
		}

		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()
		if conn == nil {
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(receiveCeiling))
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-t.ctx.Done():
				return
			default:
			}
			t.reportError(fmt.Errorf("discover: transport read: %w", err))
			continue
		}
		if n <= 0 {
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		ip := from.IP.String()
		port := from.Port
		t.invoker.Spawn(func() {
			t.deliver(ip, port, payload)
		})
	}
}

// Send fires the payload at every configured destination in list order
// (§4.1). Per-destination sendto failures are swallowed, matching
// at-most-once UDP semantics; only the absence of a bound socket is
// treated as catastrophic.
func (t *udpTransport) Send(payload []byte) error {
	t.connMu.Lock()
	conn := t.conn
	t.connMu.Unlock()
	if conn == nil {
		err := fmt.Errorf("discover: transport not started")
		t.reportError(err)
		return err
	}

	for _, dest := range t.destinations {
		if _, err := conn.WriteToUDP(payload, dest); err != nil {
			t.log.Debugf("discover: send to %s failed: %v", dest, err)
		}
	}
	return nil
}

func (t *udpTransport) Release() error {
	if t.cancel != nil {
		t.cancel()
	}
	t.connMu.Lock()
	conn := t.conn
	t.conn = nil
	t.pconn = nil
	t.connMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	t.wg.Wait()
	return err
}

func (t *udpTransport) LocalAddress() string {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn == nil {
		return fmt.Sprintf("%s:%d", t.bindAddr, t.bindPort)
	}
	return t.conn.LocalAddr().String()
}
