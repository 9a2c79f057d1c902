package definition

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the instrumentation surface the core reports through. It
// supplements spec.md (silent on observability) without changing any
// spec-defined behavior: every method here is called alongside an
// operation spec.md already requires, never instead of it.
type Recorder interface {
	PeersGauge(n int)
	HelloSent()
	HelloReceived()
	Promoted()
	Demoted()
	PeerRemoved()
}

// noopRecorder is the default, used when the caller doesn't ask for
// metrics: every core file talks to the Recorder interface, never to
// prometheus directly, the same way every file talks to types.Logger and
// never to logrus directly.
type noopRecorder struct{}

func NewNoopRecorder() Recorder { return noopRecorder{} }

func (noopRecorder) PeersGauge(int) {}
func (noopRecorder) HelloSent() {}
func (noopRecorder) HelloReceived() {}
func (noopRecorder) Promoted() {}
func (noopRecorder) Demoted() {}
func (noopRecorder) PeerRemoved() {}

// PrometheusRecorder is a Recorder backed by real prometheus collectors.
// It registers into the given Registerer so multiple instances in one
// process (or in tests) don't collide on the default global registry.
type PrometheusRecorder struct {
	peers        prometheus.Gauge
	hellosSent   prometheus.Counter
	hellosRecv   prometheus.Counter
	promotions   prometheus.Counter
	demotions    prometheus.Counter
	peersRemoved prometheus.Counter
}

// NewPrometheusRecorder creates and registers the collectors under the
// "discover" namespace, scoped by instanceID so multiple local instances
// don't collide.
func NewPrometheusRecorder(reg prometheus.Registerer, instanceID string) *PrometheusRecorder {
	labels := prometheus.Labels{"instance": instanceID}
	r := &PrometheusRecorder{
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "discover",
			Name:        "peers",
			Help:        "Current number of known peers.",
			ConstLabels: labels,
		}),
		hellosSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "discover",
			Name:        "hellos_sent_total",
			Help:        "Hello datagrams emitted.",
			ConstLabels: labels,
		}),
		hellosRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "discover",
			Name:        "hellos_received_total",
			Help:        "Hello datagrams received.",
			ConstLabels: labels,
		}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "discover",
			Name:        "promotions_total",
			Help:        "Number of times this instance self-promoted to master.",
			ConstLabels: labels,
		}),
		demotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "discover",
			Name:        "demotions_total",
			Help:        "Number of times this instance self-demoted from master.",
			ConstLabels: labels,
		}),
		peersRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "discover",
			Name:        "peers_removed_total",
			Help:        "Peers expired by the check loop.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(r.peers, r.hellosSent, r.hellosRecv, r.promotions, r.demotions, r.peersRemoved)
	}
	return r
}

var _ Recorder = (*PrometheusRecorder)(nil)

func (r *PrometheusRecorder) PeersGauge(n int) { r.peers.Set(float64(n)) }
func (r *PrometheusRecorder) HelloSent() { r.hellosSent.Inc() }
func (r *PrometheusRecorder) HelloReceived() { r.hellosRecv.Inc() }
func (r *PrometheusRecorder) Promoted() { r.promotions.Inc() }
func (r *PrometheusRecorder) Demoted() { r.demotions.Inc() }
func (r *PrometheusRecorder) PeerRemoved() { r.peersRemoved.Inc() }
