// Package metrics exposes pool and benchmark measurements as Prometheus
// metrics.
//
// # Overview
//
// Every Registry owns its own prometheus.Registry, so tests and concurrent
// runs never collide on the default registerer. Metrics are written either
// by a scraping Gatherer or as a node_exporter textfile.
//
// # Basic Usage
//
//	reg := metrics.NewRegistry("perfbible")
//	obs := reg.PoolObserver("entries")
//	p := pool.New[logparse.Entry](8, pool.WithObserver[logparse.Entry](obs))
//
//	gauges := reg.BenchGauges()
//	gauges.Observe("log_parsing", "pooled", 1000, 5321.4, 0)
//
//	_ = reg.WriteTextfile("perfbible.prom")
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/perfbible/pkg/errors"
	"github.com/ajitpratap0/perfbible/pkg/pool"
)

// Registry groups collectors under one namespace.
type Registry struct {
	namespace string
	reg       *prometheus.Registry
}

// NewRegistry creates an empty registry. An empty namespace is allowed.
func NewRegistry(namespace string) *Registry {
	return &Registry{
		namespace: namespace,
		reg:       prometheus.NewRegistry(),
	}
}

// Gatherer returns the underlying gatherer for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics in text exposition format. The file is
// written atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics textfile").
			WithDetail("path", path)
	}
	return nil
}

// PoolObserver records pool activity. It implements pool.Observer.
type PoolObserver struct {
	allocations prometheus.Counter
	releases    prometheus.Counter
	exhaustions prometheus.Counter
	inUse       prometheus.Gauge
}

var _ pool.Observer = (*PoolObserver)(nil)

// PoolObserver registers the pool collectors labelled with the pool name.
// Registering the same name twice panics, as prometheus.MustRegister does.
func (r *Registry) PoolObserver(name string) *PoolObserver {
	labels := prometheus.Labels{"pool": name}
	o := &PoolObserver{
		allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   r.namespace,
			Subsystem:   "pool",
			Name:        "allocations_total",
			Help:        "Slots handed out by the pool",
			ConstLabels: labels,
		}),
		releases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   r.namespace,
			Subsystem:   "pool",
			Name:        "releases_total",
			Help:        "Slots returned to the pool",
			ConstLabels: labels,
		}),
		exhaustions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   r.namespace,
			Subsystem:   "pool",
			Name:        "exhaustions_total",
			Help:        "Allocation attempts that found no free slot",
			ConstLabels: labels,
		}),
		inUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   r.namespace,
			Subsystem:   "pool",
			Name:        "in_use",
			Help:        "Slots currently on loan",
			ConstLabels: labels,
		}),
	}
	r.reg.MustRegister(o.allocations, o.releases, o.exhaustions, o.inUse)
	return o
}

// OnAllocate implements pool.Observer.
func (o *PoolObserver) OnAllocate(_ int, inUse int) {
	o.allocations.Inc()
	o.inUse.Set(float64(inUse))
}

// OnRelease implements pool.Observer.
func (o *PoolObserver) OnRelease(_ int, inUse int) {
	o.releases.Inc()
	o.inUse.Set(float64(inUse))
}

// OnExhausted implements pool.Observer.
func (o *PoolObserver) OnExhausted() {
	o.exhaustions.Inc()
}

// BenchGauges publishes the last measured cost of each benchmark case.
type BenchGauges struct {
	nsPerOp     *prometheus.GaugeVec
	allocsPerOp *prometheus.GaugeVec
	runs        *prometheus.CounterVec
}

// BenchGauges registers the benchmark collectors.
func (r *Registry) BenchGauges() *BenchGauges {
	labels := []string{"group", "variant", "size"}
	g := &BenchGauges{
		nsPerOp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Subsystem: "bench",
			Name:      "ns_per_op",
			Help:      "Mean nanoseconds per operation",
		}, labels),
		allocsPerOp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: r.namespace,
			Subsystem: "bench",
			Name:      "allocs_per_op",
			Help:      "Heap allocations per operation",
		}, labels),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Subsystem: "bench",
			Name:      "runs_total",
			Help:      "Completed benchmark cases",
		}, []string{"group", "variant"}),
	}
	r.reg.MustRegister(g.nsPerOp, g.allocsPerOp, g.runs)
	return g
}

// Observe records one finished benchmark case.
func (g *BenchGauges) Observe(group, variant string, size int, nsPerOp float64, allocsPerOp int64) {
	s := strconv.Itoa(size)
	g.nsPerOp.WithLabelValues(group, variant, s).Set(nsPerOp)
	g.allocsPerOp.WithLabelValues(group, variant, s).Set(float64(allocsPerOp))
	g.runs.WithLabelValues(group, variant).Inc()
}

// NsPerOp returns the gauge of one case.
func (g *BenchGauges) NsPerOp(group, variant string, size int) prometheus.Gauge {
	return g.nsPerOp.WithLabelValues(group, variant, strconv.Itoa(size))
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
//
// Example:
//
//	timer := metrics.NewTimer("dashboard")
//	generate()
//	log.Info("command finished", zap.Duration("elapsed", timer.Stop()))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the label given at creation.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
