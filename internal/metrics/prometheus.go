package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/mpcalc/internal/mp"
)

// Namespace prefixes every metric name.
const Namespace = "mpcalc"

// Collectors groups the service metrics on a private registry, so that
// several instances (one per test, for example) never collide.
type Collectors struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	active   prometheus.Gauge
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewCollectors creates and registers the service metrics, the Go runtime
// and process collectors, and heap gauges fed by a MemoryCollector.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "HTTP requests handled, by path and status code.",
		}, []string{"path", "status"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently in flight.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent evaluating an operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operation_errors_total",
			Help:      "Failed evaluations, by operation and result code.",
		}, []string{"op", "code"}),
	}

	mc := NewMemoryCollector()
	c.registry.MustRegister(
		c.requests, c.active, c.duration, c.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Bytes of allocated heap objects.",
		}, func() float64 { return float64(mc.Snapshot().HeapAlloc) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "heap_objects",
			Help:      "Number of allocated heap objects.",
		}, func() float64 { return float64(mc.Snapshot().HeapObjects) }),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RequestStarted marks a request as in flight.
func (c *Collectors) RequestStarted() { c.active.Inc() }

// RequestFinished records a completed request.
func (c *Collectors) RequestFinished(path string, status int) {
	c.active.Dec()
	c.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveOperation records the duration of an evaluation and, when code is
// not Okay, counts it as a failure.
func (c *Collectors) ObserveOperation(op string, d time.Duration, code mp.Code) {
	c.duration.WithLabelValues(op).Observe(d.Seconds())
	if code != mp.Okay {
		c.failures.WithLabelValues(op, strconv.Itoa(int(code))).Inc()
	}
}
