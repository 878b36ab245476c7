package server

import (
	"net/http"
	"time"

	"github.com/agbru/mpcalc/internal/metrics"
	"github.com/agbru/mpcalc/internal/mp"
)

// Metrics tracks HTTP and evaluation metrics for one server.
type Metrics struct {
	collectors *metrics.Collectors
	handler    http.Handler
}

// NewMetrics creates the server metrics on a fresh registry.
func NewMetrics() *Metrics {
	c := metrics.NewCollectors()
	return &Metrics{collectors: c, handler: c.Handler()}
}

// IncrementActiveRequests marks a request as in flight.
func (m *Metrics) IncrementActiveRequests() {
	m.collectors.RequestStarted()
}

// FinishRequest marks a request as done and counts it by path and status.
func (m *Metrics) FinishRequest(path string, status int) {
	m.collectors.RequestFinished(path, status)
}

// ObserveEvaluation records the duration and result code of an evaluation.
func (m *Metrics) ObserveEvaluation(op string, d time.Duration, code mp.Code) {
	m.collectors.ObserveOperation(op, d, code)
}

// WritePrometheus writes the metrics in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware tracks in-flight requests and counts completed ones.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() { s.metrics.FinishRequest(r.URL.Path, rec.status) }()
		next(rec, r)
	}
}

// handleMetrics serves GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.metrics.WritePrometheus(w, r)
}
