package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/metrics"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/sysmon"
)

const tracerName = "github.com/agbru/mpcalc/internal/server"

// Config holds the listener settings of the server.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// EvalTimeout bounds a single evaluation.
	EvalTimeout time.Duration
	Security    SecurityConfig
}

// DefaultConfig returns the server defaults for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:            addr,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    time.Minute,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		EvalTimeout:     30 * time.Second,
		Security:        DefaultSecurityConfig(),
	}
}

// Server serves evaluations over HTTP.
type Server struct {
	config   Config
	registry *eval.Registry
	metrics  *Metrics
	memory   *metrics.MemoryCollector
	logger   logging.Logger
	started  time.Time
}

// New creates a server evaluating requests against registry.
func New(config Config, registry *eval.Registry, logger logging.Logger) *Server {
	if registry == nil {
		registry = eval.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		config:   config,
		registry: registry,
		metrics:  NewMetrics(),
		memory:   metrics.NewMemoryCollector(),
		logger:   logger,
		started:  time.Now(),
	}
}

// Handler returns the routed handler with the security and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, s.metricsMiddleware(SecurityMiddleware(s.config.Security, h)))
	}
	route("/v1/eval", s.handleEval)
	route("/v1/ops", s.handleOps)
	route("/health", s.handleHealth)
	route("/metrics", s.handleMetrics)
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", logging.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// errorResponse is the body of every non-2xx evaluation response.
type errorResponse struct {
	Error  string `json:"error" msgpack:"error"`
	Code   int    `json:"code" msgpack:"code"`
	Status string `json:"status" msgpack:"status"`
}

// handleEval serves POST /v1/eval.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}
	c := codecFor(r)

	var req eval.Request
	if err := c.Decode(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, c, http.StatusRequestEntityTooLarge, err, mp.ErrBuf)
			return
		}
		s.writeError(w, c, http.StatusBadRequest, fmt.Errorf("decode request: %w", err), mp.ErrVal)
		return
	}
	if err := s.config.Security.validateOperands(req); err != nil {
		s.writeError(w, c, http.StatusRequestEntityTooLarge, err, mp.ErrBuf)
		return
	}

	ctx := r.Context()
	if s.config.EvalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.EvalTimeout)
		defer cancel()
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "eval "+strings.ToLower(req.Op))
	defer span.End()

	start := time.Now()
	res, err := s.registry.Evaluate(ctx, req)
	duration := time.Since(start)
	s.metrics.ObserveEvaluation(s.opLabel(res.Op), duration, mp.Code(res.Code))
	span.SetAttributes(attribute.String("mp.op", res.Op), attribute.Int("mp.code", res.Code))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("evaluation failed", err, logging.String("op", res.Op))
		} else {
			s.logger.Debug("evaluation rejected", logging.String("op", res.Op), logging.Err(err))
		}
		s.respond(w, c, status, errorResponse{Error: err.Error(), Code: res.Code, Status: res.Status})
		return
	}

	s.logger.Debug("evaluation done",
		logging.String("op", res.Op),
		logging.Int("bits", res.Bits),
		logging.Float64("duration_ms", float64(duration.Microseconds())/1000))
	s.respond(w, c, http.StatusOK, res)
}

// opLabel keeps unknown operation names out of the metric labels.
func (s *Server) opLabel(name string) string {
	if _, err := s.registry.Get(name); err != nil {
		return "unknown"
	}
	return name
}

// statusFor maps an evaluation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case eval.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	var engine apperrors.EngineError
	if errors.As(err, &engine) {
		if engine.Code() == mp.ErrMem {
			return http.StatusInsufficientStorage
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// opInfo describes one operation in the GET /v1/ops listing.
type opInfo struct {
	Name      string   `json:"name" msgpack:"name"`
	Operands  []string `json:"operands" msgpack:"operands"`
	UsesDigit bool     `json:"uses_digit,omitempty" msgpack:"uses_digit,omitempty"`
	Help      string   `json:"help" msgpack:"help"`
}

// handleOps serves GET /v1/ops.
func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	names := s.registry.List()
	ops := make([]opInfo, 0, len(names))
	for _, name := range names {
		op, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		operands := make([]string, len(op.Args))
		for i := range len(op.Args) {
			operands[i] = string(op.Args[i])
		}
		ops = append(ops, opInfo{Name: op.Name, Operands: operands, UsesDigit: op.UsesDigit, Help: op.Help})
	}
	s.respond(w, codecFor(r), http.StatusOK, ops)
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status        string       `json:"status" msgpack:"status"`
	UptimeSeconds float64      `json:"uptime_seconds" msgpack:"uptime_seconds"`
	HeapAlloc     uint64       `json:"heap_alloc" msgpack:"heap_alloc"`
	NumGC         uint32       `json:"num_gc" msgpack:"num_gc"`
	System        sysmon.Stats `json:"system" msgpack:"system"`
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	mem := s.memory.Snapshot()
	s.respond(w, codecFor(r), http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		HeapAlloc:     mem.HeapAlloc,
		NumGC:         mem.NumGC,
		System:        sysmon.SampleContext(ctx),
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, codecFor(r), http.StatusMethodNotAllowed,
		fmt.Errorf("method %s not allowed", r.Method), mp.ErrVal)
}

func (s *Server) writeError(w http.ResponseWriter, c codec, status int, err error, code mp.Code) {
	s.respond(w, c, status, errorResponse{
		Error:  err.Error(),
		Code:   int(code),
		Status: mp.ErrorToString(code),
	})
}

func (s *Server) respond(w http.ResponseWriter, c codec, status int, v any) {
	if err := writeResponse(w, c, status, v); err != nil {
		s.logger.Error("failed to write response", err)
	}
}
