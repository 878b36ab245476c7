package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/mp"
)

func newTestServer(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()
	cfg := DefaultConfig("127.0.0.1:0")
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, eval.DefaultRegistry(), newTestLogger()).Handler()
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/eval", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleEval_JSON(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want eval.Result
	}{
		{
			name: "exptmod",
			body: `{"op":"exptmod","a":"4","b":"13","m":"497"}`,
			want: eval.Result{Op: "exptmod", Value: "445", Bits: 9, Status: "Successful"},
		},
		{
			name: "div with remainder",
			body: `{"op":"div","a":"-7","b":"2"}`,
			want: eval.Result{Op: "div", Value: "-3", Remainder: "-1", Bits: 2, Status: "Successful"},
		},
		{
			name: "cmp",
			body: `{"op":"CMP","a":"-5","b":"3"}`,
			want: eval.Result{Op: "cmp", Ordering: "LT", Status: "Successful"},
		},
		{
			name: "hex in and out",
			body: `{"op":"add","a":"0xff","b":"1","radix":16}`,
			want: eval.Result{Op: "add", Value: "100", Bits: 9, Status: "Successful"},
		},
		{
			name: "digit operand",
			body: `{"op":"exptd","a":"2","d":100}`,
			want: eval.Result{Op: "exptd", Value: "1267650600228229401496703205376", Bits: 101, Status: "Successful"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := postJSON(t, h, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got eval.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleEval_Msgpack(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	body, err := msgpack.Marshal(eval.Request{Op: "mulmod", A: "123456789", B: "987654321", M: "1000000007"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/eval", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/x-msgpack")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var got eval.Result
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "259106859", got.Value)
	assert.Equal(t, 0, got.Code)
}

func TestHandleEval_Errors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.Security.MaxOperandDigits = 32 })

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   mp.Code
	}{
		{"unknown op", `{"op":"nope","a":"1"}`, http.StatusBadRequest, mp.ErrVal},
		{"missing operand", `{"op":"add","a":"1"}`, http.StatusBadRequest, mp.ErrVal},
		{"bad digits", `{"op":"add","a":"12z","b":"1"}`, http.StatusBadRequest, mp.ErrVal},
		{"bad radix", `{"op":"add","a":"1","b":"1","radix":65}`, http.StatusBadRequest, mp.ErrVal},
		{"unknown field", `{"op":"add","a":"1","b":"1","x":"2"}`, http.StatusBadRequest, mp.ErrVal},
		{"malformed", `{"op":`, http.StatusBadRequest, mp.ErrVal},
		{"zero modulus", `{"op":"exptmod","a":"4","b":"13","m":"0"}`, http.StatusUnprocessableEntity, mp.ErrVal},
		{"division by zero", `{"op":"div","a":"7","b":"0"}`, http.StatusUnprocessableEntity, mp.ErrVal},
		{"no inverse", `{"op":"invmod","a":"4","b":"8"}`, http.StatusUnprocessableEntity, mp.ErrVal},
		{"operand too long", `{"op":"sqr","a":"` + strings.Repeat("9", 33) + `"}`, http.StatusRequestEntityTooLarge, mp.ErrBuf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := postJSON(t, h, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var got errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, int(tt.wantCode), got.Code)
			assert.Equal(t, mp.ErrorToString(tt.wantCode), got.Status)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestHandleEval_TimeoutStopsExptmod(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.EvalTimeout = 5 * time.Millisecond })

	body := `{"op":"exptmod","a":"3","b":"` + strings.Repeat("e", 2048) +
		`","m":"` + strings.Repeat("f", 2048) + `","input_radix":16}`
	start := time.Now()
	rec := postJSON(t, h, body)
	assert.Less(t, time.Since(start), time.Second)
	require.Equal(t, http.StatusGatewayTimeout, rec.Code, rec.Body.String())

	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int(mp.ErrGeneric), got.Code)
}

func TestHandleEval_BodyLimit(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.Security.MaxBodyBytes = 16 })

	rec := postJSON(t, h, `{"op":"add","a":"1","b":"2"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleEval_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/eval", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandleEval_Preflight(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/eval", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestHandleOps(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []opInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, len(eval.DefaultRegistry().List()))

	byName := make(map[string]opInfo, len(ops))
	for _, op := range ops {
		byName[op.Name] = op
	}
	assert.Equal(t, []string{"a", "b", "m"}, byName["exptmod"].Operands)
	assert.True(t, byName["divd"].UsesDigit)
	assert.False(t, byName["add"].UsesDigit)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.GreaterOrEqual(t, got.UptimeSeconds, 0.0)
	assert.NotZero(t, got.HeapAlloc)
}

func TestHandler_CountsEvaluations(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil)

	postJSON(t, h, `{"op":"exptmod","a":"4","b":"13","m":"0"}`)
	postJSON(t, h, `{"op":"bogus"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()
	assert.Contains(t, body, `mpcalc_operation_errors_total{code="-3",op="exptmod"} 1`)
	assert.Contains(t, body, `mpcalc_operation_errors_total{code="-3",op="unknown"} 1`)
	assert.Contains(t, body, `mpcalc_requests_total{path="/v1/eval",status="422"} 1`)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.ValidationError{Field: "a", Message: "bad"}, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"engine value", apperrors.EngineError{Operation: "div", Cause: mp.ErrValue}, http.StatusUnprocessableEntity},
		{"engine memory", apperrors.EngineError{Operation: "exptd", Cause: mp.ErrMemory}, http.StatusInsufficientStorage},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	t.Parallel()
	s := New(DefaultConfig("127.0.0.1:0"), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
