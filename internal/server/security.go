package server

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/eval"
)

// SecurityConfig holds the CORS settings and input limits of the server.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxOperandDigits bounds the length of each operand string.
	MaxOperandDigits int
	// MaxBodyBytes bounds the size of request bodies.
	MaxBodyBytes int64
}

// DefaultSecurityConfig returns permissive CORS with input limits suited to
// interactive use.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:       true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxOperandDigits: 20_000,
		MaxBodyBytes:     1 << 20,
	}
}

// SecurityMiddleware sets security headers, answers CORS preflight requests
// and applies the body size limit.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if config.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes)
		}
		next(w, r)
	}
}

// allowedOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func allowedOrigin(allowed []string, origin string) string {
	if slices.Contains(allowed, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin
	}
	return ""
}

// validateOperands rejects operands longer than the configured limit.
func (c SecurityConfig) validateOperands(req eval.Request) error {
	if c.MaxOperandDigits <= 0 {
		return nil
	}
	for _, operand := range []struct{ name, value string }{{"a", req.A}, {"b", req.B}, {"m", req.M}} {
		if len(operand.value) > c.MaxOperandDigits {
			return apperrors.ValidationError{
				Field:   operand.name,
				Message: fmt.Sprintf("operand has %d characters (limit %d)", len(operand.value), c.MaxOperandDigits),
			}
		}
	}
	return nil
}
