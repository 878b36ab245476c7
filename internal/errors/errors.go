package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/mpcalc/internal/mp"
)

// Process exit statuses.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorMismatch = 3 // reduction strategies disagreed
	ExitErrorConfig   = 4 // bad flags, config file or operand text
	ExitErrorEngine   = 5 // the engine returned a non-Okay code
	ExitErrorCanceled = 130
)

// ConfigError reports unusable flags, environment or configuration files.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError reports a request field the engine never got to see, such
// as an operand that does not parse or exceeds a size limit.
type ValidationError struct {
	// Field names the offending request field ("a", "op", "radix", ...).
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// EngineError ties an mp failure to the operation that produced it. Its
// message uses the fixed description of the result code so callers never
// depend on the wording of the cause.
type EngineError struct {
	Operation string
	Cause     error
}

func (e EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, mp.ErrorToString(mp.CodeOf(e.Cause)))
}

func (e EngineError) Unwrap() error { return e.Cause }

// Code returns the engine result code carried by the cause.
func (e EngineError) Code() mp.Code { return mp.CodeOf(e.Cause) }

// TimeoutError is returned when an evaluation outlives its time limit. It
// matches context.DeadlineExceeded under errors.Is.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ExitCodeFor classifies err into one of the Exit* statuses. Input problems
// take precedence over the context state, which takes precedence over engine
// codes.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr ConfigError
		valErr ValidationError
		mpErr  *mp.Error
	)
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &mpErr):
		return ExitErrorEngine
	}
	return ExitErrorGeneric
}

// HandleCalculationError writes a one-line status for err to out and returns
// its exit code. duration is the time spent before the failure.
func HandleCalculationError(err error, duration time.Duration, out io.Writer) int {
	code := ExitCodeFor(err)
	switch code {
	case ExitSuccess:
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). %v (stopped after %s).\n", err, duration)
	case ExitErrorCanceled:
		fmt.Fprintln(out, "Status: Canceled by user.")
	case ExitErrorEngine:
		fmt.Fprintf(out, "Status: Failure (%s). %v\n", mp.ErrorToString(mp.CodeOf(err)), err)
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Invalid input. %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
