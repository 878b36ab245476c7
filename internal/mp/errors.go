package mp

import "errors"

// Code is the closed set of result codes reported by the engine.
type Code int

const (
	Okay       Code = 0  // no error
	ErrGeneric Code = -1 // unspecified failure
	ErrMem     Code = -2 // storage could not grow
	ErrVal     Code = -3 // operand outside the accepted domain
	ErrIter    Code = -4 // iteration limit reached
	ErrBuf     Code = -5 // output buffer too small
	ErrOvf     Code = -6 // result does not fit the requested type
)

var codeDescriptions = map[Code]string{
	Okay:       "Successful",
	ErrGeneric: "Unknown error",
	ErrMem:     "Out of heap",
	ErrVal:     "Value out of range",
	ErrIter:    "Max. iterations reached",
	ErrBuf:     "Buffer overflow",
	ErrOvf:     "Integer overflow",
}

// ErrorToString returns the fixed human-readable description of code.
// Codes outside the known set yield "Invalid error code".
func ErrorToString(code Code) string {
	if s, ok := codeDescriptions[code]; ok {
		return s
	}
	return "Invalid error code"
}

func (c Code) String() string { return ErrorToString(c) }

// Error is the error type returned by every failing engine operation.
type Error struct {
	Code Code
	Op   string // operation that failed, empty for sentinels
}

func (e *Error) Error() string {
	if e.Op == "" {
		return "mp: " + ErrorToString(e.Code)
	}
	return "mp: " + e.Op + ": " + ErrorToString(e.Code)
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, ErrValue) matches regardless of the failing operation.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for use with errors.Is.
var (
	ErrMemory   = &Error{Code: ErrMem}
	ErrValue    = &Error{Code: ErrVal}
	ErrBuffer   = &Error{Code: ErrBuf}
	ErrOverflow = &Error{Code: ErrOvf}
)

// CodeOf extracts the result code carried by err. A nil error is Okay and
// errors from outside the engine map to ErrGeneric.
func CodeOf(err error) Code {
	if err == nil {
		return Okay
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrGeneric
}

func newError(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

// relabel reports err under op while keeping its code.
func relabel(err error, op string) error {
	if err == nil {
		return nil
	}
	return newError(CodeOf(err), op)
}
