package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/mp"
)

// MaxResultBits bounds the size of results whose growth is driven by the
// digit operand (exptd, mul2d), so a single request cannot ask for a
// multi-gigabyte power.
const MaxResultBits = 1 << 24

// Request is a single evaluation. Operand strings are parsed in InputRadix,
// or with "0x", "0b" and "0o" prefix detection when it is 0. Results are
// rendered in Radix, decimal when 0.
type Request struct {
	Op         string `json:"op" msgpack:"op"`
	A          string `json:"a,omitempty" msgpack:"a,omitempty"`
	B          string `json:"b,omitempty" msgpack:"b,omitempty"`
	M          string `json:"m,omitempty" msgpack:"m,omitempty"`
	D          uint32 `json:"d,omitempty" msgpack:"d,omitempty"`
	InputRadix int    `json:"input_radix,omitempty" msgpack:"input_radix,omitempty"`
	Radix      int    `json:"radix,omitempty" msgpack:"radix,omitempty"`
	Reduction  string `json:"reduction,omitempty" msgpack:"reduction,omitempty"`
	Window     int    `json:"window,omitempty" msgpack:"window,omitempty"`
}

// Result is the rendered outcome of a Request. Code and Status are always
// set, on failure too.
type Result struct {
	Op        string `json:"op" msgpack:"op"`
	Value     string `json:"value,omitempty" msgpack:"value,omitempty"`
	Remainder string `json:"remainder,omitempty" msgpack:"remainder,omitempty"`
	Ordering  string `json:"ordering,omitempty" msgpack:"ordering,omitempty"`
	Bits      int    `json:"bits" msgpack:"bits"`
	Code      int    `json:"code" msgpack:"code"`
	Status    string `json:"status" msgpack:"status"`
}

// Evaluate runs req against the default registry.
func Evaluate(ctx context.Context, req Request) (Result, error) {
	return DefaultRegistry().Evaluate(ctx, req)
}

// Evaluate parses the operands of req, runs the named operation and renders
// the result. Engine failures are returned as apperrors.EngineError, bad
// input as apperrors.ValidationError.
func (r *Registry) Evaluate(ctx context.Context, req Request) (Result, error) {
	res := Result{Op: req.Op}
	fail := func(err error) (Result, error) {
		code := mp.CodeOf(err)
		if IsValidation(err) {
			code = mp.ErrVal
		}
		res.Code = int(code)
		res.Status = mp.ErrorToString(code)
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	op, err := r.Get(strings.ToLower(req.Op))
	if err != nil {
		return fail(apperrors.ValidationError{Field: "op", Message: err.Error()})
	}
	res.Op = op.Name

	outRadix := req.Radix
	if outRadix == 0 {
		outRadix = 10
	}
	if outRadix < mp.MinRadix || outRadix > mp.MaxRadix {
		return fail(apperrors.ValidationError{
			Field:   "radix",
			Message: fmt.Sprintf("must be between %d and %d", mp.MinRadix, mp.MaxRadix),
		})
	}

	var in operands
	if err := in.parse(op, req); err != nil {
		return fail(err)
	}
	if err := checkGrowth(op, &in); err != nil {
		return fail(err)
	}

	in.opts.Interrupt = ctx.Err

	var out outcome
	if err := op.run(&in, &out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(ctxErr)
		}
		return fail(apperrors.EngineError{Operation: op.Name, Cause: err})
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if err := out.render(&res, outRadix); err != nil {
		return fail(apperrors.EngineError{Operation: op.Name, Cause: err})
	}
	res.Status = mp.ErrorToString(mp.Okay)
	return res, nil
}

func (in *operands) parse(op Operation, req Request) error {
	fields := map[byte]struct {
		text string
		dst  *mp.Int
	}{
		'a': {req.A, &in.a},
		'b': {req.B, &in.b},
		'm': {req.M, &in.m},
	}
	for i := 0; i < len(op.Args); i++ {
		f := fields[op.Args[i]]
		name := string(op.Args[i])
		if f.text == "" {
			return apperrors.ValidationError{Field: name, Message: "operand is required for " + op.Name}
		}
		if err := f.dst.SetString(f.text, req.InputRadix); err != nil {
			return apperrors.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("cannot parse %q: %s", f.text, mp.ErrorToString(mp.CodeOf(err))),
			}
		}
	}
	in.d = mp.Digit(req.D)

	if req.Reduction != "" {
		red, err := mp.ParseReduction(strings.ToLower(req.Reduction))
		if err != nil {
			return apperrors.ValidationError{Field: "reduction", Message: err.Error()}
		}
		in.opts.Reduction = red
	}
	in.opts.WindowBits = req.Window
	return nil
}

// checkGrowth rejects digit-driven operations whose result would exceed
// MaxResultBits.
func checkGrowth(op Operation, in *operands) error {
	var bits int
	switch op.Name {
	case "exptd":
		bits = in.a.CountBits() * int(in.d)
	case "mul2d":
		bits = in.a.CountBits() + int(in.d)
	default:
		return nil
	}
	if bits > MaxResultBits {
		return apperrors.ValidationError{
			Field:   "d",
			Message: fmt.Sprintf("result would need %d bits (limit %d)", bits, MaxResultBits),
		}
	}
	return nil
}

func (out *outcome) render(res *Result, radix int) error {
	if out.ordering != nil {
		res.Ordering = out.ordering.String()
		return nil
	}
	s, err := out.value.ToRadix(radix)
	if err != nil {
		return err
	}
	res.Value = s
	res.Bits = out.value.CountBits()
	switch {
	case out.rem != nil:
		if res.Remainder, err = out.rem.ToRadix(radix); err != nil {
			return err
		}
	case out.digit != nil:
		var d mp.Int
		d.SetU32(uint32(*out.digit))
		if res.Remainder, err = d.ToRadix(radix); err != nil {
			return err
		}
	}
	return nil
}

// IsValidation reports whether err came from request validation rather than
// the engine.
func IsValidation(err error) bool {
	var v apperrors.ValidationError
	return errors.As(err, &v)
}
