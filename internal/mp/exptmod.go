package mp

import (
	"errors"
	"fmt"
	"strings"
)

// Reduction selects the modular reduction used by ExptModWith.
type Reduction int

const (
	// ReductionAuto picks the diminished radix or 2^k reduction when the
	// modulus has that shape, then Montgomery for odd moduli and Barrett
	// otherwise.
	ReductionAuto Reduction = iota
	ReductionBarrett
	ReductionMontgomery
	ReductionDivision
	// ReductionDR needs a modulus accepted by DRIsModulus.
	ReductionDR
	// Reduction2k needs a modulus accepted by ReduceIs2k.
	Reduction2k
)

var reductionNames = [...]string{"auto", "barrett", "montgomery", "division", "dr", "2k"}

func (r Reduction) String() string {
	if r >= 0 && int(r) < len(reductionNames) {
		return reductionNames[r]
	}
	return fmt.Sprintf("Reduction(%d)", int(r))
}

// ReductionNames lists the accepted reduction names in declaration order.
func ReductionNames() []string {
	return reductionNames[:]
}

// ParseReduction maps a reduction name back to its value.
func ParseReduction(s string) (Reduction, error) {
	for i, name := range reductionNames {
		if name == s {
			return Reduction(i), nil
		}
	}
	return ReductionAuto, fmt.Errorf("unknown reduction %q (want one of %s)", s, strings.Join(reductionNames[:], ", "))
}

// Supports reports whether r can reduce modulo p. Montgomery needs an odd
// modulus and the two restricted reductions need their modulus shape.
func (r Reduction) Supports(p *Int) bool {
	switch r {
	case ReductionMontgomery:
		return p.IsOdd()
	case ReductionDR:
		return DRIsModulus(p)
	case Reduction2k:
		return ReduceIs2k(p)
	}
	return true
}

// MaxWindowBits is the largest accepted sliding-window width.
const MaxWindowBits = 8

// ExptOptions tunes ExptModWith. The zero value is the default behaviour.
type ExptOptions struct {
	Reduction Reduction
	// WindowBits forces the sliding-window width; 0 picks it from the
	// exponent size.
	WindowBits int
	// Interrupt is polled before each exponent digit is scanned. A non-nil
	// return abandons the exponentiation and is handed back unchanged, y
	// untouched. Typically context.Context.Err.
	Interrupt func() error
}

// ExptMod sets y = g^x mod p.
//
// p must be positive. p == 1 yields 0. A negative exponent uses the inverse of
// g modulo p, failing with ErrVal when none exists. On failure y is unchanged.
func (y *Int) ExptMod(g, x, p *Int) error {
	return y.ExptModWith(g, x, p, ExptOptions{})
}

// ExptModWith is ExptMod with an explicit reduction strategy and window width.
func (y *Int) ExptModWith(g, x, p *Int, opts ExptOptions) error {
	if p.sign == NEG || p.used == 0 {
		return newError(ErrVal, "exptmod")
	}
	if opts.WindowBits < 0 || opts.WindowBits > MaxWindowBits {
		return newError(ErrVal, "exptmod")
	}
	if p.CmpD(1) == EQ {
		y.Zero()
		return nil
	}

	if x.sign == NEG {
		var inv, ax Int
		if err := inv.InvMod(g, p); err != nil {
			return relabel(err, "exptmod")
		}
		if err := ax.Abs(x); err != nil {
			return relabel(err, "exptmod")
		}
		return y.ExptModWith(&inv, &ax, p, opts)
	}

	red, err := newReducer(p, opts.Reduction)
	if err != nil {
		return relabel(err, "exptmod")
	}
	winsize := opts.WindowBits
	if winsize == 0 {
		winsize = windowSize(x.CountBits())
	}

	var res Int
	if err := slidingWindow(&res, g, x, red, winsize, opts.Interrupt); err != nil {
		var mpErr *Error
		if !errors.As(err, &mpErr) {
			return err
		}
		return relabel(err, "exptmod")
	}
	y.Exch(&res)
	return nil
}

// windowSize picks the window width for an exponent of the given bit length.
func windowSize(bits int) int {
	switch {
	case bits <= 7:
		return 2
	case bits <= 36:
		return 3
	case bits <= 140:
		return 4
	case bits <= 450:
		return 5
	case bits <= 1303:
		return 6
	case bits <= 3529:
		return 7
	}
	return 8
}

// ─────────────────────────────────────────────────────────────────────────────
// Reducers
// ─────────────────────────────────────────────────────────────────────────────

// reducer abstracts the residue representation used during exponentiation.
type reducer interface {
	// enter sets dst to the representation of x mod p.
	enter(dst, x *Int) error
	// one sets dst to the representation of 1.
	one(dst *Int) error
	// reduce brings a product of two representations back into range.
	reduce(x *Int) error
	// leave converts a representation back to a plain residue.
	leave(x *Int) error
}

func newReducer(p *Int, kind Reduction) (reducer, error) {
	if kind == ReductionAuto {
		switch {
		case DRIsModulus(p):
			kind = ReductionDR
		case ReduceIs2k(p):
			kind = Reduction2k
		case p.IsOdd():
			kind = ReductionMontgomery
		default:
			kind = ReductionBarrett
		}
	}
	switch kind {
	case ReductionBarrett:
		r := &barrettReducer{p: p}
		if err := r.mu.ReduceSetup(p); err != nil {
			return nil, err
		}
		return r, nil
	case ReductionMontgomery:
		rho, err := MontgomerySetup(p)
		if err != nil {
			return nil, err
		}
		r := &montgomeryReducer{p: p, rho: rho}
		if err := r.norm.MontgomeryNormalization(p); err != nil {
			return nil, err
		}
		return r, nil
	case ReductionDivision:
		return divisionReducer{p: p}, nil
	case ReductionDR:
		if !DRIsModulus(p) {
			return nil, newError(ErrVal, "dr_setup")
		}
		return drReducer{p: p, d: DRSetup(p)}, nil
	case Reduction2k:
		if !ReduceIs2k(p) {
			return nil, newError(ErrVal, "reduce_2k_setup")
		}
		d, err := Reduce2kSetup(p)
		if err != nil {
			return nil, err
		}
		return twoKReducer{p: p, d: d}, nil
	}
	return nil, newError(ErrVal, "exptmod")
}

type barrettReducer struct {
	p  *Int
	mu Int
}

func (r *barrettReducer) enter(dst, x *Int) error { return dst.Mod(x, r.p) }
func (r *barrettReducer) one(dst *Int) error      { dst.Set(1); return nil }
func (r *barrettReducer) reduce(x *Int) error     { return barrettReduce(x, r.p, &r.mu) }
func (r *barrettReducer) leave(*Int) error        { return nil }

type montgomeryReducer struct {
	p    *Int
	rho  Digit
	norm Int // B^k mod p
}

func (r *montgomeryReducer) enter(dst, x *Int) error { return dst.MulMod(x, &r.norm, r.p) }
func (r *montgomeryReducer) one(dst *Int) error      { return dst.Copy(&r.norm) }
func (r *montgomeryReducer) reduce(x *Int) error     { return montgomeryReduce(x, r.p, r.rho) }
func (r *montgomeryReducer) leave(x *Int) error      { return montgomeryReduce(x, r.p, r.rho) }

type divisionReducer struct {
	p *Int
}

func (r divisionReducer) enter(dst, x *Int) error { return dst.Mod(x, r.p) }
func (r divisionReducer) one(dst *Int) error      { dst.Set(1); return nil }
func (r divisionReducer) reduce(x *Int) error     { return x.Mod(x, r.p) }
func (r divisionReducer) leave(*Int) error        { return nil }

type drReducer struct {
	p *Int
	d Digit
}

func (r drReducer) enter(dst, x *Int) error { return dst.Mod(x, r.p) }
func (r drReducer) one(dst *Int) error      { dst.Set(1); return nil }
func (r drReducer) reduce(x *Int) error     { return drReduce(x, r.p, r.d) }
func (r drReducer) leave(*Int) error        { return nil }

type twoKReducer struct {
	p *Int
	d Digit
}

func (r twoKReducer) enter(dst, x *Int) error { return dst.Mod(x, r.p) }
func (r twoKReducer) one(dst *Int) error      { dst.Set(1); return nil }
func (r twoKReducer) reduce(x *Int) error     { return reduce2k(x, r.p, r.d) }
func (r twoKReducer) leave(*Int) error        { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Sliding window (HAC 14.85)
// ─────────────────────────────────────────────────────────────────────────────

// mulReduce sets z = a*b and reduces it.
func mulReduce(z, a, b *Int, red reducer) error {
	if err := z.Mul(a, b); err != nil {
		return err
	}
	return red.reduce(z)
}

// slidingWindow sets res = g^x mod p for x >= 0, scanning the exponent from
// its most significant bit with a window of winsize bits. A nil interrupt is
// never polled.
func slidingWindow(res, g, x *Int, red reducer, winsize int, interrupt func() error) error {
	if interrupt != nil {
		if err := interrupt(); err != nil {
			return err
		}
	}

	// Precompute M[1] and M[2^(w-1)] .. M[2^w - 1]; the rest is unused.
	m := make([]Int, 1<<winsize)
	half := 1 << (winsize - 1)

	if err := red.enter(&m[1], g); err != nil {
		return err
	}
	if err := m[half].Copy(&m[1]); err != nil {
		return err
	}
	for i := 0; i < winsize-1; i++ {
		if err := mulReduce(&m[half], &m[half], &m[half], red); err != nil {
			return err
		}
	}
	for i := half + 1; i < 1<<winsize; i++ {
		if err := mulReduce(&m[i], &m[i-1], &m[1], red); err != nil {
			return err
		}
	}

	if err := red.one(res); err != nil {
		return err
	}

	const (
		modeLeading = iota // skipping leading zero bits
		modeIdle           // between windows
		modeWindow         // collecting window bits
	)
	mode := modeLeading
	bitcnt := 1
	var buf Digit
	digidx := x.used - 1
	bitcpy, bitbuf := 0, 0

	for {
		bitcnt--
		if bitcnt == 0 {
			if digidx < 0 {
				break
			}
			if interrupt != nil {
				if err := interrupt(); err != nil {
					return err
				}
			}
			buf = x.dp[digidx]
			digidx--
			bitcnt = DigitBit
		}

		bit := int(buf>>(DigitBit-1)) & 1
		buf <<= 1

		if mode == modeLeading && bit == 0 {
			continue
		}
		if mode == modeIdle && bit == 0 {
			if err := mulReduce(res, res, res, red); err != nil {
				return err
			}
			continue
		}

		bitcpy++
		bitbuf |= bit << (winsize - bitcpy)
		mode = modeWindow

		if bitcpy == winsize {
			for i := 0; i < winsize; i++ {
				if err := mulReduce(res, res, res, red); err != nil {
					return err
				}
			}
			if err := mulReduce(res, res, &m[bitbuf], red); err != nil {
				return err
			}
			bitcpy, bitbuf = 0, 0
			mode = modeIdle
		}
	}

	// Flush a partial window bit by bit.
	if mode == modeWindow && bitcpy > 0 {
		for i := 0; i < bitcpy; i++ {
			if err := mulReduce(res, res, res, red); err != nil {
				return err
			}
			bitbuf <<= 1
			if bitbuf&(1<<winsize) != 0 {
				if err := mulReduce(res, res, &m[1], red); err != nil {
					return err
				}
			}
		}
	}

	return red.leave(res)
}
