package mp

import "math/bits"

// Digit holds one base-2^DigitBit digit in its low DigitBit bits.
type Digit uint32

// Word is wide enough to hold the product of two digits plus carries.
type Word uint64

const (
	// DigitBit is the number of value bits per digit.
	DigitBit = 28
	// Mask selects the value bits of a digit.
	Mask Digit = 1<<DigitBit - 1
	// DigitMax is the largest single-digit value.
	DigitMax = Mask

	// Prec is the number of digits allocated by Init.
	Prec = 32
	// MaxDigits bounds the storage of a single Int. Growing past it fails
	// with ErrMem.
	MaxDigits = 1 << 24
)

// Sign of an Int. Zero is always ZPOS.
type Sign uint8

const (
	ZPOS Sign = iota
	NEG
)

func (s Sign) flip() Sign {
	if s == NEG {
		return ZPOS
	}
	return NEG
}

// Int is an arbitrary-precision signed integer. The zero value is 0.
type Int struct {
	dp   []Digit // len(dp) is the allocated digit count
	used int
	sign Sign
}

// New returns an initialized zero.
func New() *Int {
	z := new(Int)
	_ = z.Init()
	return z
}

// FromInt64 returns a new Int holding v.
func FromInt64(v int64) *Int {
	z := New()
	z.SetI64(v)
	return z
}

// FromUint64 returns a new Int holding v.
func FromUint64(v uint64) *Int {
	z := New()
	z.SetU64(v)
	return z
}

// Init sets z to zero with Prec digits of storage.
func (z *Int) Init() error {
	return z.InitSize(Prec)
}

// InitSize sets z to zero with at least n digits of storage.
func (z *Int) InitSize(n int) error {
	if n < 0 {
		return newError(ErrVal, "init_size")
	}
	if n > MaxDigits {
		return newError(ErrMem, "init_size")
	}
	z.dp = make([]Digit, max(n, 1))
	z.used = 0
	z.sign = ZPOS
	return nil
}

// InitCopy initializes z as a copy of x.
func (z *Int) InitCopy(x *Int) error {
	if err := z.InitSize(max(x.used, Prec)); err != nil {
		return err
	}
	return z.Copy(x)
}

// InitSet initializes z to the single digit d.
func (z *Int) InitSet(d Digit) error {
	if err := z.Init(); err != nil {
		return err
	}
	z.Set(d)
	return nil
}

// Clear releases the storage of z, leaving a zero of capacity 0.
func (z *Int) Clear() {
	z.dp = nil
	z.used = 0
	z.sign = ZPOS
}

// Zero sets z to 0 keeping its storage.
func (z *Int) Zero() {
	clear(z.dp[:z.used])
	z.used = 0
	z.sign = ZPOS
}

// Grow ensures z can hold n digits. Existing digits are preserved.
func (z *Int) Grow(n int) error {
	if len(z.dp) >= n {
		return nil
	}
	if n > MaxDigits {
		return newError(ErrMem, "grow")
	}
	// Round up and keep some headroom so repeated growth stays amortised.
	n += 2*Prec - n%Prec
	n = min(n, MaxDigits)
	dp := make([]Digit, n)
	copy(dp, z.dp[:z.used])
	z.dp = dp
	return nil
}

// Shrink trims the storage of z to its used digits (at least one).
func (z *Int) Shrink() error {
	n := max(z.used, 1)
	if len(z.dp) == n {
		return nil
	}
	dp := make([]Digit, n)
	copy(dp, z.dp[:z.used])
	z.dp = dp
	return nil
}

// Copy sets z to x.
func (z *Int) Copy(x *Int) error {
	if z == x {
		return nil
	}
	if err := z.Grow(x.used); err != nil {
		return err
	}
	copy(z.dp, x.dp[:x.used])
	if z.used > x.used {
		clear(z.dp[x.used:z.used])
	}
	z.used = x.used
	z.sign = x.sign
	return nil
}

// Exch swaps the contents of z and x.
func (z *Int) Exch(x *Int) {
	*z, *x = *x, *z
}

// Set sets z to the single digit d, masked to DigitBit bits.
func (z *Int) Set(d Digit) {
	if len(z.dp) == 0 {
		z.dp = make([]Digit, Prec)
	}
	z.Zero()
	z.dp[0] = d & Mask
	if z.dp[0] != 0 {
		z.used = 1
	}
}

// Used reports the number of significant digits.
func (z *Int) Used() int { return z.used }

// Alloc reports the number of digits of storage.
func (z *Int) Alloc() int { return len(z.dp) }

// Sign reports the sign flag of z.
func (z *Int) Sign() Sign { return z.sign }

func (z *Int) IsZero() bool { return z.used == 0 }
func (z *Int) IsNeg() bool  { return z.sign == NEG }
func (z *Int) IsEven() bool { return z.used == 0 || z.dp[0]&1 == 0 }
func (z *Int) IsOdd() bool  { return !z.IsEven() }

// Digits returns a copy of the significant digits, least significant first.
func (z *Int) Digits() []Digit {
	out := make([]Digit, z.used)
	copy(out, z.dp[:z.used])
	return out
}

// CountBits returns the number of significant bits of |z|.
func (z *Int) CountBits() int {
	if z.used == 0 {
		return 0
	}
	return (z.used-1)*DigitBit + bits.Len32(uint32(z.dp[z.used-1]))
}

// clamp drops leading zero digits and normalizes the sign of zero.
func (z *Int) clamp() {
	for z.used > 0 && z.dp[z.used-1] == 0 {
		z.used--
	}
	if z.used == 0 {
		z.sign = ZPOS
	}
}

// setUsed makes n the used count, zeroing any previously used digits above it.
func (z *Int) setUsed(n int) {
	if z.used > n {
		clear(z.dp[n:z.used])
	}
	z.used = n
}

// valid reports whether z satisfies the canonical-form invariants.
func (z *Int) valid() bool {
	if z.used < 0 || z.used > len(z.dp) {
		return false
	}
	if z.used > 0 && z.dp[z.used-1] == 0 {
		return false
	}
	if z.used == 0 && z.sign != ZPOS {
		return false
	}
	for _, d := range z.dp[z.used:] {
		if d != 0 {
			return false
		}
	}
	for _, d := range z.dp[:z.used] {
		if d > Mask {
			return false
		}
	}
	return true
}
