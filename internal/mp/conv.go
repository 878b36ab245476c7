package mp

import "fortio.org/safecast"

// ─────────────────────────────────────────────────────────────────────────────
// Setters
// ─────────────────────────────────────────────────────────────────────────────

// SetU64 sets z = v.
func (z *Int) SetU64(v uint64) {
	if len(z.dp) < 3 {
		// 64 bits never need more than three digits.
		_ = z.Grow(3)
	}
	z.Zero()
	i := 0
	for v != 0 {
		z.dp[i] = Digit(v) & Mask
		v >>= DigitBit
		i++
	}
	z.used = i
}

// SetI64 sets z = v.
func (z *Int) SetI64(v int64) {
	mag := uint64(v)
	if v < 0 {
		mag = -mag
	}
	z.SetU64(mag)
	if v < 0 {
		z.sign = NEG
	}
}

// SetU32 sets z = v.
func (z *Int) SetU32(v uint32) { z.SetU64(uint64(v)) }

// SetI32 sets z = v.
func (z *Int) SetI32(v int32) { z.SetI64(int64(v)) }

// ─────────────────────────────────────────────────────────────────────────────
// Wrapping getters
// ─────────────────────────────────────────────────────────────────────────────

// GetMag64 returns the least significant 64 bits of |x|.
func (x *Int) GetMag64() uint64 {
	var r uint64
	for i := min(x.used, (64+DigitBit-1)/DigitBit) - 1; i >= 0; i-- {
		r = r<<DigitBit | uint64(x.dp[i])
	}
	return r
}

// GetMag32 returns the least significant 32 bits of |x|.
func (x *Int) GetMag32() uint32 {
	//nolint:gosec // G115: truncation to the low 32 bits is the contract.
	return uint32(x.GetMag64())
}

// GetI64 returns x reduced modulo 2^64 as a two's-complement int64.
func (x *Int) GetI64() int64 {
	m := x.GetMag64()
	if x.sign == NEG {
		m = -m
	}
	//nolint:gosec // G115: wrapping is the contract.
	return int64(m)
}

// GetU64 returns the two's-complement bit pattern of GetI64.
func (x *Int) GetU64() uint64 {
	//nolint:gosec // G115: reinterpretation of the same 64 bits.
	return uint64(x.GetI64())
}

// GetI32 returns the low 32 bits of the magnitude, negated when x is
// negative, as a two's-complement int32.
func (x *Int) GetI32() int32 {
	m := x.GetMag32()
	if x.sign == NEG {
		m = -m
	}
	//nolint:gosec // G115: wrapping is the contract.
	return int32(m)
}

// GetU32 returns the two's-complement bit pattern of GetI32.
func (x *Int) GetU32() uint32 {
	//nolint:gosec // G115: reinterpretation of the same 32 bits.
	return uint32(x.GetI32())
}

// ─────────────────────────────────────────────────────────────────────────────
// Checked getters
// ─────────────────────────────────────────────────────────────────────────────

// Uint64 returns x as a uint64, failing with ErrOvf when x is negative or
// wider than 64 bits.
func (x *Int) Uint64() (uint64, error) {
	if x.sign == NEG || x.CountBits() > 64 {
		return 0, newError(ErrOvf, "get_u64")
	}
	return x.GetMag64(), nil
}

// Int64 returns x as an int64, failing with ErrOvf when it does not fit.
func (x *Int) Int64() (int64, error) {
	if x.CountBits() > 64 {
		return 0, newError(ErrOvf, "get_i64")
	}
	m := x.GetMag64()
	if x.sign == NEG {
		if m == 1<<63 {
			return -1 << 63, nil
		}
		v, err := safecast.Conv[int64](m)
		if err != nil {
			return 0, newError(ErrOvf, "get_i64")
		}
		return -v, nil
	}
	v, err := safecast.Conv[int64](m)
	if err != nil {
		return 0, newError(ErrOvf, "get_i64")
	}
	return v, nil
}

// Uint32 returns x as a uint32, failing with ErrOvf when it does not fit.
func (x *Int) Uint32() (uint32, error) {
	u, err := x.Uint64()
	if err != nil {
		return 0, newError(ErrOvf, "get_u32")
	}
	v, err := safecast.Conv[uint32](u)
	if err != nil {
		return 0, newError(ErrOvf, "get_u32")
	}
	return v, nil
}

// Int32 returns x as an int32, failing with ErrOvf when it does not fit.
func (x *Int) Int32() (int32, error) {
	i, err := x.Int64()
	if err != nil {
		return 0, newError(ErrOvf, "get_i32")
	}
	v, err := safecast.Conv[int32](i)
	if err != nil {
		return 0, newError(ErrOvf, "get_i32")
	}
	return v, nil
}

// Int converts x to a native int, failing with ErrOvf when it does not fit.
func (x *Int) Int() (int, error) {
	i, err := x.Int64()
	if err != nil {
		return 0, newError(ErrOvf, "get_int")
	}
	v, err := safecast.Conv[int](i)
	if err != nil {
		return 0, newError(ErrOvf, "get_int")
	}
	return v, nil
}
