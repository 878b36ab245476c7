package mp

// LshD shifts z left by n whole digits (multiplies by 2^(n*DigitBit)).
func (z *Int) LshD(n int) error {
	if n <= 0 || z.used == 0 {
		return nil
	}
	if err := z.Grow(z.used + n); err != nil {
		return relabel(err, "lshd")
	}
	copy(z.dp[n:z.used+n], z.dp[:z.used])
	clear(z.dp[:n])
	z.used += n
	return nil
}

// RshD shifts z right by n whole digits, discarding the low digits.
func (z *Int) RshD(n int) {
	if n <= 0 {
		return
	}
	if z.used <= n {
		z.Zero()
		return
	}
	copy(z.dp, z.dp[n:z.used])
	clear(z.dp[z.used-n : z.used])
	z.used -= n
}

// Mul2d sets z = x * 2^b.
func (z *Int) Mul2d(x *Int, b int) error {
	if b < 0 {
		return newError(ErrVal, "mul_2d")
	}
	if err := z.Copy(x); err != nil {
		return relabel(err, "mul_2d")
	}
	if err := z.LshD(b / DigitBit); err != nil {
		return relabel(err, "mul_2d")
	}
	d := uint(b % DigitBit)
	if d == 0 || z.used == 0 {
		return nil
	}
	if err := z.Grow(z.used + 1); err != nil {
		return relabel(err, "mul_2d")
	}
	mask := Digit(1)<<d - 1
	shift := DigitBit - d
	var r Digit
	for i := 0; i < z.used; i++ {
		rr := (z.dp[i] >> shift) & mask
		z.dp[i] = ((z.dp[i] << d) | r) & Mask
		r = rr
	}
	if r != 0 {
		z.dp[z.used] = r
		z.used++
	}
	return nil
}

// Div2d sets q = x / 2^b (truncating toward zero) and, when r is non-nil,
// r = x mod 2^b with the sign of x. Either destination may be nil.
func Div2d(q, r, x *Int, b int) error {
	if b < 0 {
		return newError(ErrVal, "div_2d")
	}
	var rem Int
	if r != nil {
		if err := rem.Mod2d(x, b); err != nil {
			return relabel(err, "div_2d")
		}
	}
	if q != nil {
		if err := q.Copy(x); err != nil {
			return relabel(err, "div_2d")
		}
		q.RshD(b / DigitBit)
		if d := uint(b % DigitBit); d != 0 {
			mask := Digit(1)<<d - 1
			shift := DigitBit - d
			var carry Digit
			for i := q.used - 1; i >= 0; i-- {
				rr := q.dp[i] & mask
				q.dp[i] = (q.dp[i] >> d) | (carry << shift)
				carry = rr
			}
		}
		q.clamp()
	}
	if r != nil {
		r.Exch(&rem)
	}
	return nil
}

// Mod2d sets z = x mod 2^b keeping the sign of x.
func (z *Int) Mod2d(x *Int, b int) error {
	if b <= 0 {
		z.Zero()
		return nil
	}
	if err := z.Copy(x); err != nil {
		return relabel(err, "mod_2d")
	}
	if b >= z.used*DigitBit {
		return nil
	}
	keep := b / DigitBit
	if b%DigitBit != 0 {
		keep++
	}
	clear(z.dp[keep:z.used])
	z.dp[b/DigitBit] &= Digit(1)<<uint(b%DigitBit) - 1
	z.clamp()
	return nil
}

// Mul2 sets z = 2x.
func (z *Int) Mul2(x *Int) error { return z.Mul2d(x, 1) }

// Div2 sets z = x / 2, truncating toward zero.
func (z *Int) Div2(x *Int) error { return Div2d(z, nil, x, 1) }

// GetBit reports whether bit b of |x| is set.
func (x *Int) GetBit(b int) (bool, error) {
	if b < 0 {
		return false, newError(ErrVal, "get_bit")
	}
	i := b / DigitBit
	if i >= x.used {
		return false, nil
	}
	return x.dp[i]>>uint(b%DigitBit)&1 == 1, nil
}

// TwoExpt sets z = 2^b.
func (z *Int) TwoExpt(b int) error {
	if b < 0 {
		return newError(ErrVal, "2expt")
	}
	n := b/DigitBit + 1
	if err := z.Grow(n); err != nil {
		return relabel(err, "2expt")
	}
	z.Zero()
	z.used = n
	z.dp[n-1] = Digit(1) << uint(b%DigitBit)
	return nil
}
