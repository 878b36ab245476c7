package mp

// ─────────────────────────────────────────────────────────────────────────────
// Barrett reduction
// ─────────────────────────────────────────────────────────────────────────────

// ReduceSetup sets mu = floor(B^(2k) / m) where k is the digit count of m
// and B the digit radix.
func (mu *Int) ReduceSetup(m *Int) error {
	if m.used == 0 {
		return newError(ErrVal, "reduce_setup")
	}
	if err := mu.TwoExpt(m.used * 2 * DigitBit); err != nil {
		return relabel(err, "reduce_setup")
	}
	return relabel(Div(mu, nil, mu, m), "reduce_setup")
}

// Reduce sets x = x mod m using the Barrett constant mu from ReduceSetup.
// x must satisfy 0 <= x < m^2 (HAC 14.42).
func (x *Int) Reduce(m, mu *Int) error {
	if err := barrettReduce(x, m, mu); err != nil {
		return relabel(err, "reduce")
	}
	return nil
}

func barrettReduce(x, m, mu *Int) error {
	um := m.used

	var q Int
	if err := q.InitCopy(x); err != nil {
		return err
	}
	// q1 = x / B^(k-1), q3 = q1*mu / B^(k+1)
	q.RshD(um - 1)
	if err := q.Mul(&q, mu); err != nil {
		return err
	}
	q.RshD(um + 1)

	// x = x mod B^(k+1) - (q3*m mod B^(k+1))
	if err := x.Mod2d(x, DigitBit*(um+1)); err != nil {
		return err
	}
	if err := mulDigs(&q, &q, m, um+1); err != nil {
		return err
	}
	if err := x.Sub(x, &q); err != nil {
		return err
	}
	if x.sign == NEG {
		q.Set(1)
		if err := q.LshD(um + 1); err != nil {
			return err
		}
		if err := x.Add(x, &q); err != nil {
			return err
		}
	}
	for x.Cmp(m) != LT {
		if err := subMag(x, x, m); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Montgomery reduction
// ─────────────────────────────────────────────────────────────────────────────

// MontgomerySetup returns rho = -1/n mod B for odd n.
func MontgomerySetup(n *Int) (Digit, error) {
	if n.used == 0 || n.dp[0]&1 == 0 {
		return 0, newError(ErrVal, "montgomery_setup")
	}
	b := n.dp[0]
	x := ((b+2)&4)<<1 + b // x*b == 1 mod 2^4
	x *= 2 - b*x          // mod 2^8
	x *= 2 - b*x          // mod 2^16
	x *= 2 - b*x          // mod 2^32
	return Digit((Word(1)<<DigitBit - Word(x)) & Word(Mask)), nil
}

// MontgomeryNormalization sets z = B^k mod n, the Montgomery form of 1,
// where k is the digit count of n.
func (z *Int) MontgomeryNormalization(n *Int) error {
	if err := z.TwoExpt(n.used * DigitBit); err != nil {
		return relabel(err, "montgomery_calc_normalization")
	}
	return relabel(z.Mod(z, n), "montgomery_calc_normalization")
}

// MontgomeryReduce sets x = x * B^-k mod n (HAC 14.32). x must satisfy
// 0 <= x < n*B^k.
func (x *Int) MontgomeryReduce(n *Int, rho Digit) error {
	if err := montgomeryReduce(x, n, rho); err != nil {
		return relabel(err, "montgomery_reduce")
	}
	return nil
}

func montgomeryReduce(x, n *Int, rho Digit) error {
	digs := n.used*2 + 1
	if err := x.Grow(digs + 1); err != nil {
		return err
	}
	x.used = max(x.used, digs)

	for ix := 0; ix < n.used; ix++ {
		mu := Digit((Word(x.dp[ix]) * Word(rho)) & Word(Mask))
		var u Word
		for iy := 0; iy < n.used; iy++ {
			r := Word(mu)*Word(n.dp[iy]) + u + Word(x.dp[ix+iy])
			u = r >> DigitBit
			x.dp[ix+iy] = Digit(r & Word(Mask))
		}
		for k := ix + n.used; u != 0; k++ {
			if k >= x.used {
				x.used = k + 1
			}
			t := Word(x.dp[k]) + u
			x.dp[k] = Digit(t & Word(Mask))
			u = t >> DigitBit
		}
	}

	x.clamp()
	x.RshD(n.used)
	if x.CmpMag(n) != LT {
		return subMag(x, x, n)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Diminished radix reduction
// ─────────────────────────────────────────────────────────────────────────────

// DRIsModulus reports whether n = B^k - d for a nonzero digit d and k >= 2,
// that is every digit above the lowest is Mask and the lowest is nonzero.
func DRIsModulus(n *Int) bool {
	if n.used < 2 || n.sign == NEG || n.dp[0] == 0 {
		return false
	}
	for _, d := range n.dp[1:n.used] {
		if d != Mask {
			return false
		}
	}
	return true
}

// DRSetup returns d = B - n[0], the constant DRReduce folds the upper half
// of its input with.
func DRSetup(n *Int) Digit {
	if n.used == 0 {
		return 0
	}
	return Digit(Word(1)<<DigitBit - Word(n.dp[0]))
}

// DRReduce sets x = x mod n for a modulus accepted by DRIsModulus, with
// d = DRSetup(n). x must be non-negative.
func (x *Int) DRReduce(n *Int, d Digit) error {
	if x.sign == NEG || !DRIsModulus(n) {
		return newError(ErrVal, "dr_reduce")
	}
	return relabel(drReduce(x, n, d), "dr_reduce")
}

// drReduce folds x = hi*B^k + lo into lo + hi*d until it fits in k digits,
// then subtracts n at most once.
func drReduce(x, n *Int, d Digit) error {
	m := n.used
	for x.used > m {
		if err := x.Grow(2*m + 1); err != nil {
			return err
		}
		if x.used > 2*m {
			// Only the lowest 2k digits take part in a fold; fold the
			// excess in first.
			var hi Int
			if err := Div2d(&hi, x, x, DigitBit*2*m); err != nil {
				return err
			}
			if err := hi.MulD(&hi, d); err != nil {
				return err
			}
			if err := hi.LshD(m); err != nil {
				return err
			}
			if err := addMag(x, x, &hi); err != nil {
				return err
			}
			continue
		}
		oldUsed := x.used
		var mu Word
		for i := 0; i < m; i++ {
			r := Word(x.dp[i+m])*Word(d) + Word(x.dp[i]) + mu
			x.dp[i] = Digit(r & Word(Mask))
			mu = r >> DigitBit
		}
		x.dp[m] = Digit(mu)
		clear(x.dp[m+1 : oldUsed])
		x.used = m + 1
		x.clamp()
	}
	for x.CmpMag(n) != LT {
		if err := subMag(x, x, n); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reduction modulo 2^p - d
// ─────────────────────────────────────────────────────────────────────────────

// ReduceIs2k reports whether n = 2^p - d for a single digit d, p being the
// bit length of n. Positive single-digit moduli always qualify; longer ones
// need every bit from DigitBit up to the top and a nonzero lowest digit.
func ReduceIs2k(n *Int) bool {
	switch {
	case n.used == 0 || n.sign == NEG:
		return false
	case n.used == 1:
		return true
	case n.dp[0] == 0:
		return false
	}
	bits := n.CountBits()
	for b := DigitBit; b < bits; b++ {
		if n.dp[b/DigitBit]>>uint(b%DigitBit)&1 == 0 {
			return false
		}
	}
	return true
}

// Reduce2kSetup returns d = 2^p - n where p is the bit length of n.
func Reduce2kSetup(n *Int) (Digit, error) {
	if !ReduceIs2k(n) {
		return 0, newError(ErrVal, "reduce_2k_setup")
	}
	var t Int
	if err := t.TwoExpt(n.CountBits()); err != nil {
		return 0, relabel(err, "reduce_2k_setup")
	}
	if err := subMag(&t, &t, n); err != nil {
		return 0, relabel(err, "reduce_2k_setup")
	}
	return t.dp[0], nil
}

// Reduce2k sets x = x mod n for a modulus accepted by ReduceIs2k, with
// d = Reduce2kSetup(n). x must be non-negative.
func (x *Int) Reduce2k(n *Int, d Digit) error {
	if x.sign == NEG || !ReduceIs2k(n) {
		return newError(ErrVal, "reduce_2k")
	}
	return relabel(reduce2k(x, n, d), "reduce_2k")
}

// reduce2k folds x = q*2^p + r into r + q*d until it drops below n.
func reduce2k(x, n *Int, d Digit) error {
	p := n.CountBits()
	var q Int
	for {
		if err := Div2d(&q, x, x, p); err != nil {
			return err
		}
		if d != 1 {
			if err := q.MulD(&q, d); err != nil {
				return err
			}
		}
		if err := addMag(x, x, &q); err != nil {
			return err
		}
		if x.CmpMag(n) == LT {
			return nil
		}
		if err := subMag(x, x, n); err != nil {
			return err
		}
	}
}
