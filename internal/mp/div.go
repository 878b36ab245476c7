package mp

// Div sets q = x / y truncated toward zero and r = x - q*y, which carries the
// sign of x. Either destination may be nil. Division by zero fails with ErrVal.
func Div(q, r, x, y *Int) error {
	if y.used == 0 {
		return newError(ErrVal, "div")
	}
	if x.CmpMag(y) == LT {
		if r != nil {
			if err := r.Copy(x); err != nil {
				return relabel(err, "div")
			}
		}
		if q != nil && q != r {
			q.Zero()
		}
		return nil
	}
	return relabel(divSchool(q, r, x, y), "div")
}

// divSchool is schoolbook long division (HAC 14.20) with Knuth's
// normalization so that quotient digit estimates are off by at most two.
func divSchool(c, d, a, b *Int) error {
	var q, x, y, t1, t2 Int
	if err := q.InitSize(a.used + 2); err != nil {
		return err
	}
	q.used = a.used + 2
	if err := t1.InitSize(3); err != nil {
		return err
	}
	if err := t2.InitSize(3); err != nil {
		return err
	}
	if err := x.InitCopy(a); err != nil {
		return err
	}
	if err := y.InitCopy(b); err != nil {
		return err
	}

	neg := a.sign != b.sign
	signA := a.sign
	x.sign, y.sign = ZPOS, ZPOS

	// Normalize so the top digit of y is at least half the radix.
	norm := y.CountBits() % DigitBit
	if norm < DigitBit-1 {
		norm = DigitBit - 1 - norm
		if err := x.Mul2d(&x, norm); err != nil {
			return err
		}
		if err := y.Mul2d(&y, norm); err != nil {
			return err
		}
	} else {
		norm = 0
	}

	n := x.used - 1
	t := y.used - 1

	if err := y.LshD(n - t); err != nil {
		return err
	}
	for x.Cmp(&y) != LT {
		q.dp[n-t]++
		if err := x.Sub(&x, &y); err != nil {
			return err
		}
	}
	y.RshD(n - t)

	for i := n; i >= t+1; i-- {
		if i > x.used {
			continue
		}
		k := i - t - 1

		// Estimate the quotient digit from the top two digits of x.
		if x.dp[i] == y.dp[t] {
			q.dp[k] = Mask
		} else {
			tmp := Word(x.dp[i])<<DigitBit | Word(x.dp[i-1])
			tmp /= Word(y.dp[t])
			if tmp > Word(Mask) {
				tmp = Word(Mask)
			}
			q.dp[k] = Digit(tmp)
		}

		// Lower the estimate while it overshoots the top three digits.
		q.dp[k] = (q.dp[k] + 1) & Mask
		for {
			q.dp[k] = (q.dp[k] - 1) & Mask

			t1.Zero()
			if t >= 1 {
				t1.dp[0] = y.dp[t-1]
			}
			t1.dp[1] = y.dp[t]
			t1.used = 2
			t1.clamp()
			if err := t1.MulD(&t1, q.dp[k]); err != nil {
				return err
			}

			t2.Zero()
			if i >= 2 {
				t2.dp[0] = x.dp[i-2]
			}
			t2.dp[1] = x.dp[i-1]
			t2.dp[2] = x.dp[i]
			t2.used = 3
			t2.clamp()

			if t1.CmpMag(&t2) != GT {
				break
			}
		}

		// x -= q[k] * y * B^k, adding y back once if that went negative.
		if err := t1.MulD(&y, q.dp[k]); err != nil {
			return err
		}
		if err := t1.LshD(k); err != nil {
			return err
		}
		if err := x.Sub(&x, &t1); err != nil {
			return err
		}
		if x.sign == NEG {
			if err := t1.Copy(&y); err != nil {
				return err
			}
			if err := t1.LshD(k); err != nil {
				return err
			}
			if err := x.Add(&x, &t1); err != nil {
				return err
			}
			q.dp[k] = (q.dp[k] - 1) & Mask
		}
	}

	if x.used != 0 {
		x.sign = signA
	}

	if c != nil {
		q.clamp()
		if neg && q.used > 0 {
			q.sign = NEG
		}
		c.Exch(&q)
	}
	if d != nil {
		if err := Div2d(&x, nil, &x, norm); err != nil {
			return err
		}
		d.Exch(&x)
	}
	return nil
}

// Mod sets z = x mod y. The result carries the sign of y, so it lies in
// [0, y) for positive y.
func (z *Int) Mod(x, y *Int) error {
	var t Int
	if err := Div(nil, &t, x, y); err != nil {
		return relabel(err, "mod")
	}
	if t.used != 0 && t.sign != y.sign {
		return relabel(z.Add(y, &t), "mod")
	}
	z.Exch(&t)
	return nil
}

// DivD sets q = x / d truncated toward zero (q may be nil) and returns the
// magnitude of the remainder.
func DivD(q, x *Int, d Digit) (Digit, error) {
	if d == 0 {
		return 0, newError(ErrVal, "div_d")
	}
	if d > DigitMax {
		var r Int
		if err := Div(q, &r, x, bigDigit(d)); err != nil {
			return 0, relabel(err, "div_d")
		}
		return Digit(r.GetMag32()), nil
	}
	if d == 1 || x.used == 0 {
		if q != nil {
			if err := q.Copy(x); err != nil {
				return 0, relabel(err, "div_d")
			}
		}
		return 0, nil
	}
	if d&(d-1) == 0 {
		rem := x.dp[0] & (d - 1)
		if q != nil {
			if err := Div2d(q, nil, x, bitsTrailing(d)); err != nil {
				return 0, relabel(err, "div_d")
			}
		}
		return rem, nil
	}

	var t Int
	if err := t.InitSize(x.used); err != nil {
		return 0, relabel(err, "div_d")
	}
	t.used = x.used
	t.sign = x.sign
	var w Word
	for i := x.used - 1; i >= 0; i-- {
		w = w<<DigitBit | Word(x.dp[i])
		var v Word
		if w >= Word(d) {
			v = w / Word(d)
			w -= v * Word(d)
		}
		t.dp[i] = Digit(v)
	}
	if q != nil {
		t.clamp()
		q.Exch(&t)
	}
	return Digit(w), nil
}

// ModD returns |x| mod d.
func ModD(x *Int, d Digit) (Digit, error) {
	r, err := DivD(nil, x, d)
	return r, relabel(err, "mod_d")
}

func bitsTrailing(d Digit) int {
	n := 0
	for d&1 == 0 {
		d >>= 1
		n++
	}
	return n
}
