package mp

// Sqrt sets z = floor(sqrt(a)). a must not be negative.
func (z *Int) Sqrt(a *Int) error {
	if a.sign == NEG {
		return newError(ErrVal, "sqrt")
	}
	return relabel(nthRoot(z, a, 2), "sqrt")
}

// NRoot sets z to the b-th root of a truncated toward zero, so the result
// carries the sign of a. b must be positive, and odd when a is negative.
func (z *Int) NRoot(a *Int, b Digit) error {
	if b == 0 || (b&1 == 0 && a.sign == NEG) {
		return newError(ErrVal, "n_root")
	}
	sa := a.sign
	var mag Int
	if err := mag.Abs(a); err != nil {
		return relabel(err, "n_root")
	}
	if err := nthRoot(&mag, &mag, b); err != nil {
		return relabel(err, "n_root")
	}
	z.Exch(&mag)
	if z.used != 0 {
		z.sign = sa
	}
	return nil
}

// nthRoot sets z = floor(a^(1/b)) for a >= 0 by Newton's iteration from
// above: x' = ((b-1)x + a/x^(b-1)) / b decreases strictly until it reaches
// the root.
func nthRoot(z, a *Int, b Digit) error {
	bits := a.CountBits()
	switch {
	case bits == 0:
		z.Zero()
		return nil
	case b == 1:
		return z.Copy(a)
	case Digit(bits) <= b:
		// 1 <= a < 2^bits <= 2^b
		z.Set(1)
		return nil
	}

	var x, y, t Int
	// 2^ceil(bits/b) > a^(1/b)
	if err := x.TwoExpt((bits + int(b) - 1) / int(b)); err != nil {
		return err
	}
	for {
		if err := t.ExptD(&x, b-1); err != nil {
			return err
		}
		if err := Div(&t, nil, a, &t); err != nil {
			return err
		}
		if err := y.MulD(&x, b-1); err != nil {
			return err
		}
		if err := y.Add(&y, &t); err != nil {
			return err
		}
		if _, err := DivD(&y, &y, b); err != nil {
			return err
		}
		if y.Cmp(&x) != LT {
			break
		}
		x.Exch(&y)
	}
	z.Exch(&x)
	return nil
}
