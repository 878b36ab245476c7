package mp

const (
	// KaratsubaMulCutoff is the operand size, in digits, from which Mul
	// switches to Karatsuba.
	KaratsubaMulCutoff = 80

	// combaMaxColumns bounds the column buffer of the comba multiplier.
	combaMaxColumns = 512
	// combaMaxInner is the largest inner-product length whose sum of
	// DigitBit x DigitBit products cannot overflow a Word.
	combaMaxInner = 1 << (64 - 2*DigitBit)
)

// Mul sets z = x * y.
func (z *Int) Mul(x, y *Int) error {
	neg := x.sign != y.sign
	if x.used == 0 || y.used == 0 {
		z.Zero()
		return nil
	}
	var err error
	if min(x.used, y.used) >= KaratsubaMulCutoff {
		err = karatsubaMul(z, x, y)
	} else {
		err = mulDigs(z, x, y, x.used+y.used+1)
	}
	if err != nil {
		return relabel(err, "mul")
	}
	if neg && z.used > 0 {
		z.sign = NEG
	} else {
		z.sign = ZPOS
	}
	return nil
}

// Sqr sets z = x * x.
func (z *Int) Sqr(x *Int) error {
	return relabel(z.Mul(x, x), "sqr")
}

// mulDigs sets |z| to the low digs digits of |x| * |y|.
func mulDigs(z, x, y *Int, digs int) error {
	if digs < combaMaxColumns && min(x.used, y.used) < combaMaxInner {
		return combaMulDigs(z, x, y, digs)
	}
	var t Int
	if err := t.Grow(digs); err != nil {
		return err
	}
	t.used = digs
	for ix := 0; ix < x.used; ix++ {
		pb := min(y.used, digs-ix)
		if pb <= 0 {
			break
		}
		var u Word
		tx := Word(x.dp[ix])
		iy := 0
		for ; iy < pb; iy++ {
			r := Word(t.dp[ix+iy]) + tx*Word(y.dp[iy]) + u
			t.dp[ix+iy] = Digit(r & Word(Mask))
			u = r >> DigitBit
		}
		if ix+iy < digs {
			t.dp[ix+iy] = Digit(u)
		}
	}
	t.clamp()
	z.Exch(&t)
	return nil
}

// combaMulDigs computes the product column by column into a pooled
// buffer before writing z, so z may alias x or y.
func combaMulDigs(z, x, y *Int, digs int) error {
	pa := min(digs, x.used+y.used)
	w := acquireDigits(pa)
	defer releaseDigits(w)

	var acc Word
	for ix := 0; ix < pa; ix++ {
		ty := min(y.used-1, ix)
		tx := ix - ty
		n := min(x.used-tx, ty+1)
		for k := 0; k < n; k++ {
			acc += Word(x.dp[tx+k]) * Word(y.dp[ty-k])
		}
		w[ix] = Digit(acc & Word(Mask))
		acc >>= DigitBit
	}

	if err := z.Grow(pa); err != nil {
		return err
	}
	copy(z.dp, w)
	z.setUsed(pa)
	z.clamp()
	return nil
}

// split copies the low n digits of x into lo and the rest into hi.
func split(x *Int, n int, lo, hi *Int) error {
	if err := lo.Grow(n); err != nil {
		return err
	}
	if err := hi.Grow(x.used - n); err != nil {
		return err
	}
	copy(lo.dp, x.dp[:n])
	lo.used = n
	lo.clamp()
	copy(hi.dp, x.dp[n:x.used])
	hi.used = x.used - n
	hi.clamp()
	return nil
}

// karatsubaMul sets |z| = |x| * |y| using
//
//	x*y = x1y1*B^2 + ((x1+x0)(y1+y0) - x0y0 - x1y1)*B + x0y0
func karatsubaMul(z, x, y *Int) error {
	b := min(x.used, y.used) >> 1

	var x0, x1, y0, y1, t1, x0y0, x1y1 Int
	if err := split(x, b, &x0, &x1); err != nil {
		return err
	}
	if err := split(y, b, &y0, &y1); err != nil {
		return err
	}

	if err := x0y0.Mul(&x0, &y0); err != nil {
		return err
	}
	if err := x1y1.Mul(&x1, &y1); err != nil {
		return err
	}

	if err := addMag(&t1, &x1, &x0); err != nil {
		return err
	}
	if err := addMag(&x0, &y1, &y0); err != nil {
		return err
	}
	if err := t1.Mul(&t1, &x0); err != nil {
		return err
	}

	if err := addMag(&x0, &x0y0, &x1y1); err != nil {
		return err
	}
	if err := subMag(&t1, &t1, &x0); err != nil {
		return err
	}

	if err := t1.LshD(b); err != nil {
		return err
	}
	if err := x1y1.LshD(b * 2); err != nil {
		return err
	}

	if err := addMag(&t1, &x0y0, &t1); err != nil {
		return err
	}
	return addMag(z, &t1, &x1y1)
}
