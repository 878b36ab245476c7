package mp

// addMag sets |z| = |x| + |y|. The sign of z is left to the caller.
func addMag(z, x, y *Int) error {
	if x.used < y.used {
		x, y = y, x
	}
	lo, hi := y.used, x.used
	if err := z.Grow(hi + 1); err != nil {
		return err
	}
	oldUsed := z.used
	var u Digit
	i := 0
	for ; i < lo; i++ {
		t := x.dp[i] + y.dp[i] + u
		u = t >> DigitBit
		z.dp[i] = t & Mask
	}
	for ; i < hi; i++ {
		t := x.dp[i] + u
		u = t >> DigitBit
		z.dp[i] = t & Mask
	}
	z.dp[i] = u
	i++
	if oldUsed > i {
		clear(z.dp[i:oldUsed])
	}
	z.used = i
	z.clamp()
	return nil
}

// subMag sets |z| = |x| - |y| and requires |x| >= |y|.
func subMag(z, x, y *Int) error {
	lo, hi := y.used, x.used
	if err := z.Grow(hi); err != nil {
		return err
	}
	oldUsed := z.used
	var u Digit
	i := 0
	for ; i < lo; i++ {
		t := x.dp[i] - y.dp[i] - u
		u = t >> 31
		z.dp[i] = t & Mask
	}
	for ; i < hi; i++ {
		t := x.dp[i] - u
		u = t >> 31
		z.dp[i] = t & Mask
	}
	if oldUsed > hi {
		clear(z.dp[hi:oldUsed])
	}
	z.used = hi
	z.clamp()
	return nil
}

// signed gives z the sign s once the magnitude kernel that produced err has
// succeeded. A failed kernel leaves z as it was, sign included.
func (z *Int) signed(s Sign, err error) error {
	if err != nil {
		return err
	}
	if z.used == 0 {
		s = ZPOS
	}
	z.sign = s
	return nil
}

// Add sets z = x + y.
func (z *Int) Add(x, y *Int) error {
	sx, sy := x.sign, y.sign
	var err error
	switch {
	case sx == sy:
		err = z.signed(sx, addMag(z, x, y))
	case x.CmpMag(y) == LT:
		err = z.signed(sy, subMag(z, y, x))
	default:
		err = z.signed(sx, subMag(z, x, y))
	}
	return relabel(err, "add")
}

// Sub sets z = x - y.
func (z *Int) Sub(x, y *Int) error {
	sx, sy := x.sign, y.sign
	var err error
	switch {
	case sx != sy:
		err = z.signed(sx, addMag(z, x, y))
	case x.CmpMag(y) != LT:
		err = z.signed(sx, subMag(z, x, y))
	default:
		err = z.signed(sx.flip(), subMag(z, y, x))
	}
	return relabel(err, "sub")
}

// Neg sets z = -x. Negating zero yields zero.
func (z *Int) Neg(x *Int) error {
	sx := x.sign
	if err := z.Copy(x); err != nil {
		return relabel(err, "neg")
	}
	return z.signed(sx.flip(), nil)
}

// Abs sets z = |x|.
func (z *Int) Abs(x *Int) error {
	if err := z.Copy(x); err != nil {
		return relabel(err, "abs")
	}
	z.sign = ZPOS
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-digit operations
// ─────────────────────────────────────────────────────────────────────────────

// addMagD sets |z| = |x| + d for d <= DigitMax.
func addMagD(z, x *Int, d Digit) error {
	n := x.used
	if err := z.Grow(n + 1); err != nil {
		return err
	}
	oldUsed := z.used
	u := d
	for i := 0; i < n; i++ {
		t := x.dp[i] + u
		u = t >> DigitBit
		z.dp[i] = t & Mask
	}
	z.dp[n] = u
	if oldUsed > n+1 {
		clear(z.dp[n+1 : oldUsed])
	}
	z.used = n + 1
	z.clamp()
	return nil
}

// subMagD sets |z| = |x| - d and requires |x| >= d.
func subMagD(z, x *Int, d Digit) error {
	n := x.used
	if err := z.Grow(n); err != nil {
		return err
	}
	oldUsed := z.used
	u := d
	for i := 0; i < n; i++ {
		t := x.dp[i] - u
		u = t >> 31
		z.dp[i] = t & Mask
	}
	if oldUsed > n {
		clear(z.dp[n:oldUsed])
	}
	z.used = n
	z.clamp()
	return nil
}

// magGE reports whether |x| >= d.
func magGE(x *Int, d Digit) bool {
	if x.used > 1 {
		return true
	}
	if x.used == 0 {
		return d == 0
	}
	return x.dp[0] >= d
}

// setDigitMinusMag sets z = s * (d - |x|) for |x| < d.
func setDigitMinusMag(z, x *Int, d Digit, s Sign) {
	var v Digit
	if x.used == 1 {
		v = x.dp[0]
	}
	z.Set(d - v)
	z.sign = s
	z.clamp()
}

// bigDigit lifts a digit wider than DigitBit into an Int.
func bigDigit(d Digit) *Int {
	var t Int
	t.SetU32(uint32(d))
	return &t
}

// AddD sets z = x + d.
//
// When x is negative and |x| >= d the result is -(|x| - d); when x is
// negative and |x| < d it is d - |x|.
func (z *Int) AddD(x *Int, d Digit) error {
	if d > DigitMax {
		return relabel(z.Add(x, bigDigit(d)), "add_d")
	}
	if x.sign == NEG {
		if magGE(x, d) {
			return relabel(z.signed(NEG, subMagD(z, x, d)), "add_d")
		}
		setDigitMinusMag(z, x, d, ZPOS)
		return nil
	}
	return relabel(z.signed(ZPOS, addMagD(z, x, d)), "add_d")
}

// SubD sets z = x - d.
func (z *Int) SubD(x *Int, d Digit) error {
	if d > DigitMax {
		return relabel(z.Sub(x, bigDigit(d)), "sub_d")
	}
	if x.sign == NEG {
		return relabel(z.signed(NEG, addMagD(z, x, d)), "sub_d")
	}
	if magGE(x, d) {
		return relabel(z.signed(ZPOS, subMagD(z, x, d)), "sub_d")
	}
	setDigitMinusMag(z, x, d, NEG)
	return nil
}

// MulD sets z = x * d.
func (z *Int) MulD(x *Int, d Digit) error {
	if d > DigitMax {
		return relabel(z.Mul(x, bigDigit(d)), "mul_d")
	}
	n, sx := x.used, x.sign
	if err := z.Grow(n + 1); err != nil {
		return relabel(err, "mul_d")
	}
	oldUsed := z.used
	var u Word
	for i := 0; i < n; i++ {
		r := Word(x.dp[i])*Word(d) + u
		z.dp[i] = Digit(r & Word(Mask))
		u = r >> DigitBit
	}
	z.dp[n] = Digit(u)
	if oldUsed > n+1 {
		clear(z.dp[n+1 : oldUsed])
	}
	z.used = n + 1
	z.sign = sx
	z.clamp()
	return nil
}
