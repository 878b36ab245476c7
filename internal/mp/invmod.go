package mp

// InvMod sets z to the inverse of a modulo b, in [0, b).
//
// b must exceed 1 and a must be coprime with b, else the call fails with
// ErrVal and z is left alone.
func (z *Int) InvMod(a, b *Int) error {
	if b.sign == NEG || b.CmpD(1) != GT {
		return newError(ErrVal, "invmod")
	}

	// Extended Euclid on (a mod b, b), tracking only the coefficient of a.
	var r0, r1, s0, s1, q, t Int
	if err := r0.Mod(a, b); err != nil {
		return relabel(err, "invmod")
	}
	if r0.used == 0 {
		return newError(ErrVal, "invmod")
	}
	if err := r1.Copy(b); err != nil {
		return relabel(err, "invmod")
	}
	s0.Set(1)
	for r1.used != 0 {
		if err := Div(&q, &t, &r0, &r1); err != nil {
			return relabel(err, "invmod")
		}
		r0.Exch(&r1)
		r1.Exch(&t)

		if err := t.Mul(&q, &s1); err != nil {
			return relabel(err, "invmod")
		}
		if err := t.Sub(&s0, &t); err != nil {
			return relabel(err, "invmod")
		}
		s0.Exch(&s1)
		s1.Exch(&t)
	}
	if r0.CmpD(1) != EQ {
		return newError(ErrVal, "invmod")
	}
	return relabel(z.Mod(&s0, b), "invmod")
}

// GCD sets z to the greatest common divisor of |a| and |b|.
// GCD(0, 0) is 0.
func (z *Int) GCD(a, b *Int) error {
	var u, v, t Int
	if err := u.Abs(a); err != nil {
		return relabel(err, "gcd")
	}
	if err := v.Abs(b); err != nil {
		return relabel(err, "gcd")
	}
	for v.used != 0 {
		if err := Div(nil, &t, &u, &v); err != nil {
			return relabel(err, "gcd")
		}
		u.Exch(&v)
		v.Exch(&t)
	}
	z.Exch(&u)
	return nil
}

// LCM sets z to the least common multiple of |a| and |b|, or 0 when either
// is zero.
func (z *Int) LCM(a, b *Int) error {
	if a.used == 0 || b.used == 0 {
		z.Zero()
		return nil
	}
	var g, t Int
	if err := g.GCD(a, b); err != nil {
		return relabel(err, "lcm")
	}
	if err := Div(&t, nil, a, &g); err != nil {
		return relabel(err, "lcm")
	}
	if err := t.Mul(&t, b); err != nil {
		return relabel(err, "lcm")
	}
	t.sign = ZPOS
	z.Exch(&t)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Modular helpers
// ─────────────────────────────────────────────────────────────────────────────

// AddMod sets z = (a + b) mod m.
func (z *Int) AddMod(a, b, m *Int) error {
	var t Int
	if err := t.Add(a, b); err != nil {
		return relabel(err, "addmod")
	}
	return relabel(z.Mod(&t, m), "addmod")
}

// SubMod sets z = (a - b) mod m.
func (z *Int) SubMod(a, b, m *Int) error {
	var t Int
	if err := t.Sub(a, b); err != nil {
		return relabel(err, "submod")
	}
	return relabel(z.Mod(&t, m), "submod")
}

// MulMod sets z = (a * b) mod m.
func (z *Int) MulMod(a, b, m *Int) error {
	var t Int
	if err := t.Mul(a, b); err != nil {
		return relabel(err, "mulmod")
	}
	return relabel(z.Mod(&t, m), "mulmod")
}

// SqrMod sets z = a^2 mod m.
func (z *Int) SqrMod(a, m *Int) error {
	var t Int
	if err := t.Sqr(a); err != nil {
		return relabel(err, "sqrmod")
	}
	return relabel(z.Mod(&t, m), "sqrmod")
}

// ExptD sets z = a^e.
func (z *Int) ExptD(a *Int, e Digit) error {
	var res, g Int
	res.Set(1)
	if err := g.Copy(a); err != nil {
		return relabel(err, "expt_d")
	}
	for e > 0 {
		if e&1 == 1 {
			if err := res.Mul(&res, &g); err != nil {
				return relabel(err, "expt_d")
			}
		}
		e >>= 1
		if e > 0 {
			if err := g.Sqr(&g); err != nil {
				return relabel(err, "expt_d")
			}
		}
	}
	z.Exch(&res)
	return nil
}
