//go:build gmp

package orchestration

import (
	"context"
	"math/big"

	"github.com/ncw/gmp"

	"github.com/agbru/mpcalc/internal/mp"
)

func init() {
	optionalStrategies = append(optionalStrategies, func() Strategy { return gmpStrategy{} })
}

// gmpStrategy exponentiates with libgmp through cgo.
type gmpStrategy struct{}

func (gmpStrategy) Name() string { return "gmp" }

func (gmpStrategy) ExptMod(ctx context.Context, g, x, p *mp.Int) (*mp.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Sign() == mp.NEG || p.IsZero() {
		return nil, mp.ErrValue
	}
	base := g
	exp := x
	if x.IsNeg() {
		inv := new(big.Int).ModInverse(ToBig(g), ToBig(p))
		if inv == nil {
			return nil, mp.ErrValue
		}
		var err error
		if base, err = FromBig(inv); err != nil {
			return nil, err
		}
		exp = mp.New()
		if err := exp.Abs(x); err != nil {
			return nil, err
		}
	}
	z := new(gmp.Int).Exp(toGMP(base), toGMP(exp), toGMP(p))
	if z.Sign() < 0 {
		z.Add(z, toGMP(p))
	}
	return fromGMP(z)
}

func toGMP(x *mp.Int) *gmp.Int {
	z := new(gmp.Int).SetBytes(x.ToUnsignedBin())
	if x.IsNeg() {
		z.Neg(z)
	}
	return z
}

func fromGMP(z *gmp.Int) (*mp.Int, error) {
	r := mp.New()
	if err := r.ReadUnsignedBin(z.Bytes()); err != nil {
		return nil, err
	}
	if z.Sign() < 0 {
		if err := r.Neg(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}
