package mp

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// bigFromWords assembles a math/big value from 32-bit words, most
// significant first.
func bigFromWords(ws []uint32, neg bool) *big.Int {
	b := new(big.Int)
	for _, w := range ws {
		b.Lsh(b, 32)
		b.Or(b, big.NewInt(int64(w)))
	}
	if neg {
		b.Neg(b)
	}
	return b
}

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return gopter.NewProperties(parameters)
}

// TestArithmetic_PropertyBased checks the kernel against math/big on random
// signed operands of up to a few thousand bits.
func TestArithmetic_PropertyBased(t *testing.T) {
	properties := newProperties()

	operands := []gopter.Gen{
		gen.SliceOf(gen.UInt32()), gen.Bool(),
		gen.SliceOf(gen.UInt32()), gen.Bool(),
	}

	properties.Property("Add matches math/big", prop.ForAll(
		func(aw []uint32, an bool, bw []uint32, bn bool) bool {
			ab, bb := bigFromWords(aw, an), bigFromWords(bw, bn)
			a, b := fromBig(t, ab), fromBig(t, bb)
			var c Int
			if err := c.Add(a, b); err != nil {
				return false
			}
			return c.valid() && toBig(t, &c).Cmp(new(big.Int).Add(ab, bb)) == 0
		}, operands...))

	properties.Property("Sub matches math/big", prop.ForAll(
		func(aw []uint32, an bool, bw []uint32, bn bool) bool {
			ab, bb := bigFromWords(aw, an), bigFromWords(bw, bn)
			a, b := fromBig(t, ab), fromBig(t, bb)
			var c Int
			if err := c.Sub(a, b); err != nil {
				return false
			}
			return c.valid() && toBig(t, &c).Cmp(new(big.Int).Sub(ab, bb)) == 0
		}, operands...))

	properties.Property("Mul matches math/big", prop.ForAll(
		func(aw []uint32, an bool, bw []uint32, bn bool) bool {
			ab, bb := bigFromWords(aw, an), bigFromWords(bw, bn)
			a, b := fromBig(t, ab), fromBig(t, bb)
			var c Int
			if err := c.Mul(a, b); err != nil {
				return false
			}
			return c.valid() && toBig(t, &c).Cmp(new(big.Int).Mul(ab, bb)) == 0
		}, operands...))

	properties.Property("Div matches math/big QuoRem", prop.ForAll(
		func(aw []uint32, an bool, bw []uint32, bn bool) bool {
			ab, bb := bigFromWords(aw, an), bigFromWords(bw, bn)
			if bb.Sign() == 0 {
				return true
			}
			a, b := fromBig(t, ab), fromBig(t, bb)
			var q, r Int
			if err := Div(&q, &r, a, b); err != nil {
				return false
			}
			wq, wr := new(big.Int).QuoRem(ab, bb, new(big.Int))
			return q.valid() && r.valid() && toBig(t, &q).Cmp(wq) == 0 && toBig(t, &r).Cmp(wr) == 0
		}, operands...))

	properties.TestingRun(t)
}

// TestMulKaratsuba_PropertyBased forces both operands past the Karatsuba
// cutoff.
func TestMulKaratsuba_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	words := (KaratsubaMulCutoff*DigitBit)/32 + 8
	properties.Property("Karatsuba Mul matches math/big", prop.ForAll(
		func(aw, bw []uint32) bool {
			aw[0] |= 1 << 31
			bw[0] |= 1 << 31
			ab, bb := bigFromWords(aw, false), bigFromWords(bw, true)
			var c Int
			if err := c.Mul(fromBig(t, ab), fromBig(t, bb)); err != nil {
				return false
			}
			return toBig(t, &c).Cmp(new(big.Int).Mul(ab, bb)) == 0
		},
		gen.SliceOfN(words, gen.UInt32()),
		gen.SliceOfN(words*3, gen.UInt32()),
	))

	properties.TestingRun(t)
}

// TestExptMod_PropertyBased checks every reduction against big.Int.Exp.
func TestExptMod_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	for _, red := range allReductions {
		properties.Property("ExptMod/"+red.String()+" matches math/big", prop.ForAll(
			func(gw []uint32, gn bool, xw []uint32, pw []uint32) bool {
				gb, xb, pb := bigFromWords(gw, gn), bigFromWords(xw, false), bigFromWords(pw, false)
				if pb.Sign() == 0 {
					return true
				}
				if red == ReductionMontgomery {
					pb.SetBit(pb, 0, 1)
				}
				var y Int
				err := y.ExptModWith(fromBig(t, gb), fromBig(t, xb), fromBig(t, pb), ExptOptions{Reduction: red})
				if err != nil {
					return false
				}
				want := new(big.Int).Exp(new(big.Int).Mod(gb, pb), xb, pb)
				if pb.Cmp(big.NewInt(1)) == 0 {
					want.SetInt64(0)
				}
				return y.valid() && toBig(t, &y).Cmp(want) == 0
			},
			gen.SliceOfN(6, gen.UInt32()), gen.Bool(),
			gen.SliceOfN(3, gen.UInt32()),
			gen.SliceOfN(5, gen.UInt32()),
		))
	}

	properties.TestingRun(t)
}

// TestConversions_PropertyBased checks radix and binary round trips.
func TestConversions_PropertyBased(t *testing.T) {
	properties := newProperties()

	properties.Property("hex string matches math/big", prop.ForAll(
		func(aw []uint32, an bool) bool {
			ab := bigFromWords(aw, an)
			a := fromBig(t, ab)
			s, err := a.ToRadix(16)
			if err != nil {
				return false
			}
			want := ab.Text(16)
			var back Int
			if err := back.ReadRadix(want, 16); err != nil {
				return false
			}
			return s == upperHex(want) && back.Cmp(a) == EQ
		},
		gen.SliceOf(gen.UInt32()), gen.Bool(),
	))

	properties.Property("unsigned binary matches math/big Bytes", prop.ForAll(
		func(aw []uint32) bool {
			ab := bigFromWords(aw, false)
			a := fromBig(t, ab)
			got := a.ToUnsignedBin()
			if string(got) != string(ab.Bytes()) {
				return false
			}
			var back Int
			return back.ReadUnsignedBin(got) == nil && back.Cmp(a) == EQ
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.Property("GetI64 wraps like int64 truncation", prop.ForAll(
		func(aw []uint32, an bool) bool {
			ab := bigFromWords(aw, an)
			a := fromBig(t, ab)
			lo := new(big.Int).And(new(big.Int).Abs(ab), new(big.Int).SetUint64(^uint64(0))).Uint64()
			if an {
				lo = -lo
			}
			return a.GetU64() == lo && a.GetMag64() == new(big.Int).And(new(big.Int).Abs(ab), new(big.Int).SetUint64(^uint64(0))).Uint64()
		},
		gen.SliceOf(gen.UInt32()), gen.Bool(),
	))

	properties.TestingRun(t)
}

func upperHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
