package mp

// Ordering is the result of a comparison.
type Ordering int

const (
	LT Ordering = -1
	EQ Ordering = 0
	GT Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case LT:
		return "LT"
	case EQ:
		return "EQ"
	case GT:
		return "GT"
	}
	return "Ordering(?)"
}

// CmpMag compares |x| and |y|.
func (x *Int) CmpMag(y *Int) Ordering {
	if x.used != y.used {
		if x.used > y.used {
			return GT
		}
		return LT
	}
	for i := x.used - 1; i >= 0; i-- {
		if x.dp[i] != y.dp[i] {
			if x.dp[i] > y.dp[i] {
				return GT
			}
			return LT
		}
	}
	return EQ
}

// Cmp compares x and y as signed values.
func (x *Int) Cmp(y *Int) Ordering {
	if x.sign != y.sign {
		if x.sign == NEG {
			return LT
		}
		return GT
	}
	if x.sign == NEG {
		return y.CmpMag(x)
	}
	return x.CmpMag(y)
}

// CmpD compares x with the non-negative single digit d.
func (x *Int) CmpD(d Digit) Ordering {
	if x.sign == NEG {
		return LT
	}
	if x.used > 1 {
		return GT
	}
	var v Digit
	if x.used == 1 {
		v = x.dp[0]
	}
	switch {
	case v > d:
		return GT
	case v < d:
		return LT
	}
	return EQ
}
