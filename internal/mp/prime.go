package mp

import "sync"

// PrimeTabSize is the number of small primes used for trial division.
const PrimeTabSize = 256

// smallPrimes returns the first PrimeTabSize primes, 2 through 1619.
var smallPrimes = sync.OnceValue(func() []Digit {
	primes := make([]Digit, 0, PrimeTabSize)
	for n := Digit(2); len(primes) < PrimeTabSize; n++ {
		prime := true
		for _, p := range primes {
			if p*p > n {
				break
			}
			if n%p == 0 {
				prime = false
				break
			}
		}
		if prime {
			primes = append(primes, n)
		}
	}
	return primes
})

// MillerRabin reports whether a passes one strong probable prime round to
// base b. a must be odd and above 2, and b must satisfy 1 < b < a-1.
func MillerRabin(a, b *Int) (bool, error) {
	if a.sign == NEG || a.CmpD(3) == LT || a.IsEven() || b.CmpD(1) != GT {
		return false, newError(ErrVal, "prime_miller_rabin")
	}
	ok, err := millerRabin(a, b)
	return ok, relabel(err, "prime_miller_rabin")
}

func millerRabin(a, b *Int) (bool, error) {
	// a - 1 = 2^s * r with r odd
	var n1, r, y Int
	if err := n1.SubD(a, 1); err != nil {
		return false, err
	}
	s := 0
	for {
		bit, err := n1.GetBit(s)
		if err != nil {
			return false, err
		}
		if bit {
			break
		}
		s++
	}
	if err := Div2d(&r, nil, &n1, s); err != nil {
		return false, err
	}

	if err := y.ExptMod(b, &r, a); err != nil {
		return false, err
	}
	if y.CmpD(1) == EQ || y.Cmp(&n1) == EQ {
		return true, nil
	}
	for j := 1; j < s; j++ {
		if err := y.SqrMod(&y, a); err != nil {
			return false, err
		}
		if y.CmpD(1) == EQ {
			return false, nil
		}
		if y.Cmp(&n1) == EQ {
			return true, nil
		}
	}
	return false, nil
}

// IsPrime reports whether a is probably prime.
//
// Values below 2 are not prime. Odd candidates outside the small-prime table
// are rejected when they are perfect squares or have a small factor, then
// go through Miller-Rabin rounds to bases 2 and 3 followed by t more rounds
// using the next primes of the table as bases. Candidates below 2^64 use the
// deterministic base set instead of the t extra rounds. t must be between 0
// and PrimeTabSize-2.
func IsPrime(a *Int, t int) (bool, error) {
	if t < 0 || t > PrimeTabSize-2 {
		return false, newError(ErrVal, "prime_is_prime")
	}
	ok, err := isPrime(a, t)
	return ok, relabel(err, "prime_is_prime")
}

// deterministic64 are bases that make Miller-Rabin exact below 2^64.
var deterministic64 = []uint64{2, 325, 9375, 28178, 450775, 9780504, 1795265022}

func isPrime(a *Int, t int) (bool, error) {
	if a.sign == NEG || a.CmpD(2) == LT {
		return false, nil
	}
	if a.CmpD(2) == EQ {
		return true, nil
	}
	if a.IsEven() {
		return false, nil
	}

	primes := smallPrimes()
	if a.used == 1 {
		for _, p := range primes {
			if a.dp[0] == p {
				return true, nil
			}
		}
	}

	var root Int
	if err := root.Sqrt(a); err != nil {
		return false, err
	}
	if err := root.Sqr(&root); err != nil {
		return false, err
	}
	if root.Cmp(a) == EQ {
		return false, nil
	}

	for _, p := range primes {
		rem, err := ModD(a, p)
		if err != nil {
			return false, err
		}
		if rem == 0 {
			return false, nil
		}
	}
	// No factor up to the largest table prime: everything below its square
	// is prime.
	last := primes[len(primes)-1]
	if a.used <= 2 && a.GetMag64() < uint64(last)*uint64(last) {
		return true, nil
	}

	var b Int
	if a.CountBits() <= 64 {
		n := a.GetMag64()
		for _, base := range deterministic64 {
			if base%n == 0 {
				continue
			}
			b.SetU64(base % n)
			if b.CmpD(1) != GT {
				continue
			}
			ok, err := millerRabin(a, &b)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}

	bases := append([]Digit{2, 3}, primes[2:2+t]...)
	for _, base := range bases {
		b.Set(base)
		ok, err := millerRabin(a, &b)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// NextPrime sets z to the smallest probable prime above |a|, checking
// candidates with IsPrime(candidate, t). With bbs set only primes congruent
// to 3 mod 4 are accepted.
func (z *Int) NextPrime(a *Int, t int, bbs bool) error {
	if t < 0 || t > PrimeTabSize-2 {
		return newError(ErrVal, "prime_next_prime")
	}
	var c Int
	if err := c.Abs(a); err != nil {
		return relabel(err, "prime_next_prime")
	}

	step := Digit(2)
	if bbs {
		step = 4
	}
	// First candidate: the next value above |a| of the right residue class.
	switch {
	case !bbs && c.CmpD(2) == LT:
		z.Set(2)
		return nil
	case bbs && c.CmpD(3) == LT:
		z.Set(3)
		return nil
	}
	if err := c.AddD(&c, 1); err != nil {
		return relabel(err, "prime_next_prime")
	}
	want := Digit(1)
	if bbs {
		want = 3
	}
	for {
		r, err := ModD(&c, step)
		if err != nil {
			return relabel(err, "prime_next_prime")
		}
		if r == want {
			break
		}
		if err := c.AddD(&c, 1); err != nil {
			return relabel(err, "prime_next_prime")
		}
	}

	for {
		ok, err := isPrime(&c, t)
		if err != nil {
			return relabel(err, "prime_next_prime")
		}
		if ok {
			z.Exch(&c)
			return nil
		}
		if err := c.AddD(&c, step); err != nil {
			return relabel(err, "prime_next_prime")
		}
	}
}
