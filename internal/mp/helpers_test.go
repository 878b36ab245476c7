package mp

import (
	"math/big"
	"testing"
)

// mustInt parses a decimal string, failing the test on error.
func mustInt(t testing.TB, s string) *Int {
	t.Helper()
	var z Int
	if err := z.ReadRadix(s, 10); err != nil {
		t.Fatalf("ReadRadix(%q): %v", s, err)
	}
	return &z
}

// toBig converts x to a math/big value for cross-checking.
func toBig(t testing.TB, x *Int) *big.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(x.String(), 10)
	if !ok {
		t.Fatalf("cannot parse %q as big.Int", x.String())
	}
	return b
}

// fromBig converts b into an Int.
func fromBig(t testing.TB, b *big.Int) *Int {
	t.Helper()
	return mustInt(t, b.String())
}

// checkValid fails the test when x is not in canonical form.
func checkValid(t testing.TB, name string, x *Int) {
	t.Helper()
	if !x.valid() {
		t.Fatalf("%s is not canonical: used=%d sign=%d alloc=%d", name, x.used, x.sign, len(x.dp))
	}
}
