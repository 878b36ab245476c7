package orchestration

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/agbru/mpcalc/internal/mp"
)

func mustInt(t *testing.T, s string) *mp.Int {
	t.Helper()
	z := mp.New()
	if err := z.SetString(s, 10); err != nil {
		t.Fatalf("SetString(%q): %v", s, err)
	}
	return z
}

func TestStrategiesAgree(t *testing.T) {
	t.Parallel()
	tests := []struct {
		g, x, p, want string
	}{
		{"4", "13", "497", "445"},
		{"2", "100", "1000000007", "976371285"},
		{"-3", "7", "11", "2"},
		{"3", "-1", "11", "4"},
		{"7", "0", "13", "1"},
		{"5", "3", "1", "0"},
	}
	reg := DefaultStrategies(0)
	for _, tt := range tests {
		for _, s := range ForModulus(GetStrategiesToRun(true, "", reg), mustInt(t, tt.p)) {
			name := s.Name()
			got, err := s.ExptMod(context.Background(), mustInt(t, tt.g), mustInt(t, tt.x), mustInt(t, tt.p))
			if err != nil {
				t.Errorf("%s: %s^%s mod %s: %v", name, tt.g, tt.x, tt.p, err)
				continue
			}
			if got.String() != tt.want {
				t.Errorf("%s: %s^%s mod %s = %s, want %s", name, tt.g, tt.x, tt.p, got, tt.want)
			}
		}
	}
}

func TestStrategiesRejectBadModulus(t *testing.T) {
	t.Parallel()
	reg := DefaultStrategies(0)
	for _, name := range reg.List() {
		s, _ := reg.Get(name)
		_, err := s.ExptMod(context.Background(), mustInt(t, "2"), mustInt(t, "3"), mustInt(t, "-5"))
		if !errors.Is(err, mp.ErrValue) {
			t.Errorf("%s: expected ErrValue for negative modulus, got %v", name, err)
		}
		_, err = s.ExptMod(context.Background(), mustInt(t, "2"), mustInt(t, "-1"), mustInt(t, "4"))
		if !errors.Is(err, mp.ErrValue) {
			t.Errorf("%s: expected ErrValue without an inverse, got %v", name, err)
		}
	}
}

func TestForModulus(t *testing.T) {
	t.Parallel()
	all := GetStrategiesToRun(true, "", DefaultStrategies(0))
	names := func(strategies []Strategy) map[string]bool {
		m := make(map[string]bool, len(strategies))
		for _, s := range strategies {
			m[s.Name()] = true
		}
		return m
	}
	if got := names(all); !got["dr"] || !got["2k"] || !got["bigint"] {
		t.Fatalf("default strategies = %v", got)
	}

	tests := []struct {
		p        string
		dr, is2k bool
	}{
		{"72057594037927931", true, true}, // 2^56 - 5
		{"1000000007", false, true},       // 2^30 - 73741817
		{"115792089237316195423570985008687907853269984665640564039457584007913129639936", false, false}, // 2^256
		{"-11", false, false},
	}
	for _, tt := range tests {
		kept := ForModulus(all, mustInt(t, tt.p))
		got := names(kept)
		if got["dr"] != tt.dr || got["2k"] != tt.is2k {
			t.Errorf("ForModulus(%s) = %v", tt.p, got)
		}
		for _, always := range []string{"auto", "barrett", "montgomery", "division", "bigint"} {
			if !got[always] {
				t.Errorf("ForModulus(%s) dropped %s", tt.p, always)
			}
		}
	}
}

func TestStrategyHonorsCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngineStrategy(mp.ReductionBarrett, 0).ExptMod(ctx, mustInt(t, "2"), mustInt(t, "3"), mustInt(t, "5"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBigConversion(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"0", "1", "-1", "268435456", "-123456789012345678901234567890"} {
		b, _ := new(big.Int).SetString(s, 10)
		z, err := FromBig(b)
		if err != nil {
			t.Fatalf("FromBig(%s): %v", s, err)
		}
		if z.String() != s {
			t.Errorf("FromBig(%s) = %s", s, z)
		}
		if ToBig(z).Cmp(b) != 0 {
			t.Errorf("ToBig(FromBig(%s)) = %s", s, ToBig(z))
		}
	}
}

func TestGetStrategiesToRun(t *testing.T) {
	t.Parallel()
	reg := DefaultStrategies(0)

	all := GetStrategiesToRun(true, "", reg)
	if len(all) < 5 {
		t.Fatalf("expected at least 5 strategies, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name() >= all[i].Name() {
			t.Errorf("strategies not sorted: %s before %s", all[i-1].Name(), all[i].Name())
		}
	}

	one := GetStrategiesToRun(false, "barrett", reg)
	if len(one) != 1 || one[0].Name() != "barrett" {
		t.Errorf("expected only barrett, got %v", one)
	}

	if none := GetStrategiesToRun(false, "nope", reg); none != nil {
		t.Errorf("expected nil for an unknown strategy, got %v", none)
	}
}
