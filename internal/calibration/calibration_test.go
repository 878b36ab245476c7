package calibration

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/agbru/mpcalc/internal/mp"
)

func TestRoundsFor(t *testing.T) {
	t.Parallel()
	prev := RoundsFor(256)
	if prev < 1 {
		t.Fatalf("RoundsFor(256) = %d", prev)
	}
	for _, bits := range GenerateModulusSizes()[1:] {
		r := RoundsFor(bits)
		if r < 1 || r > prev {
			t.Errorf("RoundsFor(%d) = %d, previous size had %d", bits, r, prev)
		}
		prev = r
	}
}

func TestQuickSizesAreSubset(t *testing.T) {
	t.Parallel()
	full := make(map[int]bool)
	for _, b := range GenerateModulusSizes() {
		full[b] = true
	}
	for _, b := range GenerateQuickModulusSizes() {
		if !full[b] {
			t.Errorf("quick size %d is not part of the full set", b)
		}
	}
}

func TestRandomOperands(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	for _, bits := range []int{61, 64, 256, 1000} {
		g, x, p, err := randomOperands(rng, bits)
		if err != nil {
			t.Fatal(err)
		}
		if p.CountBits() != bits || p.IsEven() {
			t.Errorf("%d bits: modulus has %d bits, odd=%v", bits, p.CountBits(), p.IsOdd())
		}
		if g.CountBits() > bits || x.CountBits() > bits {
			t.Errorf("%d bits: operands too large", bits)
		}
	}
}

func TestRestrictedModulus(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 4))
	for _, bits := range []int{61, 256, 1000} {
		for _, red := range restrictedReductions {
			q, err := restrictedModulus(rng, red, bits)
			if err != nil {
				t.Fatalf("%s at %d bits: %v", red, bits, err)
			}
			if !red.Supports(q) || q.IsEven() {
				t.Errorf("%s at %d bits: %s is not a usable modulus", red, bits, q)
			}
			if red == mp.Reduction2k && q.CountBits() != bits {
				t.Errorf("2k at %d bits: modulus has %d bits", bits, q.CountBits())
			}
		}
	}
}

func TestRunCalibration(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	profile, err := RunCalibration(context.Background(), &out, Options{Sizes: []int{128, 256}, Rounds: 1, Seed: 7})
	if err != nil {
		t.Fatalf("RunCalibration: %v", err)
	}
	if len(profile.Sizes) != 2 {
		t.Fatalf("expected 2 size entries, got %+v", profile.Sizes)
	}
	for _, e := range profile.Sizes {
		if len(e.Nanos) != 5 {
			t.Errorf("%d bits: expected 5 timings, got %v", e.Bits, e.Nanos)
		}
		if e.Best == "dr" || e.Best == "2k" {
			t.Errorf("%d bits: restricted reduction %q picked as best", e.Bits, e.Best)
		}
		if _, ok := e.Nanos[e.Best]; !ok {
			t.Errorf("%d bits: best %q has no timing", e.Bits, e.Best)
		}
	}
	if !profile.IsValid() || profile.CalibrationTime == "" {
		t.Errorf("profile header incomplete: %+v", profile)
	}
	text := out.String()
	for _, want := range []string{"Calibration Summary", "128 bits", "montgomery", "2k", "(Optimal)"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary is missing %q:\n%s", want, text)
		}
	}
}

func TestRunCalibrationCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunCalibration(ctx, &bytes.Buffer{}, Options{Sizes: []int{256}, Rounds: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
