package calibration

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/sysmon"
)

// Options tunes a calibration run.
type Options struct {
	// Sizes are the modulus bit lengths to measure. Empty means
	// GenerateModulusSizes.
	Sizes []int
	// Rounds overrides RoundsFor when positive.
	Rounds int
	// Seed makes the operands reproducible.
	Seed uint64
	// Logger receives one debug line per measurement. Nil disables logging.
	Logger logging.Logger
}

// calibrationResult is the timing of one reduction at one size.
type calibrationResult struct {
	Bits      int
	Reduction mp.Reduction
	Mean      time.Duration
	Err       error
}

// calibratedReductions are the strategies timed by a run; "auto" only
// dispatches to one of them.
var calibratedReductions = []mp.Reduction{mp.ReductionBarrett, mp.ReductionMontgomery, mp.ReductionDivision}

// restrictedReductions only serve moduli of a special shape.
var restrictedReductions = []mp.Reduction{mp.ReductionDR, mp.Reduction2k}

// RunCalibration times every reduction on random operands of each size,
// checks that they agree, prints a summary table to out and returns the
// resulting profile. It stops early when ctx is canceled.
func RunCalibration(ctx context.Context, out io.Writer, opts Options) (*CalibrationProfile, error) {
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = GenerateModulusSizes()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	profile := NewProfile()
	profile.CPUModel = sysmon.DescribeHost(ctx).ModelName
	start := time.Now()

	var results []calibrationResult
	for _, bits := range sizes {
		g, x, p, err := randomOperands(rng, bits)
		if err != nil {
			return nil, err
		}
		rounds := opts.Rounds
		if rounds <= 0 {
			rounds = RoundsFor(bits)
		}

		entry := SizeEntry{Bits: bits, Nanos: make(map[string]int64)}
		timed, err := measure(ctx, logger, calibratedReductions, g, x, p, nil, bits, rounds)
		if err != nil {
			return nil, err
		}
		var bestMean time.Duration
		for _, r := range timed {
			results = append(results, r)
			if r.Err != nil {
				continue
			}
			entry.Nanos[r.Reduction.String()] = r.Mean.Nanoseconds()
			if entry.Best == "" || r.Mean < bestMean {
				entry.Best, bestMean = r.Reduction.String(), r.Mean
			}
		}

		// The restricted reductions only apply to moduli of their own shape,
		// so they are timed on such a modulus and never become Best.
		for _, red := range restrictedReductions {
			q, err := restrictedModulus(rng, red, bits)
			if err != nil {
				return nil, err
			}
			var want mp.Int
			if err := want.ExptModWith(g, x, q, mp.ExptOptions{Reduction: mp.ReductionMontgomery}); err != nil {
				return nil, err
			}
			timed, err := measure(ctx, logger, []mp.Reduction{red}, g, x, q, &want, bits, rounds)
			if err != nil {
				return nil, err
			}
			results = append(results, timed...)
			if timed[0].Err == nil {
				entry.Nanos[red.String()] = timed[0].Mean.Nanoseconds()
			}
		}
		if entry.Best != "" {
			profile.Sizes = append(profile.Sizes, entry)
		}
	}

	profile.CalibratedAt = time.Now()
	profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	printCalibrationResults(out, results, profile)
	return profile, nil
}

// measure times each reduction on g^x mod p and checks that the results
// agree with each other and with want when it is set. A failing reduction
// is reported in its result; a disagreement or cancellation aborts.
func measure(ctx context.Context, logger logging.Logger, reds []mp.Reduction, g, x, p, want *mp.Int, bits, rounds int) ([]calibrationResult, error) {
	results := make([]calibrationResult, 0, len(reds))
	reference := want
	for _, red := range reds {
		res, mean, err := timeStrategy(ctx, orchestration.NewEngineStrategy(red, 0), g, x, p, rounds)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results = append(results, calibrationResult{Bits: bits, Reduction: red, Mean: mean, Err: err})
		if err != nil {
			logger.Error("calibration step failed", err, logging.Int("bits", bits), logging.String("reduction", red.String()))
			continue
		}
		logger.Debug("calibration step", logging.Int("bits", bits), logging.String("reduction", red.String()),
			logging.Int("rounds", rounds), logging.Float64("mean_us", float64(mean.Nanoseconds())/1e3))

		if reference == nil {
			reference = res
		} else if res.Cmp(reference) != mp.EQ {
			return nil, fmt.Errorf("calibration: %s disagrees at %d bits", red, bits)
		}
	}
	return results, nil
}

// timeStrategy runs rounds exponentiations and returns the last result and
// the mean duration.
func timeStrategy(ctx context.Context, s orchestration.Strategy, g, x, p *mp.Int, rounds int) (*mp.Int, time.Duration, error) {
	var res *mp.Int
	start := time.Now()
	for range rounds {
		var err error
		if res, err = s.ExptMod(ctx, g, x, p); err != nil {
			return nil, 0, err
		}
	}
	return res, time.Since(start) / time.Duration(rounds), nil
}

// randomOperands draws an odd modulus of exactly bits bits and a base and
// exponent below it.
func randomOperands(rng *rand.Rand, bits int) (g, x, p *mp.Int, err error) {
	draw := func(topBit, odd bool) (*mp.Int, error) {
		buf := make([]byte, (bits+7)/8)
		for i := range buf {
			buf[i] = byte(rng.Uint32())
		}
		if extra := len(buf)*8 - bits; extra > 0 {
			buf[0] &= 0xff >> extra
		}
		if topBit {
			buf[0] |= 0x80 >> ((len(buf)*8 - bits) % 8)
		}
		if odd {
			buf[len(buf)-1] |= 1
		}
		z := mp.New()
		return z, z.ReadUnsignedBin(buf)
	}
	if p, err = draw(true, true); err != nil {
		return nil, nil, nil, err
	}
	if g, err = draw(false, false); err != nil {
		return nil, nil, nil, err
	}
	if x, err = draw(false, false); err != nil {
		return nil, nil, nil, err
	}
	return g, x, p, nil
}

// restrictedModulus draws an odd modulus of the shape red needs: B^k - d
// with k digits covering bits for DR, 2^bits - d for 2k, with d below 2^20.
func restrictedModulus(rng *rand.Rand, red mp.Reduction, bits int) (*mp.Int, error) {
	var q mp.Int
	d := mp.Digit(rng.Uint32N(1<<19))<<1 | 1
	switch red {
	case mp.ReductionDR:
		k := max(2, (bits+mp.DigitBit-1)/mp.DigitBit)
		if err := q.TwoExpt(k * mp.DigitBit); err != nil {
			return nil, err
		}
	default:
		if err := q.TwoExpt(bits); err != nil {
			return nil, err
		}
	}
	if err := q.SubD(&q, d); err != nil {
		return nil, err
	}
	if !red.Supports(&q) {
		return nil, fmt.Errorf("calibration: no %s modulus at %d bits", red, bits)
	}
	return &q, nil
}
