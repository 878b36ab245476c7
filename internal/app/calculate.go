package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/agbru/mpcalc/internal/cli"
	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/metrics"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/tui"
	"github.com/agbru/mpcalc/internal/ui"
)

// runCalculate evaluates the command-line expression, or compares the
// exptmod strategies when --compare or --tui is set.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.Compare || a.Config.TUI {
		return a.runCompare(ctx, out)
	}
	return a.runEval(ctx, out)
}

// request builds the evaluation request of the configuration, choosing the
// exptmod reduction from the calibration profile when it is left on auto.
func (a *Application) request() eval.Request {
	req := eval.Request{
		Op:         strings.ToLower(a.Config.Op),
		A:          a.Config.A,
		B:          a.Config.B,
		M:          a.Config.M,
		D:          uint32(a.Config.D),
		InputRadix: a.Config.InputRadix,
		Radix:      a.Config.Radix,
		Reduction:  a.Config.Reduction,
		Window:     a.Config.Window,
	}
	if req.Op == "exptmod" {
		if red := a.calibratedReduction(); red != mp.ReductionAuto {
			req.Reduction = red.String()
		}
	}
	return req
}

// calibratedReduction returns the profile's pick for the configured modulus,
// or ReductionAuto when the reduction was forced or no pick applies.
func (a *Application) calibratedReduction() mp.Reduction {
	if a.Profile == nil || !strings.EqualFold(a.Config.Reduction, mp.ReductionAuto.String()) {
		return mp.ReductionAuto
	}
	var m mp.Int
	if err := m.SetString(a.Config.M, a.Config.InputRadix); err != nil || m.IsNeg() || m.IsZero() {
		return mp.ReductionAuto
	}
	red := a.Profile.ReductionForModulus(&m)
	a.Logger.Debug("reduction from calibration profile",
		logging.Int("modulus_bits", m.CountBits()), logging.String("reduction", red.String()))
	return red
}

func (a *Application) exptOptions() (mp.ExptOptions, error) {
	opts, err := a.Config.ExptOptions()
	if err != nil {
		return opts, apperrors.NewConfigError("--reduction: %v", err)
	}
	return opts, nil
}

func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
}

// runEval evaluates a single operation.
func (a *Application) runEval(ctx context.Context, out io.Writer) int {
	req := a.request()
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		fmt.Fprintf(out, "\n--- Starting Execution ---\n")
	}

	memory := metrics.NewMemoryCollector()
	before := memory.Snapshot()
	start := time.Now()
	res, err := a.Registry.Evaluate(ctx, req)
	duration := time.Since(start)
	allocated := memory.Snapshot().Since(before)
	a.Logger.Debug("evaluation finished",
		logging.String("op", res.Op), logging.ResultCode(mp.Code(res.Code)),
		logging.Float64("duration_ms", float64(duration.Microseconds())/1000),
		logging.Uint64("allocated_bytes", allocated.TotalAlloc))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = apperrors.TimeoutError{Operation: req.Op, Limit: a.Config.Timeout}
		}
		errOut := out
		if a.Config.Quiet {
			errOut = a.ErrWriter
		}
		return apperrors.HandleCalculationError(err, duration, errOut)
	}

	if err := cli.DisplayResultWithConfig(out, req, res, duration, a.outputConfig()); err != nil {
		a.Logger.Error("cannot save result", err, logging.String("path", a.Config.OutputFile))
		return apperrors.ExitErrorGeneric
	}
	if a.Config.Verbose && !a.Config.Quiet {
		cli.DisplayMemoryStats(allocated, out)
	}
	return apperrors.ExitSuccess
}

// runCompare runs exptmod through every strategy concurrently and checks that
// they agree.
func (a *Application) runCompare(ctx context.Context, out io.Writer) int {
	var g, x, p mp.Int
	for _, operand := range []struct {
		name, text string
		dst        *mp.Int
	}{{"a", a.Config.A, &g}, {"b", a.Config.B, &x}, {"m", a.Config.M, &p}} {
		if err := operand.dst.SetString(operand.text, a.Config.InputRadix); err != nil {
			return apperrors.HandleCalculationError(apperrors.ValidationError{
				Field:   operand.name,
				Message: fmt.Sprintf("cannot parse %q: %s", operand.text, mp.ErrorToString(mp.CodeOf(err))),
			}, 0, a.ErrWriter)
		}
	}

	strategies := orchestration.ForModulus(orchestration.GetStrategiesToRun(true, "", a.Strategies), &p)
	if a.Config.TUI {
		in := orchestration.Inputs{G: &g, X: &x, P: &p, Rounds: 1}
		return tui.Run(ctx, strategies, in, tui.Options{Radix: a.Config.Radix, Version: Version})
	}
	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut, summaryOut := out, out
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
		progressOut, summaryOut = io.Discard, io.Discard
	} else {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(strategies, out)
	}

	results := orchestration.ExecuteStrategies(ctx, strategies, orchestration.Inputs{G: &g, X: &x, P: &p, Rounds: 1}, reporter, progressOut)
	opts := orchestration.PresentationOptions{Radix: a.Config.Radix, Verbose: a.Config.Verbose}
	code := orchestration.AnalyzeComparisonResults(results, opts, cli.CLIResultPresenter{}, summaryOut)
	if code != apperrors.ExitSuccess {
		if a.Config.Quiet {
			fmt.Fprintf(a.ErrWriter, "comparison failed (exit code %d)\n", code)
		}
		return code
	}

	best := fastestResult(results)
	if best == nil {
		return apperrors.ExitErrorGeneric
	}
	res, err := comparisonResult(best, a.Config.Radix)
	if err != nil {
		return apperrors.HandleCalculationError(err, best.Duration, a.ErrWriter)
	}
	if a.Config.Quiet {
		cli.DisplayQuietResult(out, res)
	}
	if a.Config.OutputFile != "" {
		if err := cli.WriteResultToFile(a.request(), res, best.Duration, a.outputConfig()); err != nil {
			a.Logger.Error("cannot save result", err, logging.String("path", a.Config.OutputFile))
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// fastestResult returns the quickest successful run, or nil.
func fastestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var best *orchestration.CalculationResult
	for i := range results {
		if results[i].Err == nil && (best == nil || results[i].Duration < best.Duration) {
			best = &results[i]
		}
	}
	return best
}

// comparisonResult renders a strategy result like an exptmod evaluation.
func comparisonResult(r *orchestration.CalculationResult, radix int) (eval.Result, error) {
	s, err := r.Result.ToRadix(radix)
	if err != nil {
		return eval.Result{}, apperrors.EngineError{Operation: "exptmod", Cause: err}
	}
	return eval.Result{
		Op:     "exptmod",
		Value:  s,
		Bits:   r.Result.CountBits(),
		Code:   int(mp.Okay),
		Status: mp.ErrorToString(mp.Okay),
	}, nil
}
