package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/mp"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of dropping updates when the
// UI is slow to consume them.
const ProgressBufferMultiplier = 5

const tracerName = "github.com/agbru/mpcalc/internal/orchestration"

// Inputs are the operands shared by every strategy of a comparison.
type Inputs struct {
	G, X, P *mp.Int
	// Rounds repeats each strategy to smooth out timer noise. Values below
	// one are treated as one.
	Rounds int
}

// ExecuteStrategies runs every strategy concurrently on the same inputs.
//
// Each strategy gets its own trace span. Progress updates are sent without
// blocking, so a slow reporter can lose updates but never stalls a strategy.
// Strategy failures are recorded in the results and do not cancel the others.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - strategies: The strategies to execute.
//   - in: The operands and round count.
//   - progressReporter: The progress reporter (use NullProgressReporter for quiet mode).
//   - out: The io.Writer for progress output.
//
// Returns:
//   - []CalculationResult: The results, in the order of strategies.
func ExecuteStrategies(ctx context.Context, strategies []Strategy, in Inputs, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(strategies))
	progressChan := make(chan ProgressUpdate, len(strategies)*ProgressBufferMultiplier)
	rounds := max(in.Rounds, 1)
	tracer := otel.Tracer(tracerName)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(strategies), out)

	for i, strat := range strategies {
		idx, strategy := i, strat
		g.Go(func() error {
			spanCtx, span := tracer.Start(ctx, "exptmod."+strategy.Name(),
				trace.WithAttributes(
					attribute.String("mpcalc.strategy", strategy.Name()),
					attribute.Int("mpcalc.modulus_bits", in.P.CountBits()),
					attribute.Int("mpcalc.rounds", rounds),
				))
			defer span.End()

			var res *mp.Int
			var err error
			startTime := time.Now()
			for r := 0; r < rounds && err == nil; r++ {
				res, err = strategy.ExptMod(spanCtx, in.G, in.X, in.P)
				select {
				case progressChan <- ProgressUpdate{StrategyIndex: idx, Value: float64(r+1) / float64(rounds)}:
				default:
				}
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, mp.ErrorToString(mp.CodeOf(err)))
				res = nil
			}
			results[idx] = CalculationResult{
				Name: strategy.Name(), Result: res, Duration: time.Since(startTime), Err: err,
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults sorts the results (successes first, then by
// duration), presents the comparison table, and checks that every successful
// strategy produced the same value.
//
// Parameters:
//   - results: The slice of results to analyze.
//   - opts: Presentation options for the agreed result.
//   - presenter: The result presenter for display formatting.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValidResult *CalculationResult
	var firstError error
	successCount := 0

	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
			}
		} else {
			successCount++
			if firstValidResult == nil {
				firstValidResult = &results[i]
			}
		}
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No strategy could complete the exponentiation.\n")
		return presenter.HandleError(firstError, 0, out)
	}

	for _, res := range results {
		if res.Err == nil && res.Result.Cmp(firstValidResult.Result) != mp.EQ {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s disagree.\n", firstValidResult.Name, res.Name)
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*firstValidResult, opts, out)
	return apperrors.ExitSuccess
}
