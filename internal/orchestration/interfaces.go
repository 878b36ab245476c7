package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/mpcalc/internal/mp"
)

// CalculationResult encapsulates the outcome of one strategy run.
// It is the shared domain type between orchestration and presentation layers.
type CalculationResult struct {
	// Name is the identifier of the strategy used (e.g., "montgomery").
	Name string
	// Result is g^x mod p. It is nil if an error occurred.
	Result *mp.Int
	// Duration is the time taken by all rounds of the strategy.
	Duration time.Duration
	// Err contains any error that occurred during the run.
	Err error
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Radix   int
	Verbose bool
	Quiet   bool
}

// ProgressUpdate reports the completed fraction of one strategy's rounds.
type ProgressUpdate struct {
	StrategyIndex int
	Value         float64
}

// ProgressReporter defines the interface for displaying run progress.
//
// Implementations handle the visual representation of progress (spinners,
// progress bars, etc.) while the orchestration layer focuses on coordinating
// the strategies.
type ProgressReporter interface {
	// DisplayProgress starts displaying progress updates from the channel.
	// It should be called in a separate goroutine and will run until the
	// progressChan is closed.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from strategies.
	//   - numStrategies: The number of concurrent strategies being tracked.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numStrategies int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numStrategies int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numStrategies int, out io.Writer) {
	f(wg, progressChan, numStrategies, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler handles run errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// ResultPresenter defines the interface for presenting comparison results.
type ResultPresenter interface {
	DurationFormatter
	ErrorHandler

	// PresentComparisonTable displays the comparison summary table.
	PresentComparisonTable(results []CalculationResult, out io.Writer)

	// PresentResult displays the agreed result.
	PresentResult(result CalculationResult, opts PresentationOptions, out io.Writer)
}
