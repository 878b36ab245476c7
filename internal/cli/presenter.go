package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/format"
	"github.com/agbru/mpcalc/internal/metrics"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// terminal spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing runs.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numStrategies int, out io.Writer) {
	DisplayProgress(wg, progressChan, numStrategies, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for the
// command line.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentComparisonTable displays strategy names, durations and status.
// Padding is computed by hand so ANSI color codes do not skew the columns.
func (p CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	maxNameLen := len("Strategy")
	maxDurationLen := len("Duration")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(p.FormatDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sStrategy%s%s   %sDuration%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Strategy")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxDurationLen-len("Duration")),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ %s (%v)%s", ui.ColorRed(), mp.ErrorToString(mp.CodeOf(res.Err)), res.Err, ui.ColorReset())
		} else {
			status = fmt.Sprintf("%s✅ %s%s", ui.ColorGreen(), mp.ErrorToString(mp.Okay), ui.ColorReset())
		}
		duration := p.FormatDuration(res.Duration)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), padRight("", maxNameLen-len(res.Name)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", maxDurationLen-len(duration)),
			status)
	}
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays the value the strategies agreed on.
func (p CLIResultPresenter) PresentResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	radix := opts.Radix
	if radix == 0 {
		radix = 10
	}
	s, err := result.Result.ToRadix(radix)
	if err != nil {
		fmt.Fprintf(out, "%sCannot render result: %s%s\n", ui.ColorRed(), mp.ErrorToString(mp.CodeOf(err)), ui.ColorReset())
		return
	}
	if opts.Quiet {
		fmt.Fprintln(out, s)
		return
	}
	value, truncated := formatValue(s, opts.Verbose)
	fmt.Fprintf(out, "\n%sResult (%s, %s):%s\n", ui.ColorBold(), result.Name, p.FormatDuration(result.Duration), ui.ColorReset())
	fmt.Fprintf(out, "  Bits:  %s%d%s\n", ui.ColorCyan(), result.Result.CountBits(), ui.ColorReset())
	fmt.Fprintf(out, "  Value: %s%s%s\n", ui.ColorGreen(), value, ui.ColorReset())
	if truncated {
		fmt.Fprintf(out, "  %s(truncated) Tip: use -v to print the full value.%s\n", ui.ColorGrey(), ui.ColorReset())
	}
}

// FormatDuration formats a duration for display, showing "< 1µs" for
// durations too short to measure.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// HandleError reports a run error and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out)
}

// DisplayMemoryStats shows what a run allocated, given the difference of two
// snapshots (see metrics.MemorySnapshot.Since).
func DisplayMemoryStats(delta metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Allocated:       %s in %d objects\n", format.FormatBytes(delta.TotalAlloc), delta.Mallocs)
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(delta.HeapAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.NumGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(delta.PauseTotalNs)/1e6)
}
