//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/format"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/ui"
)

const (
	// TruncationLimit is the digit count from which a value is truncated in
	// standard output to avoid cluttering the terminal.
	TruncationLimit = 100
	// DisplayEdges specifies the number of digits shown at the beginning and
	// end of a truncated value.
	DisplayEdges = 25
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts a terminal spinner so that DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress renders a spinner with an aggregated progress bar and ETA
// until progressChan is closed. It calls wg.Done on return.
//
// Parameters:
//   - wg: Signalled when the display has finished.
//   - progressChan: Per-strategy progress updates.
//   - numStrategies: The number of strategies reporting on the channel.
//   - out: The destination of the spinner.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numStrategies int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numStrategies)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	label := "Computing"
	if agg.IsMultiStrategy() {
		label = fmt.Sprintf("Comparing %d strategies", agg.NumStrategies())
	}
	s.UpdateSuffix(" " + label + " " + FormatProgressBarWithETA(0, 0, ProgressBarWidth))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	var last orchestration.AggregatedProgress
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.UpdateSuffix(" " + label + " " + FormatProgressBarWithETA(1, 0, ProgressBarWidth))
				return
			}
			last = agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(" " + label + " " + FormatProgressBarWithETA(last.AverageProgress, last.ETA, ProgressBarWidth))
		}
	}
}

// DisplayResult prints an evaluation result with its status and timing.
// Long values are truncated unless verbose is set.
//
// Parameters:
//   - res: The evaluation result.
//   - duration: The evaluation time.
//   - verbose: Print the full value.
//   - out: The destination writer.
func DisplayResult(res eval.Result, duration time.Duration, verbose bool, out io.Writer) {
	statusColor := ui.ColorGreen()
	if res.Code != 0 {
		statusColor = ui.ColorRed()
	}
	fmt.Fprintf(out, "\n%s--- Result ---%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(out, "Operation:  %s%s%s\n", ui.ColorBlue(), res.Op, ui.ColorReset())
	fmt.Fprintf(out, "Status:     %s%s%s (code %d)\n", statusColor, res.Status, ui.ColorReset(), res.Code)
	fmt.Fprintf(out, "Time:       %s%s%s\n", ui.ColorYellow(), format.FormatExecutionDuration(duration), ui.ColorReset())

	if res.Ordering != "" {
		fmt.Fprintf(out, "Ordering:   %s%s%s\n", ui.ColorCyan(), res.Ordering, ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "Bits:       %s%d%s\n", ui.ColorCyan(), res.Bits, ui.ColorReset())

	value, truncated := formatValue(res.Value, verbose)
	fmt.Fprintf(out, "Value:      %s%s%s\n", ui.ColorGreen(), value, ui.ColorReset())
	if res.Remainder != "" {
		rem, _ := formatValue(res.Remainder, verbose)
		fmt.Fprintf(out, "Remainder:  %s%s%s\n", ui.ColorGreen(), rem, ui.ColorReset())
	}
	if truncated {
		fmt.Fprintf(out, "%s(truncated, %d digits) Tip: use -v to print the full value.%s\n",
			ui.ColorGrey(), len(strings.TrimPrefix(res.Value, "-")), ui.ColorReset())
	}
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
