package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/mpcalc/internal/format"
	"github.com/agbru/mpcalc/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, profile *CalibrationProfile) {
	best := make(map[int]string, len(profile.Sizes))
	for _, e := range profile.Sizes {
		best[e.Bits] = e.Best
	}

	fmt.Fprintf(out, "\n%s\n", ui.GetStyles().Title.Render("--- Calibration Summary ---"))
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sModulus%s    │ %sReduction%s    │ %sMean exptmod%s   │ %sThroughput%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s┼%s┼%s\n", strings.Repeat("─", 12), strings.Repeat("─", 15), strings.Repeat("─", 17), strings.Repeat("─", 16))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", ui.ColorRed(), ui.ColorReset())
		rateStr := "-"
		if res.Err == nil {
			durationStr = format.FormatExecutionDuration(res.Mean)
			rateStr = format.FormatRate(1, res.Mean)
		}
		highlight := ""
		if res.Err == nil && best[res.Bits] == res.Reduction.String() {
			highlight = fmt.Sprintf(" %s(Optimal)%s", ui.ColorGreen(), ui.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-10s%s │ %-12s │ %s%-14s%s │ %-14s%s\n",
			ui.ColorCyan(), fmt.Sprintf("%d bits", res.Bits), ui.ColorReset(),
			res.Reduction, ui.ColorYellow(), durationStr, ui.ColorReset(), rateStr, highlight)
	}
	tw.Flush()
	fmt.Fprintf(out, "dr and 2k are timed on moduli of their own shape.\n")
	fmt.Fprintf(out, "Calibrated in %s\n", profile.CalibrationTime)
}

// PrintProfileSummary prints the reduction chosen for each calibrated size.
func PrintProfileSummary(p *CalibrationProfile, out io.Writer) {
	parts := make([]string, 0, len(p.Sizes))
	for _, e := range p.Sizes {
		parts = append(parts, fmt.Sprintf("%d=%s%s%s", e.Bits, ui.ColorYellow(), e.Best, ui.ColorReset()))
	}
	fmt.Fprintf(out, "%sCalibration profile%s: %s\n", ui.ColorGreen(), ui.ColorReset(), strings.Join(parts, ", "))
}
