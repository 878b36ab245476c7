package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/agbru/mpcalc/internal/config"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/sysmon"
	"github.com/agbru/mpcalc/internal/ui"
)

// hostLookupTimeout bounds the CPU model lookup of PrintExecutionConfig.
const hostLookupTimeout = 2 * time.Second

// PrintExecutionConfig displays the operation, timeout, host and engine
// settings of the run.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	ctx, cancel := context.WithTimeout(context.Background(), hostLookupTimeout)
	defer cancel()
	host := sysmon.DescribeHost(ctx)

	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Evaluating %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), strings.ToLower(cfg.Op), ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	model := host.ModelName
	if model == "" {
		model = runtime.GOARCH
	}
	fmt.Fprintf(out, "Environment: %s%s%s, %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), model, ui.ColorReset(),
		ui.ColorCyan(), host.LogicalCores, ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Engine: %s%d%s-bit digits, reduction=%s%s%s, window=%s.\n",
		ui.ColorCyan(), mp.DigitBit, ui.ColorReset(),
		ui.ColorCyan(), cfg.Reduction, ui.ColorReset(), windowLabel(cfg.Window))
	if features := CPUFeatures(); len(features) > 0 {
		fmt.Fprintf(out, "CPU features: %s.\n", strings.Join(features, ", "))
	}
}

func windowLabel(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d bits", w)
}

// CPUFeatures lists the instruction set extensions relevant to multiplication
// and hashing that the host reports.
func CPUFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasADX, "ADX")
		add(cpu.X86.HasBMI2, "BMI2")
		add(cpu.X86.HasAVX2, "AVX2")
		add(cpu.X86.HasAVX512F, "AVX-512F")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "ASIMD")
		add(cpu.ARM64.HasPMULL, "PMULL")
		add(cpu.ARM64.HasSVE, "SVE")
	}
	return features
}

// PrintExecutionMode displays whether a single strategy runs or several are
// compared.
//
// Parameters:
//   - strategies: The strategies that will be executed.
//   - out: The writer for standard output.
func PrintExecutionMode(strategies []orchestration.Strategy, out io.Writer) {
	var modeDesc string
	switch len(strategies) {
	case 0:
		modeDesc = "No strategy selected"
	case 1:
		modeDesc = fmt.Sprintf("Single run with the %s%s%s strategy",
			ui.ColorGreen(), strategies[0].Name(), ui.ColorReset())
	default:
		names := make([]string, len(strategies))
		for i, s := range strategies {
			names[i] = s.Name()
		}
		modeDesc = fmt.Sprintf("Parallel comparison of %s", strings.Join(names, ", "))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
