// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatETA].
//
//   - Write* functions write data to files on the filesystem.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the value.
	Quiet bool
	// Verbose prints the full value instead of a truncated one.
	Verbose bool
}

// WriteResultToFile writes an evaluation and its result to a file.
//
// Parameters:
//   - req: The evaluated request.
//   - res: Its result.
//   - duration: The evaluation duration.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(req eval.Request, res eval.Result, duration time.Duration, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "# mpcalc result\n")
	fmt.Fprintf(&b, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "# Operation: %s\n", res.Op)
	for _, operand := range []struct{ name, value string }{{"a", req.A}, {"b", req.B}, {"m", req.M}} {
		if operand.value != "" {
			fmt.Fprintf(&b, "# %s: %s\n", operand.name, operand.value)
		}
	}
	if req.D != 0 {
		fmt.Fprintf(&b, "# d: %d\n", req.D)
	}
	fmt.Fprintf(&b, "# Duration: %s\n", duration)
	fmt.Fprintf(&b, "# Status: %s (%d)\n", res.Status, res.Code)
	if res.Ordering == "" {
		fmt.Fprintf(&b, "# Bits: %d\n", res.Bits)
	}
	fmt.Fprintf(&b, "\n%s\n", FormatQuietResult(res))

	if _, err := io.WriteString(file, b.String()); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

// FormatQuietResult formats a result as a single line for scripts: the
// ordering for comparisons, otherwise the value followed by the remainder
// when the operation has one.
func FormatQuietResult(res eval.Result) string {
	if res.Ordering != "" {
		return res.Ordering
	}
	if res.Remainder != "" {
		return res.Value + " " + res.Remainder
	}
	return res.Value
}

// DisplayQuietResult outputs a result in quiet mode.
func DisplayQuietResult(out io.Writer, res eval.Result) {
	fmt.Fprintln(out, FormatQuietResult(res))
}

// DisplayResultWithConfig displays a result according to config and saves
// it when an output file is set.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, req eval.Request, res eval.Result, duration time.Duration, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res)
	} else {
		DisplayResult(res, duration, config.Verbose, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(req, res, duration, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
