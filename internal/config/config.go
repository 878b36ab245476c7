// Package config parses and validates the mpcalc command line.
//
// Values are resolved with the priority: flags > MPCALC_* environment
// variables (optionally loaded from a .env file) > TOML config file >
// built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/mp"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "MPCALC_"

const (
	// DefaultOp is the operation run when --op is not given.
	DefaultOp = "exptmod"
	// DefaultTimeout bounds a single evaluation.
	DefaultTimeout = 5 * time.Minute
	// DefaultAddr is the listen address of --serve.
	DefaultAddr = ":8080"
	// DefaultEnvFile is the dotenv file read at startup when present.
	DefaultEnvFile = ".env"
	// DefaultLogLevel is the zerolog level name used when none is set.
	DefaultLogLevel = "info"
)

// AppConfig holds every setting of a run.
type AppConfig struct {
	// Op is the operation to evaluate (see eval.DefaultRegistry).
	Op string
	// A, B and M are the textual operands; M is the modulus for exptmod.
	A, B, M string
	// D is the single-digit operand of addd, subd, muld, divd, modd, exptd
	// and the bit count of mul2d, div2d, mod2d.
	D uint64
	// InputRadix is the radix of A, B and M; 0 enables prefix detection.
	InputRadix int
	// Radix is the output radix.
	Radix int
	// Reduction names the exptmod reduction, one of mp.ReductionNames.
	Reduction string
	// Window forces the exptmod window width; 0 lets the engine choose.
	Window int

	// Compare runs exptmod through every registered strategy and checks
	// that they agree.
	Compare bool
	// TUI shows the comparison in an interactive dashboard.
	TUI bool
	// REPL starts the interactive register machine.
	REPL bool
	// Serve starts the HTTP service on Addr.
	Serve bool
	Addr  string

	Calibrate          bool
	CalibrationProfile string

	ConfigFile string
	EnvFile    string
	Timeout    time.Duration
	Quiet      bool
	Verbose    bool
	NoColor    bool
	OutputFile string
	LogLevel   string
	Completion string
}

// ExptOptions converts the reduction and window settings for the engine.
func (c AppConfig) ExptOptions() (mp.ExptOptions, error) {
	red, err := mp.ParseReduction(strings.ToLower(c.Reduction))
	if err != nil {
		return mp.ExptOptions{}, err
	}
	return mp.ExptOptions{Reduction: red, WindowBits: c.Window}, nil
}

// NeedsOperands reports whether the run evaluates a single command-line
// expression, as opposed to an interactive, service or calibration mode.
func (c AppConfig) NeedsOperands() bool {
	return !c.REPL && !c.Serve && !c.Calibrate && c.Completion == ""
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableOps: The operation names accepted for Op.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate(availableOps []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Radix < mp.MinRadix || c.Radix > mp.MaxRadix {
		return apperrors.NewConfigError("--radix must be between %d and %d, got %d", mp.MinRadix, mp.MaxRadix, c.Radix)
	}
	if c.InputRadix != 0 && (c.InputRadix < mp.MinRadix || c.InputRadix > mp.MaxRadix) {
		return apperrors.NewConfigError("--input-radix must be 0 or between %d and %d, got %d", mp.MinRadix, mp.MaxRadix, c.InputRadix)
	}
	if c.Window < 0 || c.Window > mp.MaxWindowBits {
		return apperrors.NewConfigError("--window must be between 0 and %d, got %d", mp.MaxWindowBits, c.Window)
	}
	if _, err := c.ExptOptions(); err != nil {
		return apperrors.NewConfigError("--reduction: %v", err)
	}
	if c.D > uint64(^uint32(0)) {
		return apperrors.NewConfigError("-d must fit in 32 bits, got %d", c.D)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("--log-level: %v", err)
	}
	if c.REPL && c.Serve {
		return apperrors.NewConfigError("--repl and --serve are mutually exclusive")
	}
	if !c.NeedsOperands() {
		return nil
	}
	if !slices.Contains(availableOps, strings.ToLower(c.Op)) {
		return apperrors.NewConfigError("unknown operation %q (available: %s)", c.Op, strings.Join(availableOps, ", "))
	}
	if c.A == "" {
		return apperrors.NewConfigError("-a is required for --op %s", c.Op)
	}
	if c.Compare && strings.ToLower(c.Op) != "exptmod" {
		return apperrors.NewConfigError("--compare only applies to --op exptmod")
	}
	if c.TUI && strings.ToLower(c.Op) != "exptmod" {
		return apperrors.NewConfigError("--tui only applies to --op exptmod")
	}
	return nil
}

// ParseConfig parses the command-line arguments, applies the config file and
// environment overrides, and validates the result.
//
// Parameters:
//   - programName: The name of the program (usually os.Args[0]).
//   - args: The command-line arguments (usually os.Args[1:]).
//   - errorWriter: Destination for usage and parse errors.
//   - availableOps: The valid operation names for --op.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp when help was requested, or a ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableOps []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.Op, "op", DefaultOp, fmt.Sprintf("Operation to evaluate (%s).", strings.Join(availableOps, ", ")))
	fs.StringVar(&config.A, "a", "", "First operand.")
	fs.StringVar(&config.B, "b", "", "Second operand (exponent for exptmod).")
	fs.StringVar(&config.M, "m", "", "Modulus.")
	fs.Uint64Var(&config.D, "d", 0, "Single-digit operand, or bit count for mul2d/div2d/mod2d.")
	fs.IntVar(&config.InputRadix, "input-radix", 0, "Radix of the operands (0 accepts 0x, 0b and 0o prefixes).")
	fs.IntVar(&config.Radix, "radix", 10, "Radix of the printed result (2..64).")
	fs.StringVar(&config.Reduction, "reduction", mp.ReductionAuto.String(), "exptmod reduction: "+strings.Join(mp.ReductionNames(), ", ")+".")
	fs.IntVar(&config.Window, "window", 0, "exptmod sliding-window width in bits (0 picks it from the exponent).")
	fs.BoolVar(&config.Compare, "compare", false, "Run exptmod with every strategy and compare the results.")
	fs.BoolVar(&config.TUI, "tui", false, "Show the strategy comparison in an interactive dashboard.")
	fs.BoolVar(&config.REPL, "repl", false, "Start the interactive register REPL.")
	fs.BoolVar(&config.Serve, "serve", false, "Start the HTTP evaluation service.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Listen address for --serve.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Time each reduction and store the fastest per modulus size.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Calibration profile path (default ~/.mpcalc_calibration.toml).")
	fs.StringVar(&config.ConfigFile, "config", "", "TOML configuration file.")
	fs.StringVar(&config.EnvFile, "env-file", DefaultEnvFile, "dotenv file loaded before reading MPCALC_* variables.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of an evaluation.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print only the result.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print the full value and timing details.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.OutputFile, "output", "", "Write the result to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error, disabled).")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish, powershell).")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}

	if err := loadEnvFile(config.EnvFile, flagGiven(fs, "env-file")); err != nil {
		return AppConfig{}, err
	}

	path := config.ConfigFile
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		fileCfg.apply(&config, fs)
		config.ConfigFile = path
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}

	if err := config.Validate(availableOps); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}
