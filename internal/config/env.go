package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/agbru/mpcalc/internal/errors"
)

// flagGiven reports whether any of names was set on the command line.
func flagGiven(fs *flag.FlagSet, names ...string) bool {
	given := false
	fs.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				given = true
			}
		}
	})
	return given
}

// loadEnvFile loads a dotenv file without overriding variables already in
// the environment. A missing file is only an error when the path was given
// explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || (errors.Is(err, os.ErrNotExist) && !explicit) {
		return nil
	}
	return apperrors.NewConfigError("loading env file %s: %v", path, err)
}

// envVar binds MPCALC_<key> to the flags it stands in for.
type envVar struct {
	key   string
	flags []string
	set   func(*AppConfig, string) error
}

func stringVar(field func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		*field(c) = v
		return nil
	}
}

func intVar(field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("not an integer")
		}
		*field(c) = n
		return nil
	}
}

func boolVar(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		b, ok := parseBool(v)
		if !ok {
			return errors.New("not a boolean")
		}
		*field(c) = b
		return nil
	}
}

var envVars = []envVar{
	{"OP", []string{"op"}, stringVar(func(c *AppConfig) *string { return &c.Op })},
	{"A", []string{"a"}, stringVar(func(c *AppConfig) *string { return &c.A })},
	{"B", []string{"b"}, stringVar(func(c *AppConfig) *string { return &c.B })},
	{"M", []string{"m"}, stringVar(func(c *AppConfig) *string { return &c.M })},
	{"D", []string{"d"}, func(c *AppConfig, v string) error {
		d, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.New("not a 32-bit unsigned integer")
		}
		c.D = d
		return nil
	}},
	{"INPUT_RADIX", []string{"input-radix"}, intVar(func(c *AppConfig) *int { return &c.InputRadix })},
	{"RADIX", []string{"radix"}, intVar(func(c *AppConfig) *int { return &c.Radix })},
	{"WINDOW", []string{"window"}, intVar(func(c *AppConfig) *int { return &c.Window })},
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("not a duration")
		}
		c.Timeout = d
		return nil
	}},
	{"REDUCTION", []string{"reduction"}, stringVar(func(c *AppConfig) *string { return &c.Reduction })},
	{"ADDR", []string{"addr"}, stringVar(func(c *AppConfig) *string { return &c.Addr })},
	{"OUTPUT", []string{"output", "o"}, stringVar(func(c *AppConfig) *string { return &c.OutputFile })},
	{"CALIBRATION_PROFILE", []string{"calibration-profile"}, stringVar(func(c *AppConfig) *string { return &c.CalibrationProfile })},
	{"LOG_LEVEL", []string{"log-level"}, stringVar(func(c *AppConfig) *string { return &c.LogLevel })},
	{"QUIET", []string{"quiet", "q"}, boolVar(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", []string{"verbose", "v"}, boolVar(func(c *AppConfig) *bool { return &c.Verbose })},
	{"NO_COLOR", []string{"no-color"}, boolVar(func(c *AppConfig) *bool { return &c.NoColor })},
	{"COMPARE", []string{"compare"}, boolVar(func(c *AppConfig) *bool { return &c.Compare })},
	{"TUI", []string{"tui"}, boolVar(func(c *AppConfig) *bool { return &c.TUI })},
}

// parseBool accepts true/false, 1/0 and yes/no in any case.
func parseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// applyEnvOverrides copies non-empty MPCALC_* variables into config for
// every flag the command line left alone. A value that does not parse is a
// ConfigError naming the variable.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, v := range envVars {
		if flagGiven(fs, v.flags...) {
			continue
		}
		val := os.Getenv(EnvPrefix + v.key)
		if val == "" {
			continue
		}
		if err := v.set(config, val); err != nil {
			return apperrors.NewConfigError("%s%s=%q: %v", EnvPrefix, v.key, val, err)
		}
	}
	return nil
}
