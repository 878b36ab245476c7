package config

import (
	"flag"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/agbru/mpcalc/internal/errors"
)

// FileConfig is the TOML form of the settings that make sense to persist.
// Operands are deliberately absent.
//
//	op = "exptmod"
//	radix = 16
//	reduction = "montgomery"
//	timeout = "30s"
//
//	[server]
//	addr = ":9090"
type FileConfig struct {
	Op                 string `toml:"op"`
	InputRadix         int    `toml:"input_radix"`
	Radix              int    `toml:"radix"`
	Reduction          string `toml:"reduction"`
	Window             int    `toml:"window"`
	Timeout            string `toml:"timeout"`
	LogLevel           string `toml:"log_level"`
	NoColor            bool   `toml:"no_color"`
	Quiet              bool   `toml:"quiet"`
	Verbose            bool   `toml:"verbose"`
	CalibrationProfile string `toml:"calibration_profile"`
	Server             struct {
		Addr string `toml:"addr"`
	} `toml:"server"`

	timeout time.Duration
	md      toml.MetaData
}

// LoadFile decodes a TOML configuration file. Unknown keys and malformed
// durations are reported as ConfigError.
func LoadFile(path string) (*FileConfig, error) {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, apperrors.NewConfigError("reading config %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.NewConfigError("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, apperrors.NewConfigError("config %s: timeout: %v", path, err)
		}
		fc.timeout = d
	}
	fc.md = md
	return &fc, nil
}

// apply copies the keys present in the file onto config, skipping those whose
// flag was given on the command line.
func (fc *FileConfig) apply(config *AppConfig, fs *flag.FlagSet) {
	set := func(key string, flags ...string) bool {
		return fc.md.IsDefined(strings.Split(key, ".")...) && !flagGiven(fs, flags...)
	}
	if set("op", "op") {
		config.Op = fc.Op
	}
	if set("input_radix", "input-radix") {
		config.InputRadix = fc.InputRadix
	}
	if set("radix", "radix") {
		config.Radix = fc.Radix
	}
	if set("reduction", "reduction") {
		config.Reduction = fc.Reduction
	}
	if set("window", "window") {
		config.Window = fc.Window
	}
	if set("timeout", "timeout") {
		config.Timeout = fc.timeout
	}
	if set("log_level", "log-level") {
		config.LogLevel = fc.LogLevel
	}
	if set("no_color", "no-color") {
		config.NoColor = fc.NoColor
	}
	if set("quiet", "quiet", "q") {
		config.Quiet = fc.Quiet
	}
	if set("verbose", "verbose", "v") {
		config.Verbose = fc.Verbose
	}
	if set("calibration_profile", "calibration-profile") {
		config.CalibrationProfile = fc.CalibrationProfile
	}
	if set("server.addr", "addr") {
		config.Addr = fc.Server.Addr
	}
}
