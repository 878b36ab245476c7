package calibration

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/agbru/mpcalc/internal/mp"
)

const (
	// CurrentProfileVersion is bumped whenever the profile layout changes.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is the profile file name in the home directory.
	DefaultProfileFileName = ".mpcalc_calibration.toml"
	// DefaultStaleAfter is the age after which a profile is refreshed.
	DefaultStaleAfter = 30 * 24 * time.Hour
)

// SizeEntry records the timings of one modulus size.
type SizeEntry struct {
	Bits int `toml:"bits"`
	// Best is the name of the fastest reduction.
	Best string `toml:"best"`
	// Nanos maps each reduction name to the mean duration of one exptmod.
	Nanos map[string]int64 `toml:"nanos"`
}

// CalibrationProfile is the persisted outcome of a calibration run.
type CalibrationProfile struct {
	ProfileVersion int       `toml:"profile_version"`
	NumCPU         int       `toml:"num_cpu"`
	GOARCH         string    `toml:"goarch"`
	GOOS           string    `toml:"goos"`
	GoVersion      string    `toml:"go_version"`
	WordSize       int       `toml:"word_size"`
	DigitBits      int       `toml:"digit_bits"`
	CPUModel       string    `toml:"cpu_model,omitempty"`
	CalibratedAt   time.Time `toml:"calibrated_at"`
	// CalibrationTime is the wall time of the run, as a duration string.
	CalibrationTime string      `toml:"calibration_time"`
	Sizes           []SizeEntry `toml:"sizes"`
}

// NewProfile returns an empty profile describing the current machine.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		DigitBits:      mp.DigitBit,
		CalibratedAt:   time.Now(),
	}
}

// IsValid reports whether the profile was produced on hardware matching the
// current machine, by the current format.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		p.DigitBits == mp.DigitBit
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// ReductionFor returns the fastest recorded reduction for a modulus of the
// given bit length. The entry of the smallest calibrated size not below bits
// is used, or the largest one for bigger moduli. Montgomery needs an odd
// modulus, so it is skipped when odd is false, and the DR and 2k timings are
// skipped because an arbitrary modulus does not have their shape. Without
// data the engine's own choice (ReductionAuto) is returned.
func (p *CalibrationProfile) ReductionFor(bits int, odd bool) mp.Reduction {
	return p.fastest(bits, func(red mp.Reduction) bool {
		switch red {
		case mp.ReductionDR, mp.Reduction2k:
			return false
		case mp.ReductionMontgomery:
			return odd
		}
		return true
	})
}

// ReductionForModulus is ReductionFor for a known modulus: every recorded
// reduction that supports m competes, the restricted ones included.
func (p *CalibrationProfile) ReductionForModulus(m *mp.Int) mp.Reduction {
	return p.fastest(m.CountBits(), func(red mp.Reduction) bool { return red.Supports(m) })
}

func (p *CalibrationProfile) fastest(bits int, accept func(mp.Reduction) bool) mp.Reduction {
	if p == nil || len(p.Sizes) == 0 {
		return mp.ReductionAuto
	}
	entry := p.Sizes[len(p.Sizes)-1]
	for _, e := range p.Sizes {
		if e.Bits >= bits {
			entry = e
			break
		}
	}

	best, bestNanos := mp.ReductionAuto, int64(-1)
	for name, nanos := range entry.Nanos {
		red, err := mp.ParseReduction(name)
		if err != nil || red == mp.ReductionAuto || !accept(red) {
			continue
		}
		if bestNanos < 0 || nanos < bestNanos || (nanos == bestNanos && red < best) {
			best, bestNanos = red, nanos
		}
	}
	return best
}

// String renders a one-line summary per size.
func (p *CalibrationProfile) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "calibration profile v%d (%s/%s, %d CPUs, %d-bit words, %d-bit digits, %s)\n",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU, p.WordSize, p.DigitBits, p.CalibratedAt.Format(time.RFC3339))
	for _, e := range p.Sizes {
		fmt.Fprintf(&b, "  %5d bits: %s\n", e.Bits, e.Best)
	}
	return b.String()
}

// SaveProfile writes the profile as TOML. The file is written to a temporary
// sibling first and renamed into place.
func (p *CalibrationProfile) SaveProfile(path string) error {
	slices.SortFunc(p.Sizes, func(a, b SizeEntry) int { return a.Bits - b.Bits })

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mpcalc_profile_*")
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(p); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	var p CalibrationProfile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", path, err)
	}
	slices.SortFunc(p.Sizes, func(a, b SizeEntry) int { return a.Bits - b.Bits })
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path when it exists and is valid
// for this machine. Otherwise it returns a fresh empty profile and false.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns ~/.mpcalc_calibration.toml, or the file in
// the working directory when the home directory is unknown.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}
