package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/mpcalc/internal/calibration"
	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/mp"
)

// newApp builds an application with a profile path that does not exist, so
// that a profile in the home directory never leaks into the tests.
func newApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errOut bytes.Buffer
	full := append([]string{"mpcalc", "--no-color", "--calibration-profile", filepath.Join(t.TempDir(), "none.toml")}, args...)
	a, err := New(full, &errOut, WithLogger(logging.Nop()))
	require.NoError(t, err, errOut.String())
	return a, &errOut
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	a, errOut := newApp(t, args...)
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)
	return code, out.String(), errOut.String()
}

func TestNew_Errors(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		_, err := New([]string{"mpcalc", "--help"}, &bytes.Buffer{})
		assert.True(t, IsHelpError(err))
	})
	t.Run("unknown operation", func(t *testing.T) {
		var errOut bytes.Buffer
		_, err := New([]string{"mpcalc", "--op", "pow", "-a", "1"}, &errOut)
		require.Error(t, err)
		assert.False(t, IsHelpError(err))
		assert.Equal(t, apperrors.ExitErrorConfig, apperrors.ExitCodeFor(err))
		assert.Contains(t, errOut.String(), "unknown operation")
	})
}

func TestRun_Eval(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"exptmod", []string{"-a", "4", "-b", "13", "-m", "497", "-q"}, apperrors.ExitSuccess, "445\n"},
		{"forced reduction", []string{"-a", "4", "-b", "13", "-m", "497", "--reduction", "division", "-q"}, apperrors.ExitSuccess, "445\n"},
		{"div", []string{"--op", "div", "-a", "-7", "-b", "2", "-q"}, apperrors.ExitSuccess, "-3 -1\n"},
		{"cmp", []string{"--op", "cmp", "-a", "2", "-b", "10", "-q"}, apperrors.ExitSuccess, "LT\n"},
		{"hex output", []string{"--op", "mul2d", "-a", "1", "-d", "8", "--radix", "16", "-q"}, apperrors.ExitSuccess, "100\n"},
		{"binary input", []string{"--op", "addd", "-a", "1010", "-d", "1", "--input-radix", "2", "-q"}, apperrors.ExitSuccess, "11\n"},
		{"zero modulus", []string{"-a", "4", "-b", "13", "-m", "0", "-q"}, apperrors.ExitErrorEngine, ""},
		{"bad operand", []string{"--op", "sqr", "-a", "12x", "-q"}, apperrors.ExitErrorConfig, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := run(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestRun_EvalEngineErrorMessage(t *testing.T) {
	code, _, errOut := run(t, "--op", "invmod", "-a", "4", "-b", "8", "-q")
	assert.Equal(t, apperrors.ExitErrorEngine, code)
	assert.Contains(t, errOut, "Value out of range")
}

func TestRun_EvalTimeout(t *testing.T) {
	code, _, errOut := run(t, "--op", "mul", "-a", "3", "-b", "5", "--timeout", "1ns", "-q")
	assert.Equal(t, apperrors.ExitErrorTimeout, code)
	assert.Contains(t, errOut, `operation "mul" timed out after 1ns`)
}

func TestRun_EvalVerbose(t *testing.T) {
	code, out, _ := run(t, "--op", "exptd", "-a", "2", "-d", "100", "-v")
	require.Equal(t, apperrors.ExitSuccess, code)
	assert.Contains(t, out, "--- Execution Configuration ---")
	assert.Contains(t, out, "1267650600228229401496703205376")
	assert.Contains(t, out, "Memory Stats:")
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.txt")
	code, out, _ := run(t, "-a", "4", "-b", "13", "-m", "497", "-o", path)
	require.Equal(t, apperrors.ExitSuccess, code)
	assert.Contains(t, out, "Result saved to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Operation: exptmod")
	assert.True(t, strings.HasSuffix(string(data), "\n445\n"))
}

func TestRun_Compare(t *testing.T) {
	t.Run("quiet", func(t *testing.T) {
		code, out, _ := run(t, "--compare", "-a", "2", "-b", "100", "-m", "1000000007", "-q")
		assert.Equal(t, apperrors.ExitSuccess, code)
		assert.Equal(t, "976371285\n", out)
	})
	t.Run("summary", func(t *testing.T) {
		code, out, _ := run(t, "--compare", "-a", "4", "-b", "13", "-m", "497")
		assert.Equal(t, apperrors.ExitSuccess, code)
		assert.Contains(t, out, "--- Comparison Summary ---")
		assert.Contains(t, out, "montgomery")
		assert.Contains(t, out, "bigint")
		assert.Contains(t, out, "2k", "497 fits one digit, so the 2k strategy runs")
		assert.Contains(t, out, "All valid results are consistent")
		assert.Contains(t, out, "445")
	})
	t.Run("even modulus", func(t *testing.T) {
		// montgomery rejects the modulus, the others agree
		code, out, _ := run(t, "--compare", "-a", "3", "-b", "5", "-m", "100")
		assert.Equal(t, apperrors.ExitSuccess, code)
		assert.Contains(t, out, "Value out of range")
		assert.Contains(t, out, "43")
	})
	t.Run("tui rejects a bad operand before starting", func(t *testing.T) {
		code, _, errOut := run(t, "--tui", "-a", "4", "-b", "13", "-m", "49z")
		assert.Equal(t, apperrors.ExitErrorConfig, code)
		assert.Contains(t, errOut, "cannot parse")
	})
}

func TestRun_REPL(t *testing.T) {
	var errOut bytes.Buffer
	a, err := New([]string{"mpcalc", "--repl", "--no-color", "--radix", "16"}, &errOut,
		WithLogger(logging.Nop()),
		WithInput(strings.NewReader("set a 255\nshow a\nexit\n")))
	require.NoError(t, err)

	var out bytes.Buffer
	assert.Equal(t, apperrors.ExitSuccess, a.Run(context.Background(), &out))
	assert.Contains(t, out.String(), "a = FF")
}

func TestRun_Completion(t *testing.T) {
	code, out, _ := run(t, "--completion", "bash")
	assert.Equal(t, apperrors.ExitSuccess, code)
	assert.Contains(t, out, "exptmod")

	code, _, errOut := run(t, "--completion", "tcsh")
	assert.Equal(t, apperrors.ExitErrorConfig, code)
	assert.Contains(t, errOut, "unsupported shell")
}

func TestCalibratedReduction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	p := calibration.NewProfile()
	p.Sizes = []calibration.SizeEntry{{
		Bits:  64,
		Best:  "division",
		Nanos: map[string]int64{"barrett": 300, "montgomery": 200, "division": 100, "2k": 50, "dr": 10},
	}}
	require.NoError(t, p.SaveProfile(path))

	newWith := func(args ...string) *Application {
		a, err := New(append([]string{"mpcalc", "--calibration-profile", path}, args...), &bytes.Buffer{}, WithLogger(logging.Nop()))
		require.NoError(t, err)
		return a
	}

	// 497 fits one digit, so 2k applies but DR does not.
	a := newWith("-a", "4", "-b", "13", "-m", "497")
	require.NotNil(t, a.Profile)
	assert.Equal(t, mp.Reduction2k.String(), a.request().Reduction)

	a = newWith("-a", "4", "-b", "13", "-m", "100000000000000000000")
	assert.Equal(t, mp.ReductionDivision.String(), a.request().Reduction)

	a = newWith("-a", "4", "-b", "13", "-m", "497", "--reduction", "barrett")
	assert.Equal(t, "barrett", a.request().Reduction)

	a = newWith("--op", "add", "-a", "4", "-b", "13")
	assert.Equal(t, "auto", a.request().Reduction)
}

func TestVersion(t *testing.T) {
	assert.True(t, HasVersionFlag([]string{"-q", "--version"}))
	assert.True(t, HasVersionFlag([]string{"-V"}))
	assert.False(t, HasVersionFlag([]string{"-v"}))

	var out bytes.Buffer
	PrintVersion(&out)
	assert.True(t, strings.HasPrefix(out.String(), "mpcalc "+Version+" "))
}
