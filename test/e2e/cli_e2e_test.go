package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestCLI_E2E builds the binary and checks its output and exit codes.
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	tmpDir := t.TempDir()
	binName := "mpcalc"
	if runtime.GOOS == "windows" {
		binName = "mpcalc.exe"
	}
	binPath := filepath.Join(tmpDir, binName)

	// go test runs in the package directory, so build from the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/mpcalc")
	cmd.Dir = filepath.Join("..", "..")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build mpcalc: %v", err)
	}

	profile := filepath.Join(tmpDir, "profile.toml")
	tests := []struct {
		name     string
		args     []string
		wantOut  string // case-insensitive substring
		wantCode int
	}{
		{"exptmod", []string{"-a", "4", "-b", "13", "-m", "497"}, "Value:      445", 0},
		{"quiet", []string{"--op", "mul", "-a", "123456789", "-b", "987654321", "-q"}, "121932631112635269", 0},
		{"hex", []string{"--op", "sqr", "-a", "0xffff", "--radix", "16", "-q"}, "FFFE0001", 0},
		{"comparison", []string{"--compare", "-a", "2", "-b", "100", "-m", "1000000007"}, "all valid results are consistent", 0},
		{"help", []string{"--help"}, "usage", 0},
		{"version", []string{"--version"}, "mpcalc", 0},
		{"completion", []string{"--completion", "fish"}, "complete -c mpcalc", 0},
		{"unknown op", []string{"--op", "pow", "-a", "2"}, "unknown operation", 4},
		{"zero modulus", []string{"-a", "4", "-b", "13", "-m", "0"}, "Value out of range", 5},
		{"division by zero", []string{"--op", "div", "-a", "1", "-b", "0", "-q"}, "Value out of range", 5},
		{"repl", []string{"--repl"}, "Goodbye", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--calibration-profile", profile}, tt.args...)
			cmd := exec.Command(binPath, args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			cmd.Stdin = strings.NewReader("set a 5\nshow a\n")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", code, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}
