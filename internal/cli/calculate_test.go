package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/agbru/mpcalc/internal/config"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
)

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := config.AppConfig{Op: "ExptMod", Timeout: time.Minute, Reduction: "montgomery", Window: 4}

	PrintExecutionConfig(cfg, &buf)

	output := buf.String()
	for _, want := range []string{"--- Execution Configuration ---", "Evaluating exptmod", "1m0s", "28-bit digits", "reduction=montgomery", "window=4 bits", "logical processors"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestCPUFeaturesAreUnique(t *testing.T) {
	t.Parallel()
	features := CPUFeatures()
	sorted := slices.Clone(features)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != len(features) {
		t.Errorf("duplicate features: %v", features)
	}
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()
	registry := orchestration.DefaultStrategies(0)

	tests := []struct {
		name       string
		strategies []orchestration.Strategy
		want       string
	}{
		{"single", []orchestration.Strategy{orchestration.NewEngineStrategy(mp.ReductionBarrett, 0)}, "Single run with the barrett strategy"},
		{"multiple", orchestration.GetStrategiesToRun(true, "", registry), "Parallel comparison of"},
		{"none", nil, "No strategy selected"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		PrintExecutionMode(tt.strategies, &buf)
		if !strings.Contains(buf.String(), tt.want) || !strings.Contains(buf.String(), "--- Starting Execution ---") {
			t.Errorf("%s: output = %q", tt.name, buf.String())
		}
	}
}
