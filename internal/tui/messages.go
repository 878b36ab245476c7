package tui

import (
	"time"

	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/sysmon"
)

// Messages carrying a Generation belong to one run; the model drops those
// of an earlier run after a restart.

// ProgressMsg reports the progress of one strategy.
type ProgressMsg struct {
	StrategyIndex   int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Generation      uint64
}

// ComparisonResultsMsg carries every strategy result, sorted fastest first.
type ComparisonResultsMsg struct {
	Results    []orchestration.CalculationResult
	Generation uint64
}

// FinalResultMsg carries the value the strategies agreed on.
type FinalResultMsg struct {
	Result     orchestration.CalculationResult
	Generation uint64
}

// ErrorMsg reports that no strategy completed.
type ErrorMsg struct {
	Err        error
	Duration   time.Duration
	Generation uint64
}

// CalculationCompleteMsg ends a run with its exit code.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg reports that the run context ended.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}

// TickMsg refreshes the elapsed time and the host sample.
type TickMsg time.Time

// SysStatsMsg carries a host CPU and memory sample.
type SysStatsMsg sysmon.Stats
