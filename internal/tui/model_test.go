package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
)

// fixedStrategy answers every exptmod with the same value or error.
type fixedStrategy struct {
	name  string
	value int64
	err   error
}

func (s fixedStrategy) Name() string { return s.name }

func (s fixedStrategy) ExptMod(context.Context, *mp.Int, *mp.Int, *mp.Int) (*mp.Int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return mp.FromInt64(s.value), nil
}

func newTestModel() Model {
	strategies := []orchestration.Strategy{
		fixedStrategy{name: "montgomery", value: 445},
		fixedStrategy{name: "barrett", value: 445},
		fixedStrategy{name: "dr", err: mp.ErrValue},
	}
	in := orchestration.Inputs{G: mp.FromInt64(4), X: mp.FromInt64(13), P: mp.FromInt64(497)}
	return NewModel(context.Background(), strategies, in, Options{Version: "v1.2.3"})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleResults() []orchestration.CalculationResult {
	return []orchestration.CalculationResult{
		{Name: "barrett", Result: mp.FromInt64(445), Duration: 2 * time.Millisecond},
		{Name: "montgomery", Result: mp.FromInt64(445), Duration: 3 * time.Millisecond},
		{Name: "dr", Err: mp.ErrValue},
	}
}

func TestNewModelRows(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	for _, row := range m.rows {
		if row.status != StatusRunning || row.progress != 0 {
			t.Errorf("row %s starts as %+v", row.name, row)
		}
	}
	view := m.View()
	for _, want := range []string{"mpcalc exptmod comparison", "v1.2.3", "modulus 9 bits", "montgomery", "RUN", "Running..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}
}

func TestProgressUpdatesRow(t *testing.T) {
	m := newTestModel()
	defer m.cancel()

	m, _ = update(t, m, ProgressMsg{StrategyIndex: 1, Value: 0.5})
	if m.rows[1].progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", m.rows[1].progress)
	}
	m, _ = update(t, m, ProgressMsg{StrategyIndex: 0, Value: 3})
	if m.rows[0].progress != 1 {
		t.Errorf("progress is not clamped: %v", m.rows[0].progress)
	}
	// Out of range and stale updates are dropped.
	m, _ = update(t, m, ProgressMsg{StrategyIndex: 7, Value: 0.5})
	m, _ = update(t, m, ProgressMsg{StrategyIndex: 2, Value: 0.5, Generation: 9})
	if m.rows[2].progress != 0 {
		t.Errorf("stale update applied: %v", m.rows[2].progress)
	}
	if !strings.Contains(m.View(), "50%") {
		t.Errorf("view does not show 50%%:\n%s", m.View())
	}
}

func TestResultsComplete(t *testing.T) {
	m := newTestModel()
	defer m.cancel()

	m, _ = update(t, m, ComparisonResultsMsg{Results: sampleResults()})
	m, _ = update(t, m, FinalResultMsg{Result: sampleResults()[0]})
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess})

	if !m.done || m.ExitCode() != apperrors.ExitSuccess {
		t.Errorf("done = %v, exit = %d", m.done, m.ExitCode())
	}
	if m.rows[0].status != StatusComplete || m.rows[0].duration != 3*time.Millisecond || m.rows[0].progress != 1 {
		t.Errorf("montgomery row = %+v", m.rows[0])
	}
	if m.rows[2].status != StatusError {
		t.Errorf("dr row = %+v", m.rows[2])
	}
	view := m.View()
	for _, want := range []string{"Global Status: Success", "Fastest: barrett", "Value:   445", "OK", "ERR"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}

	// Selecting the failed row shows its result code.
	m, _ = update(t, m, keyMsg("down"))
	m, _ = update(t, m, keyMsg("down"))
	m, _ = update(t, m, keyMsg("down"))
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	if !strings.Contains(m.View(), "dr: "+mp.ErrorToString(mp.ErrVal)) {
		t.Errorf("selected error row not described:\n%s", m.View())
	}
	m, _ = update(t, m, keyMsg("up"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestResultsInconsistent(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	results := sampleResults()
	results[1].Result = mp.FromInt64(1)
	m, _ = update(t, m, ComparisonResultsMsg{Results: results})
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorMismatch})
	if m.consistent {
		t.Error("disagreeing results reported as consistent")
	}
	if view := m.View(); !strings.Contains(view, "CRITICAL ERROR") {
		t.Errorf("view:\n%s", view)
	}
	if m.ExitCode() != apperrors.ExitErrorMismatch {
		t.Errorf("exit = %d", m.ExitCode())
	}
}

func TestResultsAllFailed(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	failed := []orchestration.CalculationResult{{Name: "dr", Err: mp.ErrValue}}
	m, _ = update(t, m, ComparisonResultsMsg{Results: failed})
	m, _ = update(t, m, ErrorMsg{Err: mp.ErrValue})
	view := m.View()
	if !strings.Contains(view, "Global Status: Failure") || !strings.Contains(view, mp.ErrorToString(mp.ErrVal)) {
		t.Errorf("view:\n%s", view)
	}
}

func TestDetailsToggleShowsFullValue(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	digits := strings.Repeat("1234567890", 10)
	var long mp.Int
	if err := long.ReadRadix(digits, 10); err != nil {
		t.Fatal(err)
	}
	res := orchestration.CalculationResult{Name: "barrett", Result: &long, Duration: time.Millisecond}
	m, _ = update(t, m, ComparisonResultsMsg{Results: []orchestration.CalculationResult{res}})
	m, _ = update(t, m, FinalResultMsg{Result: res})

	if strings.Contains(m.View(), digits) {
		t.Error("value should be truncated by default")
	}
	m, _ = update(t, m, keyMsg("d"))
	if !strings.Contains(m.View(), digits) {
		t.Errorf("full value missing after toggling details:\n%s", m.View())
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	if m.help.ShowAll {
		t.Fatal("full help shown by default")
	}
	m, _ = update(t, m, keyMsg("?"))
	if !m.help.ShowAll {
		t.Error("? did not expand the help")
	}
	if !strings.Contains(m.View(), "run again") {
		t.Errorf("help is missing from the view:\n%s", m.View())
	}
}

func TestQuitCancelsRun(t *testing.T) {
	m := newTestModel()
	_, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit did not return tea.Quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quit did not cancel the run context")
	}
}

func TestRerunStartsNewGeneration(t *testing.T) {
	m := newTestModel()
	defer func() { m.cancel() }()
	m, _ = update(t, m, ComparisonResultsMsg{Results: sampleResults()})
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess})
	oldCtx := m.ctx

	m, cmd := update(t, m, keyMsg("r"))
	if cmd == nil || m.generation != 1 || m.done || m.results != nil {
		t.Fatalf("rerun state: gen=%d done=%v results=%v", m.generation, m.done, m.results)
	}
	if oldCtx.Err() == nil {
		t.Error("rerun did not cancel the previous run")
	}
	for _, row := range m.rows {
		if row.status != StatusRunning || row.progress != 0 {
			t.Errorf("row %s not reset: %+v", row.name, row)
		}
	}

	// Messages of the previous run are ignored.
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitErrorMismatch, Generation: 0})
	m, _ = update(t, m, ContextCancelledMsg{Err: context.Canceled, Generation: 0})
	if m.done {
		t.Error("stale message ended the new run")
	}
}

func TestContextCancelled(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.DeadlineExceeded})
	if !m.done || m.ExitCode() != apperrors.ExitErrorTimeout {
		t.Errorf("done = %v, exit = %d", m.done, m.ExitCode())
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}

	// A finished run keeps its result when the context ends later.
	m = newTestModel()
	defer m.cancel()
	m, _ = update(t, m, CalculationCompleteMsg{ExitCode: apperrors.ExitSuccess})
	m, cmd = update(t, m, ContextCancelledMsg{Err: context.Canceled})
	if cmd != nil || m.ExitCode() != apperrors.ExitSuccess {
		t.Errorf("finished run changed by cancellation: exit = %d", m.ExitCode())
	}
}

func TestTickAndSysStats(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	m, cmd := update(t, m, TickMsg(time.Now()))
	if cmd == nil {
		t.Error("a running dashboard should keep ticking")
	}
	m, _ = update(t, m, SysStatsMsg{CPUPercent: 12, MemPercent: 34})
	if view := m.View(); !strings.Contains(view, "cpu 12%") || !strings.Contains(view, "mem 34%") {
		t.Errorf("view:\n%s", view)
	}
	m, _ = update(t, m, CalculationCompleteMsg{})
	if _, cmd = update(t, m, TickMsg(time.Now())); cmd != nil {
		t.Error("a finished dashboard should stop ticking")
	}
}

func TestWindowSize(t *testing.T) {
	m := newTestModel()
	defer m.cancel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.width != 100 || m.help.Width != 100 {
		t.Errorf("width = %d, help width = %d", m.width, m.help.Width)
	}
}
