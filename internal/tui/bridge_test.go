package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
)

func TestTUIProgressReporter_DrainsChannel(t *testing.T) {
	reporter := &TUIProgressReporter{ref: &programRef{}} // nil program: Send is a no-op

	ch := make(chan orchestration.ProgressUpdate, 10)
	for _, v := range []float64{0.25, 0.5, 1} {
		ch <- orchestration.ProgressUpdate{StrategyIndex: 0, Value: v}
	}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, ch, 1, nil)
	wg.Wait()
	if len(ch) != 0 {
		t.Errorf("%d updates left in the channel", len(ch))
	}
}

func TestTUIProgressReporter_ZeroStrategies(t *testing.T) {
	reporter := &TUIProgressReporter{ref: &programRef{}}
	ch := make(chan orchestration.ProgressUpdate, 1)
	ch <- orchestration.ProgressUpdate{StrategyIndex: 0, Value: 0.5}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, ch, 0, nil)
	wg.Wait()
}

func TestProgramRef_SendWithoutProgram(t *testing.T) {
	ref := &programRef{}
	ref.Send(ProgressMsg{Value: 0.5})
}

func TestTUIResultPresenter_HandleError(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, apperrors.ExitSuccess},
		{"timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"engine", mp.ErrValue, apperrors.ExitErrorEngine},
		{"generic", errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presenter.HandleError(tt.err, time.Second, nil); got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTUIResultPresenter_FormatDuration(t *testing.T) {
	presenter := &TUIResultPresenter{ref: &programRef{}}
	for _, d := range []time.Duration{0, 500 * time.Microsecond, 42 * time.Millisecond, 3 * time.Minute} {
		if presenter.FormatDuration(d) == "" {
			t.Errorf("empty rendering for %v", d)
		}
	}
}

func TestStartComparisonCmd(t *testing.T) {
	registry := orchestration.DefaultStrategies(0)
	var strategies []orchestration.Strategy
	for _, name := range []string{"montgomery", "barrett", "bigint"} {
		s, err := registry.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		strategies = append(strategies, s)
	}
	in := orchestration.Inputs{G: mp.FromInt64(4), X: mp.FromInt64(13), P: mp.FromInt64(497), Rounds: 2}

	msg := startComparisonCmd(&programRef{}, context.Background(), strategies, in, Options{}, 3)()
	done, ok := msg.(CalculationCompleteMsg)
	if !ok {
		t.Fatalf("got %T, want CalculationCompleteMsg", msg)
	}
	if done.ExitCode != apperrors.ExitSuccess || done.Generation != 3 {
		t.Errorf("got %+v", done)
	}

	strategies = append(strategies, fixedStrategy{name: "broken", value: 1})
	msg = startComparisonCmd(&programRef{}, context.Background(), strategies, in, Options{}, 4)()
	if done := msg.(CalculationCompleteMsg); done.ExitCode != apperrors.ExitErrorMismatch {
		t.Errorf("mismatch exit code = %d, want %d", done.ExitCode, apperrors.ExitErrorMismatch)
	}
}
