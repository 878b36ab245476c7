package orchestration

import (
	"testing"
	"time"
)

func TestNewProgressAggregator_Positive(t *testing.T) {
	agg := NewProgressAggregator(3)
	if agg == nil {
		t.Fatal("expected non-nil aggregator for numStrategies=3")
	}
	if agg.NumStrategies() != 3 {
		t.Errorf("expected NumStrategies()=3, got %d", agg.NumStrategies())
	}
	if !agg.IsMultiStrategy() {
		t.Error("expected IsMultiStrategy()=true for 3 strategies")
	}
}

func TestNewProgressAggregator_Single(t *testing.T) {
	agg := NewProgressAggregator(1)
	if agg == nil {
		t.Fatal("expected non-nil aggregator for numStrategies=1")
	}
	if agg.IsMultiStrategy() {
		t.Error("expected IsMultiStrategy()=false for 1 strategy")
	}
}

func TestNewProgressAggregator_NonPositive(t *testing.T) {
	for _, n := range []int{0, -1} {
		if agg := NewProgressAggregator(n); agg != nil {
			t.Errorf("expected nil aggregator for numStrategies=%d", n)
		}
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	agg := NewProgressAggregator(2)

	ap := agg.Update(ProgressUpdate{StrategyIndex: 0, Value: 0.5})
	if ap.StrategyIndex != 0 || ap.Value != 0.5 {
		t.Errorf("unexpected echo: %+v", ap)
	}
	// Average of [0.5, 0.0] = 0.25
	if ap.AverageProgress != 0.25 {
		t.Errorf("expected AverageProgress=0.25, got %f", ap.AverageProgress)
	}

	ap = agg.Update(ProgressUpdate{StrategyIndex: 1, Value: 0.5})
	if ap.AverageProgress != 0.5 {
		t.Errorf("expected AverageProgress=0.5, got %f", ap.AverageProgress)
	}

	ap = agg.Update(ProgressUpdate{StrategyIndex: 7, Value: 1})
	if ap.AverageProgress != 0.5 {
		t.Errorf("out-of-range index changed the average to %f", ap.AverageProgress)
	}
}

func TestProgressAggregator_CalculateAverage(t *testing.T) {
	agg := NewProgressAggregator(2)

	if avg := agg.CalculateAverage(); avg != 0.0 {
		t.Errorf("expected initial average=0.0, got %f", avg)
	}

	agg.Update(ProgressUpdate{StrategyIndex: 0, Value: 1.5})
	if avg := agg.CalculateAverage(); avg != 0.5 {
		t.Errorf("expected clamped average=0.5, got %f", avg)
	}
}

func TestProgressAggregator_GetETA(t *testing.T) {
	agg := NewProgressAggregator(1)
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("expected initial ETA=0, got %v", eta)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	agg.start = start
	agg.now = func() time.Time { return start.Add(10 * time.Second) }
	agg.Update(ProgressUpdate{StrategyIndex: 0, Value: 0.25})
	if eta := agg.GetETA(); eta != 30*time.Second {
		t.Errorf("expected ETA=30s, got %v", eta)
	}

	agg.Update(ProgressUpdate{StrategyIndex: 0, Value: 1})
	if eta := agg.GetETA(); eta != 0 {
		t.Errorf("expected ETA=0 when complete, got %v", eta)
	}
}

func TestDrainChannel(t *testing.T) {
	ch := make(chan ProgressUpdate, 5)
	ch <- ProgressUpdate{StrategyIndex: 0, Value: 0.1}
	ch <- ProgressUpdate{StrategyIndex: 0, Value: 0.2}
	close(ch)

	DrainChannel(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be drained")
	}
}
