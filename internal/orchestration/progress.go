package orchestration

import (
	"sync"
	"time"
)

// ProgressAggregator averages the progress of several strategies and
// estimates the remaining time from the elapsed time.
type ProgressAggregator struct {
	mu         sync.Mutex
	progresses []float64
	start      time.Time
	now        func() time.Time
}

// NewProgressAggregator creates a new aggregator for the given number
// of strategies. Returns nil if numStrategies <= 0.
func NewProgressAggregator(numStrategies int) *ProgressAggregator {
	if numStrategies <= 0 {
		return nil
	}
	return &ProgressAggregator{
		progresses: make([]float64, numStrategies),
		start:      time.Now(),
		now:        time.Now,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// StrategyIndex is the index of the strategy that sent the update.
	StrategyIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all strategies.
	AverageProgress float64
	// ETA is the estimated time remaining.
	ETA time.Duration
}

// Update records a progress update and returns the aggregated result.
// Out-of-range indices are ignored.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	a.mu.Lock()
	if update.StrategyIndex >= 0 && update.StrategyIndex < len(a.progresses) {
		a.progresses[update.StrategyIndex] = min(max(update.Value, 0), 1)
	}
	a.mu.Unlock()
	return AggregatedProgress{
		StrategyIndex:   update.StrategyIndex,
		Value:           update.Value,
		AverageProgress: a.CalculateAverage(),
		ETA:             a.GetETA(),
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total float64
	for _, p := range a.progresses {
		total += p
	}
	return total / float64(len(a.progresses))
}

// GetETA extrapolates the remaining time linearly. It is 0 until some
// progress has been reported.
func (a *ProgressAggregator) GetETA() time.Duration {
	avg := a.CalculateAverage()
	if avg <= 0 || avg >= 1 {
		return 0
	}
	elapsed := a.now().Sub(a.start)
	return time.Duration(float64(elapsed) * (1 - avg) / avg)
}

// NumStrategies returns the number of strategies being tracked.
func (a *ProgressAggregator) NumStrategies() int {
	return len(a.progresses)
}

// IsMultiStrategy returns true if tracking more than one strategy.
func (a *ProgressAggregator) IsMultiStrategy() bool {
	return len(a.progresses) > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
