package metrics

import "runtime"

// MemorySnapshot is a reading of the Go allocator. Cumulative counters
// (TotalAlloc, Mallocs, NumGC, PauseTotalNs) only make sense as the
// difference of two readings, see Since.
type MemorySnapshot struct {
	HeapAlloc    uint64
	HeapObjects  uint64
	TotalAlloc   uint64
	Mallocs      uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot stops the world briefly to read the allocator statistics.
func (*MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapObjects:  m.HeapObjects,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Since returns the allocations and collections that happened between
// before and s. Heap figures are the current ones.
func (s MemorySnapshot) Since(before MemorySnapshot) MemorySnapshot {
	return MemorySnapshot{
		HeapAlloc:    s.HeapAlloc,
		HeapObjects:  s.HeapObjects,
		TotalAlloc:   s.TotalAlloc - before.TotalAlloc,
		Mallocs:      s.Mallocs - before.Mallocs,
		NumGC:        s.NumGC - before.NumGC,
		PauseTotalNs: s.PauseTotalNs - before.PauseTotalNs,
	}
}
