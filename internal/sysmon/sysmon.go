// Package sysmon samples system-wide CPU and memory usage for the health
// endpoint and the execution summary.
package sysmon

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent   float64 `json:"cpu_percent" msgpack:"cpu_percent"` // 0.0 .. 100.0
	MemPercent   float64 `json:"mem_percent" msgpack:"mem_percent"` // 0.0 .. 100.0
	MemTotal     uint64  `json:"mem_total" msgpack:"mem_total"`
	MemAvailable uint64  `json:"mem_available" msgpack:"mem_available"`
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext is Sample with a caller-supplied context bounding the
// underlying system queries.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	cpuPcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
		s.MemTotal = vmem.Total
		s.MemAvailable = vmem.Available
	}
	return s
}

// Host describes the processor the engine runs on.
type Host struct {
	ModelName     string
	PhysicalCores int
	LogicalCores  int
}

// DescribeHost reports the CPU model and core counts. Fields that cannot be
// read fall back to runtime values or stay empty.
func DescribeHost(ctx context.Context) Host {
	h := Host{LogicalCores: runtime.NumCPU()}
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.ModelName = infos[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil && n > 0 {
		h.PhysicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		h.LogicalCores = n
	}
	return h
}
