package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders a duration with a unit suited to its
// magnitude: whole nanoseconds, microseconds or milliseconds below one
// second, and time.Duration notation rounded to the millisecond above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// FormatRate renders how many operations per second ops in d amounts to,
// for example "12.3k/s".
func FormatRate(ops int, d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	rate := float64(ops) / d.Seconds()
	switch {
	case rate >= 1e6:
		return fmt.Sprintf("%.1fM/s", rate/1e6)
	case rate >= 1e3:
		return fmt.Sprintf("%.1fk/s", rate/1e3)
	}
	return fmt.Sprintf("%.1f/s", rate)
}
