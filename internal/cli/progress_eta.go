package cli

import (
	"fmt"
	"time"
)

// FormatETA renders an estimated remaining time. Unknown or non-positive
// estimates render as "--".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "--"
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(eta.Minutes()), int(eta.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(eta.Hours()), int(eta.Minutes())%60)
}

// FormatProgressBarWithETA renders "[bar]  42.0% ETA 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	progress = min(max(progress, 0), 1)
	return fmt.Sprintf("[%s] %5.1f%% ETA %s", progressBar(progress, width), progress*100, FormatETA(eta))
}
