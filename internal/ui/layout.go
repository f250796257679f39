package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutFlagsWidth is the minimum width to show intake flags in the queue.
	LayoutFlagsWidth = 120
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read for the logs page.
	LogTailLines = 400
)

// Timing constants.
const (
	// StatusMessageTTL is how long a status line message stays visible.
	StatusMessageTTL = 3 * time.Second

	// DefaultUIInterval is how often the UI re-reads the store.
	DefaultUIInterval = time.Second

	// MinSearchLength is the shortest accepted search term.
	MinSearchLength = 2
)

// analyticsWindows are the day ranges the analytics page cycles through.
var analyticsWindows = []int{7, 30, 90}

func nextWindow(days int) int {
	for i, d := range analyticsWindows {
		if d == days {
			return analyticsWindows[(i+1)%len(analyticsWindows)]
		}
	}
	return analyticsWindows[0]
}
