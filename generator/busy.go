package generator

import (
	"math"
	"time"
)

// SimulateLongTask occupies the calling goroutine until d has elapsed on the
// monotonic clock. The loop body does nothing; the point is to burn CPU
// without yielding. d <= 0 returns immediately.
func SimulateLongTask(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

// SimulateLongTaskMillis is SimulateLongTask for a float millisecond value.
// NaN and negative values return immediately. Values beyond the Duration
// range, +Inf included, spin for the maximum Duration.
func SimulateLongTaskMillis(ms float64) {
	SimulateLongTask(millisToDuration(ms))
}

func millisToDuration(ms float64) time.Duration {
	if math.IsNaN(ms) || ms <= 0 {
		return 0
	}
	ns := ms * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
