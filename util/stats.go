package util

import (
	"gonum.org/v1/gonum/floats"
	"math"
	"sort"
	"time"
)

// DurationStatistics represents statistics about measured durations.
// Comprises information about the mean and max as well as different
// percentiles (50, 95 and 99).
type DurationStatistics struct {
	Mean, Q50, Q95, Q99, Max time.Duration
}

// Calculates the DurationStatistics for a set of given durations in seconds.
// Sorts durations in place.
func CalculateDurationStatistics(durations []float64) DurationStatistics {
	if len(durations) == 0 {
		return DurationStatistics{}
	}

	sort.Float64s(durations)
	return DurationStatistics{
		Mean: secondsToDuration(floats.Sum(durations) / float64(len(durations))),
		Q50:  secondsToDuration(durations[len(durations)/2]),
		Q95:  secondsToDuration(durations[int(float32(len(durations))*0.95)]),
		Q99:  secondsToDuration(durations[int(float32(len(durations))*0.99)]),
		Max:  secondsToDuration(floats.Max(durations)),
	}
}

// Applying measures is fast, so microseconds are kept.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}

// FmtDurationHumanReadable takes a duration and returns it in a human readable form.
// This is basically equivalent to time.Duration.Round(time.Second) with the following differences:
//   - durations under a second get printed with microsecond precision
//   - durations under a minute get printed with millisecond precision
//   - durations equal or above a minute get printed with second precision
func FmtDurationHumanReadable(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Microsecond).String()
	} else if d.Milliseconds() < 60000 {
		return d.Round(time.Millisecond).String()
	} else {
		return d.Round(time.Second).String()
	}
}
