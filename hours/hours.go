// Package hours reduces a user's raw clock events to worked time.
//
// Events are sorted by timestamp and then read two at a time: (e[0], e[1]),
// (e[2], e[3]), ... A pair counts only when it is an "in" followed by an
// "out"; every other pair, and a trailing unpaired event, contributes
// nothing. Because pairing is positional, one stray duplicate shifts every
// later pair. That is the established behavior and is kept on purpose.
//
// Everything here is pure: no I/O, no clock reads, safe for concurrent use.
package hours

import (
	"slices"
	"time"

	"github.com/user/timemanager-go/domain"
)

// Summary is the aggregate for one user over one window.
type Summary struct {
	TotalHours        float64 `json:"totalHours"`
	WorkDays          int     `json:"workDays"`
	AverageDailyHours float64 `json:"averageDailyHours"`
}

// microsPerHour is the divisor used for all rounding; PostgreSQL timestamps
// carry microsecond precision, so nothing finer is ever stored.
const microsPerHour = int64(time.Hour / time.Microsecond)

// sortedCopy returns the events ordered by time. The sort is stable so
// simultaneous events keep their input order.
func sortedCopy(events []domain.ClockEvent) []domain.ClockEvent {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.ClockEvent) int {
		return a.Time.Compare(b.Time)
	})
	return sorted
}

// Worked sums the duration of every (in, out) pair.
func Worked(events []domain.ClockEvent) time.Duration {
	sorted := sortedCopy(events)

	var total time.Duration
	for i := 0; i+1 < len(sorted); i += 2 {
		in, out := sorted[i], sorted[i+1]
		if in.Status && !out.Status {
			total += out.Time.Sub(in.Time)
		}
	}
	return total
}

// hundredths converts a duration to hundredths of an hour, rounding half up.
// Integer arithmetic keeps 0.005 boundaries exact.
func hundredths(d time.Duration) int64 {
	us := d.Microseconds()
	if us <= 0 {
		return 0
	}
	return (us*100 + microsPerHour/2) / microsPerHour
}

// TotalHours returns the worked time in hours rounded to two decimals.
func TotalHours(events []domain.ClockEvent) float64 {
	return float64(hundredths(Worked(events))) / 100
}

// WorkDays counts the distinct UTC calendar dates among the events. An empty
// set counts as one day so the average is always defined.
func WorkDays(events []domain.ClockEvent) int {
	days := make(map[string]struct{}, len(events))
	for _, e := range events {
		days[e.Time.UTC().Format(time.DateOnly)] = struct{}{}
	}
	if len(days) == 0 {
		return 1
	}
	return len(days)
}

// Summarize computes total hours, work days and the daily average.
// The average is taken from the already rounded total, then rounded again.
func Summarize(events []domain.ClockEvent) Summary {
	total := hundredths(Worked(events))
	days := int64(WorkDays(events))

	// round(total / days) half up, still in hundredths.
	avg := (2*total + days) / (2 * days)

	return Summary{
		TotalHours:        float64(total) / 100,
		WorkDays:          int(days),
		AverageDailyHours: float64(avg) / 100,
	}
}
