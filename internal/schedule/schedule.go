// internal/schedule/schedule.go
package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange   = errors.New("start date is after end date")
	ErrInvalidWeekday = errors.New("unrecognized weekday name")
)

// DayKeyFormat identifies a session at day granularity. All date
// comparisons in the ledger go through this key, pinned to UTC.
const DayKeyFormat = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// Normalize truncates t to midnight UTC.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey returns the YYYY-MM-DD key for t in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyFormat)
}

// GenerateDates returns every date in [start, end] that falls on the
// named weekday, ascending, at midnight UTC. An empty result is valid:
// a short range may simply contain no matching day.
func GenerateDates(start, end time.Time, dayOfWeek string) ([]time.Time, error) {
	target, ok := weekdays[dayOfWeek]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, dayOfWeek)
	}

	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, DayKey(start), DayKey(end))
	}

	first := start
	for first.Weekday() != target {
		first = first.AddDate(0, 0, 1)
	}

	var dates []time.Time
	for d := first; !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates, nil
}
