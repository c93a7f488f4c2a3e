package recurrence

import (
	"time"

	"github.com/caltide/caltide/calendar/storage"
)

// Next returns the occurrence following t for the given pattern.
//
// Calendar arithmetic uses time.AddDate, which normalizes overflow rather
// than clamping: Jan 31 + 1 month is Mar 2 in a leap year (Mar 3 otherwise),
// and Feb 29 + 1 year is Mar 1. An unrecognized pattern steps weekly; the
// caller is responsible for logging that as a data-integrity warning.
//
// Pure and stable: the same input always yields the same output, which is
// what keeps synthesized instance ids reproducible across reads.
func Next(t time.Time, pattern storage.RecurrencePattern) time.Time {
	switch pattern {
	case storage.PatternDaily:
		return t.AddDate(0, 0, 1)
	case storage.PatternMonthly:
		return t.AddDate(0, 1, 0)
	case storage.PatternYearly:
		return t.AddDate(1, 0, 0)
	case storage.PatternWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 7)
	}
}
