package recurrence

import (
	"time"

	"github.com/caltide/caltide/calendar/storage"
)

// generate materializes the occurrences of one recurring master that fall in
// [windowStart, windowEnd), skipping days covered by a deleted or modified
// exception. Only called for masters with IsRecurring set.
func (e *Engine) generate(master *storage.MasterEvent, windowStart, windowEnd time.Time, entry ExceptionEntry) []Occurrence {
	pattern := master.RecurringPattern
	if !pattern.Valid() {
		// Defensive default, not a fatal error: the series still renders,
		// stepping weekly.
		e.logger.Warn("unrecognized recurrence pattern, falling back to weekly",
			"event_id", master.ID,
			"pattern", string(pattern))
		pattern = storage.PatternWeekly
	}

	cursor := master.StartDate
	if cursor.Before(windowStart) {
		cursor = windowStart
	}

	seriesEnd := windowEnd
	if weeks, bounded := master.Weeks(); bounded {
		end := master.StartDate.AddDate(0, 0, weeks*7)
		if end.Before(seriesEnd) {
			seriesEnd = end
		}
	}

	duration := master.Duration()
	var out []Occurrence
	for i := 0; cursor.Before(seriesEnd); i++ {
		if i >= e.opts.MaxIterations {
			e.logger.Warn("iteration cap reached, truncating series",
				"event_id", master.ID,
				"cap", e.opts.MaxIterations,
				"cursor", cursor)
			break
		}

		key := storage.DayKey(cursor)
		if !entry.IsDeleted(key) && !entry.IsModified(key) {
			occ := Occurrence{MasterEvent: *master}
			occ.ID = InstanceID(master.ID, cursor)
			occ.StartDate = cursor
			if master.EndDate != nil {
				end := cursor.Add(duration)
				occ.EndDate = &end
			}
			occ.ParentEventID = master.ID
			original := cursor
			occ.OriginalDate = &original
			out = append(out, occ)
		}

		cursor = Next(cursor, pattern)
	}
	return out
}
