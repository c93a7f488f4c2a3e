package recurrence

import (
	"github.com/caltide/caltide/calendar/storage"
)

// ExceptionEntry holds the per-master lookup sets built from its exceptions,
// keyed by calendar day (storage.DayKey) for O(1) membership tests during
// expansion.
type ExceptionEntry struct {
	Deleted  map[string]struct{}
	Modified map[string]struct{}
}

// IsDeleted reports whether the day key belongs to a deleted occurrence.
func (e ExceptionEntry) IsDeleted(dayKey string) bool {
	_, ok := e.Deleted[dayKey]
	return ok
}

// IsModified reports whether the day key belongs to a modified occurrence.
func (e ExceptionEntry) IsModified(dayKey string) bool {
	_, ok := e.Modified[dayKey]
	return ok
}

// ExceptionIndex groups exception day keys by parent event id.
type ExceptionIndex map[string]ExceptionEntry

// BuildExceptionIndex builds the index from a flat exception list. Dates that
// differ only in time-of-day collapse to the same day key.
func BuildExceptionIndex(exceptions []*storage.EventException) ExceptionIndex {
	idx := make(ExceptionIndex)
	for _, exc := range exceptions {
		entry, ok := idx[exc.ParentEventID]
		if !ok {
			entry = ExceptionEntry{
				Deleted:  make(map[string]struct{}),
				Modified: make(map[string]struct{}),
			}
			idx[exc.ParentEventID] = entry
		}
		key := storage.DayKey(exc.ExceptionDate)
		switch exc.Type {
		case storage.ExceptionDeleted:
			entry.Deleted[key] = struct{}{}
		case storage.ExceptionModified:
			entry.Modified[key] = struct{}{}
		}
	}
	return idx
}

// Entry returns the entry for a parent event id. A master with no exceptions
// yields an implicit empty entry.
func (idx ExceptionIndex) Entry(parentID string) ExceptionEntry {
	if entry, ok := idx[parentID]; ok {
		return entry
	}
	return ExceptionEntry{}
}
