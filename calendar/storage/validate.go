package storage

import (
	"strconv"
	"strings"
)

// ValidateEvent checks a MasterEvent before it is persisted. It returns an
// ErrInvalidInput storage error describing the first problem found, or nil.
func ValidateEvent(e *MasterEvent) error {
	if strings.TrimSpace(e.Title) == "" {
		return &Error{Type: ErrInvalidInput, Message: "title is required"}
	}
	if e.StartDate.IsZero() {
		return &Error{Type: ErrInvalidInput, Message: "start date is required"}
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return &Error{Type: ErrInvalidInput, Message: "end date is before start date"}
	}

	if !e.IsRecurring {
		if e.RecurringPattern != "" || e.RecurringWeeks != "" {
			return &Error{Type: ErrInvalidInput, Message: "recurrence fields set on non-recurring event"}
		}
		return nil
	}

	if e.RecurringPattern == "" {
		return &Error{Type: ErrInvalidInput, Message: "recurring pattern is required"}
	}
	if !e.RecurringPattern.Valid() {
		return &Error{Type: ErrInvalidInput, Message: "unknown recurring pattern " + strconv.Quote(string(e.RecurringPattern))}
	}
	if e.RecurringWeeks == "" {
		return &Error{Type: ErrInvalidInput, Message: "recurring weeks is required"}
	}
	if e.RecurringWeeks != IndefiniteWeeks {
		if _, err := strconv.Atoi(e.RecurringWeeks); err != nil {
			return &Error{Type: ErrInvalidInput, Message: "recurring weeks must be a number or " + strconv.Quote(IndefiniteWeeks)}
		}
	}
	return nil
}
