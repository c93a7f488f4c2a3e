package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsType reports whether err is a storage Error of the given type.
func IsType(err error, t ErrorType) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Type == t
	}
	return false
}

// IsNotFound reports whether err is a not-found storage error.
func IsNotFound(err error) bool {
	return IsType(err, ErrNotFound)
}

// RecurrencePattern is the repeat interval of a recurring event series.
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "daily"
	PatternWeekly  RecurrencePattern = "weekly"
	PatternMonthly RecurrencePattern = "monthly"
	PatternYearly  RecurrencePattern = "yearly"
)

// Valid reports whether p is one of the known recurrence patterns.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return true
	}
	return false
}

// IndefiniteWeeks is the RecurringWeeks sentinel for an open-ended series.
const IndefiniteWeeks = "indefinite"

// MasterEvent is a stored event definition. A plain event has IsRecurring
// false and no recurrence fields; a recurring series carries a pattern and a
// week count (or IndefiniteWeeks). A standalone modified instance is a
// non-recurring event with ParentEventID and OriginalDate pointing back at
// the series occurrence it replaces.
type MasterEvent struct {
	ID          string
	Title       string
	Description string
	// StartDate is the first (or only) occurrence. Timestamps are naive
	// local times; no time-zone conversion happens anywhere in this module.
	StartDate        time.Time
	EndDate          *time.Time
	IsRecurring      bool
	RecurringPattern RecurrencePattern
	// RecurringWeeks is a positive integer rendered as text, or
	// IndefiniteWeeks. Empty on non-recurring events.
	RecurringWeeks string
	// ParentEventID is set only on standalone modified instances.
	ParentEventID string
	// OriginalDate is the undeviated occurrence instant a standalone
	// modified instance replaces.
	OriginalDate *time.Time
	CreatedAt    time.Time
}

// IsModifiedInstance reports whether the event is a standalone modified
// instance of a recurring series rather than a user-authored master.
func (e *MasterEvent) IsModifiedInstance() bool {
	return e.ParentEventID != ""
}

// Weeks resolves RecurringWeeks into a bounded series length.
// It returns bounded=false for IndefiniteWeeks. A malformed value counts as
// zero weeks, which the generator treats as an immediately-ended series.
func (e *MasterEvent) Weeks() (count int, bounded bool) {
	if e.RecurringWeeks == IndefiniteWeeks {
		return 0, false
	}
	n, err := strconv.Atoi(e.RecurringWeeks)
	if err != nil {
		return 0, true
	}
	return n, true
}

// Duration returns the event's end-start span, or zero when EndDate is unset.
func (e *MasterEvent) Duration() time.Duration {
	if e.EndDate == nil {
		return 0
	}
	return e.EndDate.Sub(e.StartDate)
}

// ExceptionType marks how an occurrence deviates from its series.
type ExceptionType string

const (
	ExceptionDeleted  ExceptionType = "deleted"
	ExceptionModified ExceptionType = "modified"
)

// EventException records that one occurrence of a recurring series was
// deleted or replaced by a standalone modified instance. At most one
// exception exists per (ParentEventID, calendar day of ExceptionDate) pair;
// PutException enforces this by upserting.
type EventException struct {
	ID            string
	ParentEventID string
	// ExceptionDate is the original, undeviated occurrence instant.
	ExceptionDate time.Time
	Type          ExceptionType
	// ModifiedEventID references the standalone modified instance.
	// Set iff Type is ExceptionModified.
	ModifiedEventID string
}

// DayKey normalizes an instant to calendar-day granularity. Exceptions are
// matched against generated occurrences by day, not by exact time, because
// that is how a user picks "this occurrence".
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// EventUpdate is a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title            *string
	Description      *string
	StartDate        *time.Time
	EndDate          *time.Time
	IsRecurring      *bool
	RecurringPattern *RecurrencePattern
	RecurringWeeks   *string
}

// Apply overwrites the non-nil fields of u onto e.
func (u EventUpdate) Apply(e *MasterEvent) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		end := *u.EndDate
		e.EndDate = &end
	}
	if u.IsRecurring != nil {
		e.IsRecurring = *u.IsRecurring
	}
	if u.RecurringPattern != nil {
		e.RecurringPattern = *u.RecurringPattern
	}
	if u.RecurringWeeks != nil {
		e.RecurringWeeks = *u.RecurringWeeks
	}
}

// Storage is the interface that must be implemented by storage backends.
// All operations are mandatory; the exception model is part of the data
// model, not a backend capability.
type Storage interface {
	// ListEvents returns every stored event (masters and standalone
	// modified instances) in a deterministic order.
	ListEvents(ctx context.Context) ([]*MasterEvent, error)
	// ListExceptions returns every stored exception.
	ListExceptions(ctx context.Context) ([]*EventException, error)

	GetEvent(ctx context.Context, id string) (*MasterEvent, error)
	CreateEvent(ctx context.Context, event *MasterEvent) error
	UpdateEvent(ctx context.Context, event *MasterEvent) error
	// DeleteEvent removes an event. Deleting a master cascades to its
	// exceptions and standalone modified instances.
	DeleteEvent(ctx context.Context, id string) error

	// PutException inserts or replaces the exception for the
	// (ParentEventID, day of ExceptionDate) pair.
	PutException(ctx context.Context, exc *EventException) error
	// FindException looks up the exception for a parent event and day key.
	FindException(ctx context.Context, parentID, dayKey string) (*EventException, error)
}
