// Package calendar wires the recurrence engine and a storage backend into
// the event service the rest of an application talks to: series CRUD on the
// write path, occurrence expansion on the read path.
package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caltide/caltide/calendar/recurrence"
	"github.com/caltide/caltide/calendar/storage"
)

// Service exposes event and occurrence operations over a storage backend.
type Service struct {
	store      storage.Storage
	engine     *recurrence.Engine
	logger     *slog.Logger
	engineOpts recurrence.Options
	now        func() time.Time
	newID      func() string
}

// Option represents a configuration option for the Service
type Option func(*Service)

// WithLogger sets the logger for the service and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngineOptions overrides the expansion options of the embedded engine.
func WithEngineOptions(opts recurrence.Options) Option {
	return func(s *Service) {
		s.engineOpts = opts
	}
}

// New creates a calendar service over the given storage backend.
func New(store storage.Storage, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	s := &Service{
		store:      store,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		engineOpts: recurrence.DefaultOptions,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = recurrence.NewEngine(store,
		recurrence.WithLogger(s.logger),
		recurrence.WithOptions(s.engineOpts))
	return s, nil
}

// ListOccurrences materializes all occurrences using the default window for
// recurring series; non-recurring events are returned regardless of date.
func (s *Service) ListOccurrences(ctx context.Context) ([]recurrence.Occurrence, error) {
	return s.engine.ExpandAll(ctx)
}

// ListRange materializes the occurrences in [windowStart, windowEnd).
func (s *Service) ListRange(ctx context.Context, windowStart, windowEnd time.Time) ([]recurrence.Occurrence, error) {
	return s.engine.ExpandRange(ctx, windowStart, windowEnd)
}

// GetEvent returns a stored event by id.
func (s *Service) GetEvent(ctx context.Context, id string) (*storage.MasterEvent, error) {
	return s.store.GetEvent(ctx, id)
}

// CreateSeries validates and persists a new event or recurring series.
// A missing id is filled with a fresh UUID; CreatedAt is always set here.
func (s *Service) CreateSeries(ctx context.Context, event *storage.MasterEvent) (*storage.MasterEvent, error) {
	if err := storage.ValidateEvent(event); err != nil {
		return nil, err
	}
	if event.ID == "" {
		event.ID = s.newID()
	}
	event.CreatedAt = s.now()

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("created event",
		"event_id", event.ID,
		"recurring", event.IsRecurring)
	return event, nil
}

// EditSeries applies a partial update to a stored event. For recurring
// masters this changes every generated occurrence; existing exceptions keep
// shadowing their days.
func (s *Service) EditSeries(ctx context.Context, id string, update storage.EventUpdate) (*storage.MasterEvent, error) {
	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *event
	update.Apply(&updated)
	if !updated.IsRecurring {
		// Turning recurrence off drops the pattern fields with it.
		updated.RecurringPattern = ""
		updated.RecurringWeeks = ""
	}
	if err := storage.ValidateEvent(&updated); err != nil {
		return nil, err
	}

	if err := s.store.UpdateEvent(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSeries removes an event and, through the storage cascade, every
// exception and standalone modified instance referencing it.
func (s *Service) DeleteSeries(ctx context.Context, id string) error {
	if _, err := s.store.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted event", "event_id", id)
	return nil
}

// DeleteInstance removes a single occurrence of a recurring series by
// recording a deleted exception for its day. If the occurrence had been
// modified before, its standalone event is removed and the exception flips
// to deleted; the (parent, day) pair never holds more than one exception.
func (s *Service) DeleteInstance(ctx context.Context, parentID string, occurrenceDate time.Time) error {
	if _, err := s.store.GetEvent(ctx, parentID); err != nil {
		return err
	}

	dayKey := storage.DayKey(occurrenceDate)
	exc := &storage.EventException{
		ID:            s.newID(),
		ParentEventID: parentID,
		ExceptionDate: occurrenceDate,
		Type:          storage.ExceptionDeleted,
	}

	existing, err := s.store.FindException(ctx, parentID, dayKey)
	if err != nil && !storage.IsNotFound(err) {
		return err
	}
	if existing != nil {
		exc.ID = existing.ID
		if existing.Type == storage.ExceptionModified && existing.ModifiedEventID != "" {
			if err := s.store.DeleteEvent(ctx, existing.ModifiedEventID); err != nil && !storage.IsNotFound(err) {
				return err
			}
		}
	}

	if err := s.store.PutException(ctx, exc); err != nil {
		return err
	}
	s.logger.Info("deleted occurrence",
		"parent_event_id", parentID,
		"day", dayKey)
	return nil
}

// EditInstance replaces a single occurrence of a recurring series with a
// standalone modified event seeded from the parent and overridden by the
// partial update. Re-editing the same day updates the existing standalone
// event in place instead of inserting a second exception.
func (s *Service) EditInstance(ctx context.Context, parentID string, occurrenceDate time.Time, update storage.EventUpdate) (*storage.MasterEvent, error) {
	parent, err := s.store.GetEvent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	dayKey := storage.DayKey(occurrenceDate)
	existing, err := s.store.FindException(ctx, parentID, dayKey)
	if err != nil && !storage.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.Type == storage.ExceptionDeleted {
		return nil, &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "occurrence is deleted",
		}
	}

	if existing != nil && existing.ModifiedEventID != "" {
		// Re-edit: apply the update to the standalone event from the first
		// edit rather than reseeding from the parent.
		if instance, err := s.store.GetEvent(ctx, existing.ModifiedEventID); err == nil {
			updated := *instance
			update.Apply(&updated)
			s.normalizeInstance(&updated, parentID, occurrenceDate)
			if err := storage.ValidateEvent(&updated); err != nil {
				return nil, err
			}
			if err := s.store.UpdateEvent(ctx, &updated); err != nil {
				return nil, err
			}
			return &updated, nil
		} else if !storage.IsNotFound(err) {
			return nil, err
		}
		// The standalone event is gone; fall through and recreate it under
		// the existing exception.
	}

	instance := *parent
	instance.ID = s.newID()
	instance.StartDate = occurrenceDate
	instance.EndDate = nil
	if parent.EndDate != nil {
		end := occurrenceDate.Add(parent.Duration())
		instance.EndDate = &end
	}
	update.Apply(&instance)
	s.normalizeInstance(&instance, parentID, occurrenceDate)
	instance.CreatedAt = s.now()
	if err := storage.ValidateEvent(&instance); err != nil {
		return nil, err
	}

	if err := s.store.CreateEvent(ctx, &instance); err != nil {
		return nil, err
	}

	exc := &storage.EventException{
		ID:              s.newID(),
		ParentEventID:   parentID,
		ExceptionDate:   occurrenceDate,
		Type:            storage.ExceptionModified,
		ModifiedEventID: instance.ID,
	}
	if existing != nil {
		exc.ID = existing.ID
	}
	if err := s.store.PutException(ctx, exc); err != nil {
		return nil, err
	}
	s.logger.Info("modified occurrence",
		"parent_event_id", parentID,
		"day", dayKey,
		"instance_id", instance.ID)
	return &instance, nil
}

// normalizeInstance forces the invariants of a standalone modified event:
// never recurring, always linked back to its series and original date.
func (s *Service) normalizeInstance(e *storage.MasterEvent, parentID string, occurrenceDate time.Time) {
	e.IsRecurring = false
	e.RecurringPattern = ""
	e.RecurringWeeks = ""
	e.ParentEventID = parentID
	original := occurrenceDate
	e.OriginalDate = &original
}
