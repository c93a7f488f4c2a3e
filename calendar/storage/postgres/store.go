package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/caltide/caltide/calendar/storage"
)

// Store implements storage.Storage on Postgres
type Store struct {
	db     *DB
	logger *slog.Logger
}

// NewStore creates a Postgres-backed storage over an open DB.
func NewStore(db *DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option represents a configuration option for the Store
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

const eventColumns = `id, title, description, start_date, end_date, is_recurring,
	 recurring_pattern, recurring_weeks, parent_event_id, original_date, created_at`

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Store) ListEvents(ctx context.Context) ([]*storage.MasterEvent, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListExceptions(ctx context.Context) ([]*storage.EventException, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT e.id, e.parent_event_id, e.exception_date, e.type, e.modified_event_id
		 FROM event_exceptions e
		 JOIN events p ON p.id = e.parent_event_id
		 ORDER BY p.seq ASC, e.exception_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []*storage.EventException
	for rows.Next() {
		exc := &storage.EventException{}
		var excType string
		var modifiedID *string
		if err := rows.Scan(&exc.ID, &exc.ParentEventID, &exc.ExceptionDate,
			&excType, &modifiedID); err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		exc.Type = storage.ExceptionType(excType)
		exc.ModifiedEventID = deref(modifiedID)
		exceptions = append(exceptions, exc)
	}
	return exceptions, rows.Err()
}

func (s *Store) GetEvent(ctx context.Context, id string) (*storage.MasterEvent, error) {
	ev := &storage.MasterEvent{}
	var pattern, weeks, parentID *string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.Title, &ev.Description, &ev.StartDate, &ev.EndDate,
		&ev.IsRecurring, &pattern, &weeks, &parentID, &ev.OriginalDate, &ev.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	ev.RecurringPattern = storage.RecurrencePattern(deref(pattern))
	ev.RecurringWeeks = deref(weeks)
	ev.ParentEventID = deref(parentID)
	return ev, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *storage.MasterEvent) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO events (id, title, description, start_date, end_date, is_recurring,
		 recurring_pattern, recurring_weeks, parent_event_id, original_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID, event.Title, event.Description, event.StartDate, event.EndDate,
		event.IsRecurring, nullable(string(event.RecurringPattern)),
		nullable(event.RecurringWeeks), nullable(event.ParentEventID),
		event.OriginalDate, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *Store) UpdateEvent(ctx context.Context, event *storage.MasterEvent) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE events SET title = $1, description = $2, start_date = $3, end_date = $4,
		 is_recurring = $5, recurring_pattern = $6, recurring_weeks = $7,
		 parent_event_id = $8, original_date = $9
		 WHERE id = $10`,
		event.Title, event.Description, event.StartDate, event.EndDate,
		event.IsRecurring, nullable(string(event.RecurringPattern)),
		nullable(event.RecurringWeeks), nullable(event.ParentEventID),
		event.OriginalDate, event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	// ON DELETE CASCADE removes the exceptions and standalone modified
	// instances referencing this event.
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &storage.Error{Type: storage.ErrNotFound, Message: "event not found"}
	}
	return nil
}

func (s *Store) PutException(ctx context.Context, exc *storage.EventException) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO event_exceptions (id, parent_event_id, exception_date, exception_day, type, modified_event_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (parent_event_id, exception_day)
		 DO UPDATE SET exception_date = EXCLUDED.exception_date,
		               type = EXCLUDED.type,
		               modified_event_id = EXCLUDED.modified_event_id`,
		exc.ID, exc.ParentEventID, exc.ExceptionDate,
		storage.DayKey(exc.ExceptionDate), string(exc.Type), nullable(exc.ModifiedEventID),
	)
	if err != nil {
		return fmt.Errorf("failed to put exception: %w", err)
	}
	return nil
}

func (s *Store) FindException(ctx context.Context, parentID, dayKey string) (*storage.EventException, error) {
	exc := &storage.EventException{}
	var excType string
	var modifiedID *string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id, parent_event_id, exception_date, type, modified_event_id
		 FROM event_exceptions WHERE parent_event_id = $1 AND exception_day = $2`,
		parentID, dayKey,
	).Scan(&exc.ID, &exc.ParentEventID, &exc.ExceptionDate, &excType, &modifiedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &storage.Error{Type: storage.ErrNotFound, Message: "exception not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find exception: %w", err)
	}
	exc.Type = storage.ExceptionType(excType)
	exc.ModifiedEventID = deref(modifiedID)
	return exc, nil
}

func scanEvents(rows pgx.Rows) ([]*storage.MasterEvent, error) {
	var events []*storage.MasterEvent
	for rows.Next() {
		ev := &storage.MasterEvent{}
		var pattern, weeks, parentID *string
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.StartDate,
			&ev.EndDate, &ev.IsRecurring, &pattern, &weeks, &parentID,
			&ev.OriginalDate, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.RecurringPattern = storage.RecurrencePattern(deref(pattern))
		ev.RecurringWeeks = deref(weeks)
		ev.ParentEventID = deref(parentID)
		events = append(events, ev)
	}
	return events, rows.Err()
}
