// Package memory is a map-backed Storage implementation. It is the default
// backend for tests and single-process use.
package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/caltide/caltide/calendar/storage"
)

// Store implements storage.Storage using in-memory maps
type Store struct {
	mu         sync.RWMutex
	events     map[string]*storage.MasterEvent
	eventOrder []string                           // insertion order, keeps reads deterministic
	exceptions map[string]*storage.EventException // key: parentID/dayKey
	logger     *slog.Logger
}

// New creates a new in-memory storage
func New(opts ...Option) *Store {
	s := &Store{
		events:     make(map[string]*storage.MasterEvent),
		exceptions: make(map[string]*storage.EventException),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func exceptionKey(parentID, dayKey string) string {
	return fmt.Sprintf("%s/%s", parentID, dayKey)
}

func copyEvent(e *storage.MasterEvent) *storage.MasterEvent {
	c := *e
	if e.EndDate != nil {
		end := *e.EndDate
		c.EndDate = &end
	}
	if e.OriginalDate != nil {
		orig := *e.OriginalDate
		c.OriginalDate = &orig
	}
	return &c
}

func (s *Store) ListEvents(_ context.Context) ([]*storage.MasterEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*storage.MasterEvent, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		if ev, ok := s.events[id]; ok {
			events = append(events, copyEvent(ev))
		}
	}
	return events, nil
}

func (s *Store) ListExceptions(_ context.Context) ([]*storage.EventException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byParent := make(map[string][]*storage.EventException)
	for _, exc := range s.exceptions {
		c := *exc
		byParent[exc.ParentEventID] = append(byParent[exc.ParentEventID], &c)
	}

	// Walk events in insertion order so exception listing is deterministic
	// too.
	exceptions := make([]*storage.EventException, 0, len(s.exceptions))
	for _, id := range s.eventOrder {
		excs := byParent[id]
		sort.Slice(excs, func(i, j int) bool {
			return excs[i].ExceptionDate.Before(excs[j].ExceptionDate)
		})
		exceptions = append(exceptions, excs...)
	}
	return exceptions, nil
}

func (s *Store) GetEvent(_ context.Context, id string) (*storage.MasterEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}
	return copyEvent(ev), nil
}

func (s *Store) CreateEvent(_ context.Context, event *storage.MasterEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, exists := s.events[event.ID]; exists {
		return &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "event already exists",
		}
	}

	s.events[event.ID] = copyEvent(event)
	s.eventOrder = append(s.eventOrder, event.ID)
	return nil
}

func (s *Store) UpdateEvent(_ context.Context, event *storage.MasterEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}
	s.events[event.ID] = copyEvent(event)
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[id]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}
	delete(s.events, id)

	// Cascade: exceptions of this event, plus the standalone modified
	// instances its exceptions pointed at.
	for key, exc := range s.exceptions {
		if exc.ParentEventID != id {
			continue
		}
		if exc.ModifiedEventID != "" {
			delete(s.events, exc.ModifiedEventID)
			s.logger.Debug("cascade deleted modified instance",
				"parent_event_id", id,
				"instance_id", exc.ModifiedEventID)
		}
		delete(s.exceptions, key)
	}

	order := s.eventOrder[:0]
	for _, evID := range s.eventOrder {
		if _, ok := s.events[evID]; ok {
			order = append(order, evID)
		}
	}
	s.eventOrder = order
	return nil
}

func (s *Store) PutException(_ context.Context, exc *storage.EventException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[exc.ParentEventID]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "parent event not found",
		}
	}

	if exc.ID == "" {
		exc.ID = uuid.NewString()
	}
	c := *exc
	s.exceptions[exceptionKey(exc.ParentEventID, storage.DayKey(exc.ExceptionDate))] = &c
	return nil
}

func (s *Store) FindException(_ context.Context, parentID, dayKey string) (*storage.EventException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exc, ok := s.exceptions[exceptionKey(parentID, dayKey)]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "exception not found",
		}
	}
	c := *exc
	return &c, nil
}
