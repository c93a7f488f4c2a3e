package recurrence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/caltide/caltide/calendar/storage"
)

// Source is the read snapshot the engine expands over. storage.Storage
// satisfies it; tests can supply something smaller. Both methods should
// reflect a single consistent snapshot of the store.
type Source interface {
	ListEvents(ctx context.Context) ([]*storage.MasterEvent, error)
	ListExceptions(ctx context.Context) ([]*storage.EventException, error)
}

// Engine materializes occurrence lists from stored events and exceptions.
// It is stateless between calls and safe for concurrent readers.
type Engine struct {
	src    Source
	logger *slog.Logger
	opts   Options
	now    func() time.Time
}

// Option represents a configuration option for the Engine
type Option func(*Engine)

// WithLogger sets the logger used for integrity warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOptions overrides the expansion options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		if opts.DefaultWindowMonths > 0 {
			e.opts.DefaultWindowMonths = opts.DefaultWindowMonths
		}
		if opts.MaxIterations > 0 {
			e.opts.MaxIterations = opts.MaxIterations
		}
	}
}

// withNow fixes the clock; used by tests for reproducible default windows.
func withNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an expansion engine over the given source.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts:   DefaultOptions,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpandAll materializes occurrences with the implicit window (now to
// now + DefaultWindowMonths). Non-recurring events pass through regardless
// of their date; only recurring series are bounded by the implicit window.
func (e *Engine) ExpandAll(ctx context.Context) ([]Occurrence, error) {
	start := e.now()
	end := start.AddDate(0, e.opts.DefaultWindowMonths, 0)
	return e.expand(ctx, start, end, false)
}

// ExpandRange materializes occurrences in [windowStart, windowEnd).
// Non-recurring masters are filtered to the window by start date. Standalone
// modified instances are always included, window or not; bounded callers that
// care must filter on their side.
func (e *Engine) ExpandRange(ctx context.Context, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	return e.expand(ctx, windowStart, windowEnd, true)
}

func (e *Engine) expand(ctx context.Context, windowStart, windowEnd time.Time, bounded bool) ([]Occurrence, error) {
	events, err := e.src.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	exceptions, err := e.src.ListExceptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}

	idx := BuildExceptionIndex(exceptions)

	var out []Occurrence
	for _, ev := range events {
		switch {
		case ev.IsModifiedInstance():
			// Modified instances bypass window filtering entirely.
			out = append(out, Occurrence{MasterEvent: *ev})
		case ev.IsRecurring:
			out = append(out, e.generate(ev, windowStart, windowEnd, idx.Entry(ev.ID))...)
		case !bounded:
			out = append(out, Occurrence{MasterEvent: *ev})
		default:
			if !ev.StartDate.Before(windowStart) && !ev.StartDate.After(windowEnd) {
				out = append(out, Occurrence{MasterEvent: *ev})
			}
		}
	}

	// Stable: ties keep store order, which ListEvents guarantees is
	// deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}
