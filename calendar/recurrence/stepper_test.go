package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/caltide/caltide/calendar/storage"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		pattern  storage.RecurrencePattern
		expected time.Time
	}{
		{
			name:     "daily",
			start:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternDaily,
			expected: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "weekly",
			start:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternWeekly,
			expected: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly",
			start:    time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternMonthly,
			expected: time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly overflow rolls into next month",
			start:   time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			pattern: storage.PatternMonthly,
			// Jan 31 + 1 month normalizes past 29-day February to Mar 2.
			expected: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly overflow in non-leap year",
			start:    time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternMonthly,
			expected: time.Date(2023, 3, 3, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly",
			start:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternYearly,
			expected: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly leap day normalizes to March 1",
			start:    time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
			pattern:  storage.PatternYearly,
			expected: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "unknown pattern falls back to weekly",
			start:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			pattern:  "fortnightly",
			expected: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "empty pattern falls back to weekly",
			start:    time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
			pattern:  "",
			expected: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Next(tt.start, tt.pattern))
		})
	}
}

func TestNextIsStable(t *testing.T) {
	start := time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC)
	first := Next(start, storage.PatternMonthly)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Next(start, storage.PatternMonthly))
	}
}
