package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caltide/caltide/calendar/storage"
)

func weeklyMaster(weeks string) *storage.MasterEvent {
	return &storage.MasterEvent{
		ID:               "ev1",
		Title:            "Standup",
		StartDate:        time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		IsRecurring:      true,
		RecurringPattern: storage.PatternWeekly,
		RecurringWeeks:   weeks,
	}
}

func starts(occurrences []Occurrence) []time.Time {
	out := make([]time.Time, len(occurrences))
	for i, occ := range occurrences {
		out[i] = occ.StartDate
	}
	return out
}

func TestGenerateBoundedSeries(t *testing.T) {
	e := NewEngine(nil)
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	out := e.generate(weeklyMaster("4"), windowStart, windowEnd, ExceptionEntry{})

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
	}, starts(out))
}

func TestGenerateOccurrenceFields(t *testing.T) {
	e := NewEngine(nil)
	master := weeklyMaster("2")
	end := master.StartDate.Add(45 * time.Minute)
	master.EndDate = &end

	out := e.generate(master,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ExceptionEntry{})
	require.Len(t, out, 2)

	second := out[1]
	assert.Equal(t, InstanceID("ev1", second.StartDate), second.ID)
	assert.Equal(t, "ev1", second.ParentEventID)
	require.NotNil(t, second.OriginalDate)
	assert.True(t, second.OriginalDate.Equal(second.StartDate))
	require.NotNil(t, second.EndDate)
	assert.Equal(t, 45*time.Minute, second.EndDate.Sub(second.StartDate))
}

func TestGenerateSkipsExceptions(t *testing.T) {
	e := NewEngine(nil)
	entry := ExceptionEntry{
		Deleted:  map[string]struct{}{"2024-01-08": {}},
		Modified: map[string]struct{}{"2024-01-15": {}},
	}

	out := e.generate(weeklyMaster("4"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		entry)

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
	}, starts(out))
}

func TestGenerateWindowClipping(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name        string
		master      *storage.MasterEvent
		windowStart time.Time
		windowEnd   time.Time
		expected    int
	}{
		{
			name:        "start after window end yields empty",
			master:      weeklyMaster(storage.IndefiniteWeeks),
			windowStart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			windowEnd:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			expected:    0,
		},
		{
			name:        "zero weeks yields empty",
			master:      weeklyMaster("0"),
			windowStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			windowEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			expected:    0,
		},
		{
			name:        "negative weeks yields empty",
			master:      weeklyMaster("-3"),
			windowStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			windowEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			expected:    0,
		},
		{
			name:        "window narrower than series",
			master:      weeklyMaster(storage.IndefiniteWeeks),
			windowStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			windowEnd:   time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			expected:    3, // Jan 1, 8 and 15
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.generate(tt.master, tt.windowStart, tt.windowEnd, ExceptionEntry{})
			assert.Len(t, out, tt.expected)
		})
	}
}

func TestGenerateIterationCap(t *testing.T) {
	// An indefinite weekly series over a 50-year window terminates at the
	// cap instead of expanding ~2600 occurrences.
	e := NewEngine(nil)

	out := e.generate(weeklyMaster(storage.IndefiniteWeeks),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2074, 1, 1, 0, 0, 0, 0, time.UTC),
		ExceptionEntry{})

	assert.Len(t, out, DefaultOptions.MaxIterations)
}

func TestGenerateUnknownPatternStepsWeekly(t *testing.T) {
	e := NewEngine(nil)
	master := weeklyMaster("2")
	master.RecurringPattern = "hourly"

	out := e.generate(master,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		ExceptionEntry{})

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
	}, starts(out))
}
