package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validDraft() *MasterEvent {
	return &MasterEvent{
		Title:     "Dentist",
		StartDate: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
}

func TestValidateEvent(t *testing.T) {
	end := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*MasterEvent)
		wantErr bool
	}{
		{
			name:   "valid non-recurring",
			mutate: func(*MasterEvent) {},
		},
		{
			name:    "empty title",
			mutate:  func(e *MasterEvent) { e.Title = "  " },
			wantErr: true,
		},
		{
			name:    "zero start date",
			mutate:  func(e *MasterEvent) { e.StartDate = time.Time{} },
			wantErr: true,
		},
		{
			name:    "end before start",
			mutate:  func(e *MasterEvent) { e.EndDate = &end },
			wantErr: true,
		},
		{
			name: "valid recurring",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringPattern = PatternWeekly
				e.RecurringWeeks = "4"
			},
		},
		{
			name: "valid indefinite",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringPattern = PatternDaily
				e.RecurringWeeks = IndefiniteWeeks
			},
		},
		{
			name: "recurring without pattern",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringWeeks = "4"
			},
			wantErr: true,
		},
		{
			name: "recurring with unknown pattern",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringPattern = "hourly"
				e.RecurringWeeks = "4"
			},
			wantErr: true,
		},
		{
			name: "recurring without weeks",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringPattern = PatternWeekly
			},
			wantErr: true,
		},
		{
			name: "recurring with malformed weeks",
			mutate: func(e *MasterEvent) {
				e.IsRecurring = true
				e.RecurringPattern = PatternWeekly
				e.RecurringWeeks = "four"
			},
			wantErr: true,
		},
		{
			name: "non-recurring with leftover pattern",
			mutate: func(e *MasterEvent) {
				e.RecurringPattern = PatternWeekly
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validDraft()
			tt.mutate(event)
			err := ValidateEvent(event)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsType(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeeks(t *testing.T) {
	tests := []struct {
		name        string
		weeks       string
		wantCount   int
		wantBounded bool
	}{
		{name: "numeric", weeks: "4", wantCount: 4, wantBounded: true},
		{name: "indefinite", weeks: IndefiniteWeeks, wantCount: 0, wantBounded: false},
		{name: "zero", weeks: "0", wantCount: 0, wantBounded: true},
		{name: "negative", weeks: "-2", wantCount: -2, wantBounded: true},
		{name: "malformed counts as zero", weeks: "soon", wantCount: 0, wantBounded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &MasterEvent{RecurringWeeks: tt.weeks}
			count, bounded := e.Weeks()
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantBounded, bounded)
		})
	}
}

func TestDayKey(t *testing.T) {
	morning := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", DayKey(morning))
	assert.Equal(t, DayKey(morning), DayKey(midnight))
}
