// Package ical renders stored events and materialized occurrences as
// iCalendar data.
package ical

import (
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/caltide/caltide/calendar/recurrence"
	"github.com/caltide/caltide/calendar/storage"
)

const prodID = "-//caltide//calendar export//EN"

// Calendar renders the stored model as one VCALENDAR: each master becomes a
// VEVENT (recurring masters carry an RRULE and EXDATEs for their deleted
// occurrences), and each standalone modified instance becomes a VEVENT with
// RECURRENCE-ID pointing at the occurrence it replaces.
func Calendar(events []*storage.MasterEvent, exceptions []*storage.EventException) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	deletedByParent := make(map[string][]time.Time)
	for _, exc := range exceptions {
		if exc.Type == storage.ExceptionDeleted {
			deletedByParent[exc.ParentEventID] = append(deletedByParent[exc.ParentEventID], exc.ExceptionDate)
		}
	}

	for _, ev := range events {
		ve, err := eventComponent(ev)
		if err != nil {
			return nil, err
		}
		if ev.IsRecurring {
			for _, exdate := range deletedByParent[ev.ID] {
				prop := ical.NewProp(ical.PropExceptionDates)
				prop.SetDateTime(exdate)
				ve.Props.Add(prop)
			}
		}
		cal.Children = append(cal.Children, ve)
	}
	return cal, nil
}

// Occurrences renders an expanded window as a flat VCALENDAR with one VEVENT
// per occurrence and no recurrence properties.
func Occurrences(occurrences []recurrence.Occurrence) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, occ := range occurrences {
		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, uidOf(occ.ID))
		ve.Props.SetText(ical.PropSummary, occ.Title)
		ve.Props.SetDateTime(ical.PropDateTimeStamp, stampOf(occ.CreatedAt))
		ve.Props.SetDateTime(ical.PropDateTimeStart, occ.StartDate)
		if occ.EndDate != nil {
			ve.Props.SetDateTime(ical.PropDateTimeEnd, *occ.EndDate)
		}
		if occ.Description != "" {
			ve.Props.SetText(ical.PropDescription, occ.Description)
		}
		cal.Children = append(cal.Children, ve)
	}
	return cal
}

func eventComponent(ev *storage.MasterEvent) (*ical.Component, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uidOf(ev.ID))
	ve.Props.SetText(ical.PropSummary, ev.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stampOf(ev.CreatedAt))
	ve.Props.SetDateTime(ical.PropDateTimeStart, ev.StartDate)
	if ev.EndDate != nil {
		ve.Props.SetDateTime(ical.PropDateTimeEnd, *ev.EndDate)
	}
	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.IsModifiedInstance() && ev.OriginalDate != nil {
		prop := ical.NewProp("RECURRENCE-ID")
		prop.SetDateTime(*ev.OriginalDate)
		ve.Props.Add(prop)
	}
	if ev.IsRecurring {
		rule, err := seriesRule(ev)
		if err != nil {
			return nil, err
		}
		ve.Props.SetText(ical.PropRecurrenceRule, rule)
	}
	return ve, nil
}

// seriesRule renders the fixed pattern and week bound as RRULE text. Only
// the plain FREQ forms exist here; BYDAY-style rules are out of scope.
func seriesRule(ev *storage.MasterEvent) (string, error) {
	freq := rrule.WEEKLY
	switch ev.RecurringPattern {
	case storage.PatternDaily:
		freq = rrule.DAILY
	case storage.PatternWeekly:
		freq = rrule.WEEKLY
	case storage.PatternMonthly:
		freq = rrule.MONTHLY
	case storage.PatternYearly:
		freq = rrule.YEARLY
	}

	// Dtstart is deliberately left out: the VEVENT's own DTSTART anchors the
	// rule, and rrule-go would otherwise render a DTSTART line into the
	// property value.
	opt := rrule.ROption{Freq: freq}
	if weeks, bounded := ev.Weeks(); bounded {
		opt.Until = ev.StartDate.AddDate(0, 0, weeks*7)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("failed to build recurrence rule for event %s: %w", ev.ID, err)
	}
	return rule.String(), nil
}

func uidOf(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func stampOf(createdAt time.Time) time.Time {
	if createdAt.IsZero() {
		return time.Now().UTC()
	}
	return createdAt
}
