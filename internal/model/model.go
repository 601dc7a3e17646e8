package model

import "time"

// Event is a single-day calendar entry as persisted by the event store.
// The JSON shape is the on-disk record format and must stay stable.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM or ""
	Description string `json:"description"`
}

// EventFields carries the submitted fields for add and the partial field set
// for update. Nil pointers leave the stored value untouched on update.
type EventFields struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Fields builds a complete EventFields value, as produced by a form submit.
func Fields(title, date, clock, description string) EventFields {
	return EventFields{
		Title:       &title,
		Date:        &date,
		Time:        &clock,
		Description: &description,
	}
}

// Apply merges the non-nil fields onto ev. ID is never touched.
func (f EventFields) Apply(ev Event) Event {
	if f.Title != nil {
		ev.Title = *f.Title
	}
	if f.Date != nil {
		ev.Date = *f.Date
	}
	if f.Time != nil {
		ev.Time = *f.Time
	}
	if f.Description != nil {
		ev.Description = *f.Description
	}
	return ev
}

// Month is a reference month anchor. It has no day component, so moving by
// months never rolls over into a following month (Jan 31 + 1 month issues).
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// First returns the 1st of the month at 00:00 in loc.
func (m Month) First(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Add moves the anchor by n months (negative moves backwards).
func (m Month) Add(n int) Month {
	// Day 1 keeps time.Date normalization from spilling into the next month.
	return MonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Cell is one of the 42 day slots of a month grid. Cells are rebuilt on every
// render and never persisted.
type Cell struct {
	Day     int     `json:"day"`
	Date    string  `json:"date"`
	Outside bool    `json:"outside"`
	Today   bool    `json:"today"`
	Events  []Event `json:"events,omitempty"`
}
