// Package ics converts the stored event collection to and from iCalendar.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"monthcal/internal/dates"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

const (
	ProductID = "-//monthcal//Month Calendar//EN"
	uidDomain = "monthcal"
)

// ExportOptions controls calendar-level properties of an export.
type ExportOptions struct {
	// Name is written as X-WR-CALNAME.
	Name string
	// Location is the zone timed events are interpreted in. Nil means
	// time.Local.
	Location *time.Location
	// Stamp is written as DTSTAMP on every event. Zero means now.
	Stamp time.Time
}

// Build converts events into a VCALENDAR. Untimed events become all-day
// events; timed events get a DTSTART only. Records with unparsable dates are
// skipped and logged.
func Build(events []model.Event, opts ExportOptions) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, ev := range events {
		day, err := time.ParseInLocation(dates.ISOLayout, ev.Date, loc)
		if err != nil {
			appLog.Warn("ics export: skipping event with invalid date", "id", ev.ID, "date", ev.Date)
			continue
		}

		vev := cal.AddEvent(ev.ID + "@" + uidDomain)
		vev.SetDtStampTime(stamp)
		vev.SetSummary(ev.Title)
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}

		clock, err := time.Parse(dates.ClockLayout, ev.Time)
		if ev.Time != "" && err == nil {
			start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
			vev.SetStartAt(start)
			continue
		}
		vev.SetAllDayStartAt(day)
		vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}
	return cal
}

// Write serializes events as an .ics document to w.
func Write(w io.Writer, events []model.Event, opts ExportOptions) error {
	cal := Build(events, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// localID strips the UID domain suffix added by Build.
func localID(uid string) string {
	return strings.TrimSuffix(uid, "@"+uidDomain)
}
