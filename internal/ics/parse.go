package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"monthcal/internal/dates"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// ParseEvents reads VEVENTs from an iCalendar payload and maps them onto
// single-day records in loc. The ID carries the UID with any suffix added by
// Build stripped, for duplicate detection only; the store assigns fresh ids
// on import. Recurrence rules are ignored, so only the first occurrence is
// imported.
func ParseEvents(body []byte, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	out := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve, loc)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Warn("ics import: skipping vevent", "err", perr)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var ev model.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.ID = localID(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = strings.TrimSpace(p.Value)
	}
	if ev.Title == "" {
		return ev, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = strings.TrimSpace(p.Value)
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return ev, errors.New("missing DTSTART")
	}

	// VALUE=DATE or no 'T' in the value -> all-day
	allDay := !strings.Contains(dtStart.Value, "T")
	if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}

	if allDay {
		day, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return ev, fmt.Errorf("parse all-day DTSTART %q: %w", dtStart.Value, err)
		}
		ev.Date = dates.ISO(day)
		return ev, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, fmt.Errorf("parse DTSTART %q: %w", dtStart.Value, err)
	}
	start = start.In(loc)
	ev.Date = dates.ISO(start)
	ev.Time = start.Format(dates.ClockLayout)
	return ev, nil
}
