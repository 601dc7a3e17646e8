// Package dates holds the small formatting helpers shared by the grid
// builder, the controller and the HTML surface.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"monthcal/internal/model"
)

const (
	// ISOLayout is the calendar-date format used for persisted event dates.
	ISOLayout = "2006-01-02"
	// ClockLayout is the optional event time format.
	ClockLayout = "15:04"
	// MonthLayout identifies a reference month in URLs and the JSON API.
	MonthLayout = "2006-01"
)

var (
	ErrEmptyDate   = errors.New("date is empty")
	ErrInvalidDate = errors.New("date is not YYYY-MM-DD")
	ErrInvalidTime = errors.New("time is not HH:MM")
)

// FormatISO formats a year/month/day triple as YYYY-MM-DD without going
// through time.Time, so out-of-range days are rendered verbatim.
func FormatISO(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ISO formats the calendar date of t (in t's own location).
func ISO(t time.Time) string {
	return FormatISO(t.Year(), t.Month(), t.Day())
}

// ParseISO parses a YYYY-MM-DD string into local midnight.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	t, err := time.ParseInLocation(ISOLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ValidClock reports whether s is empty or a valid HH:MM time. Hours must
// be zero-padded so stored times order correctly as strings.
func ValidClock(s string) error {
	if s == "" {
		return nil
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil || t.Format(ClockLayout) != s {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// ParseMonth parses "YYYY-MM" into a reference month.
func ParseMonth(s string) (model.Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return model.Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return model.MonthOf(t), nil
}

// FormatMonth is the inverse of ParseMonth.
func FormatMonth(m model.Month) string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthTitle renders a heading such as "March 2024".
func MonthTitle(m model.Month) string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

// ChipText is the compact label of an event inside its day cell.
func ChipText(ev model.Event) string {
	if ev.Time != "" {
		return ev.Time + " " + ev.Title
	}
	return ev.Title
}
