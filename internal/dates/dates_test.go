package dates

import (
	"errors"
	"testing"
	"time"

	"monthcal/internal/model"
)

func TestFormatISOPadsComponents(t *testing.T) {
	if got := FormatISO(2024, time.March, 5); got != "2024-03-05" {
		t.Fatalf("FormatISO = %q, want 2024-03-05", got)
	}
	if got := ISO(time.Date(999, time.December, 31, 23, 0, 0, 0, time.UTC)); got != "0999-12-31" {
		t.Fatalf("ISO = %q, want 0999-12-31", got)
	}
}

func TestParseISO(t *testing.T) {
	got, err := ParseISO(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ISO(got) != "2024-02-29" {
		t.Fatalf("round trip = %s", ISO(got))
	}

	if _, err := ParseISO(""); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("empty: expected ErrEmptyDate, got %v", err)
	}
	if _, err := ParseISO("2023-02-29"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("non-leap day: expected ErrInvalidDate, got %v", err)
	}
}

func TestValidClock(t *testing.T) {
	for _, ok := range []string{"", "00:00", "09:30", "23:59"} {
		if err := ValidClock(ok); err != nil {
			t.Errorf("ValidClock(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"24:00", "9am", "12:60", "9:00", "09:5", " 09:00"} {
		if err := ValidClock(bad); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ValidClock(%q) = %v, want ErrInvalidTime", bad, err)
		}
	}
}

func TestMonthRoundTripAndTitle(t *testing.T) {
	m, err := ParseMonth("2024-12")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	if m != (model.Month{Year: 2024, Month: time.December}) {
		t.Fatalf("month = %+v", m)
	}
	if FormatMonth(m) != "2024-12" {
		t.Fatalf("FormatMonth = %q", FormatMonth(m))
	}
	if MonthTitle(m) != "December 2024" {
		t.Fatalf("MonthTitle = %q", MonthTitle(m))
	}
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestChipText(t *testing.T) {
	if got := ChipText(model.Event{Title: "Standup", Time: "09:00"}); got != "09:00 Standup" {
		t.Fatalf("timed chip = %q", got)
	}
	if got := ChipText(model.Event{Title: "Holiday"}); got != "Holiday" {
		t.Fatalf("untimed chip = %q", got)
	}
}
