package model

import (
	"testing"
	"time"
)

func TestMonthAddCrossesYearBoundaries(t *testing.T) {
	tests := []struct {
		from Month
		n    int
		want Month
	}{
		{Month{2024, time.January}, -1, Month{2023, time.December}},
		{Month{2024, time.December}, 1, Month{2025, time.January}},
		{Month{2024, time.March}, 13, Month{2025, time.April}},
		{Month{2024, time.March}, 0, Month{2024, time.March}},
	}
	for _, tc := range tests {
		if got := tc.from.Add(tc.n); got != tc.want {
			t.Errorf("%+v.Add(%d) = %+v, want %+v", tc.from, tc.n, got, tc.want)
		}
	}
}

func TestMonthOfIgnoresDayOfMonth(t *testing.T) {
	jan31 := time.Date(2024, time.January, 31, 15, 0, 0, 0, time.UTC)
	if got := MonthOf(jan31).Add(1); got != (Month{2024, time.February}) {
		t.Fatalf("Jan 31 + 1 month = %+v, want February 2024", got)
	}
}

func TestMonthDays(t *testing.T) {
	tests := map[Month]int{
		{2024, time.February}: 29,
		{2023, time.February}: 28,
		{2024, time.April}:    30,
		{2024, time.December}: 31,
		{1900, time.February}: 28,
		{2000, time.February}: 29,
	}
	for m, want := range tests {
		if got := m.Days(); got != want {
			t.Errorf("%+v.Days() = %d, want %d", m, got, want)
		}
	}
}

func TestEventFieldsApplyMergesOnlySetFields(t *testing.T) {
	ev := Event{ID: "1", Title: "a", Date: "2024-03-05", Time: "09:00", Description: "d"}
	title := "x"
	got := EventFields{Title: &title}.Apply(ev)
	want := Event{ID: "1", Title: "x", Date: "2024-03-05", Time: "09:00", Description: "d"}
	if got != want {
		t.Fatalf("Apply = %+v, want %+v", got, want)
	}
}
