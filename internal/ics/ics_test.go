package ics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"monthcal/internal/model"
	"monthcal/internal/store"
)

var stamp = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: "ev-1", Title: "Standup", Date: "2024-03-05", Time: "09:00", Description: "daily"},
		{ID: "ev-2", Title: "Holiday", Date: "2024-03-08"},
		{ID: "ev-3", Title: "Broken", Date: "not-a-date"},
	}
}

func TestWriteSerializesEvents(t *testing.T) {
	var sb strings.Builder
	err := Write(&sb, sampleEvents(), ExportOptions{Name: "Home", Location: time.UTC, Stamp: stamp})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + ProductID,
		"X-WR-CALNAME:Home",
		"UID:ev-1@monthcal",
		"SUMMARY:Standup",
		"DESCRIPTION:daily",
		"DTSTART:20240305T090000Z",
		"UID:ev-2@monthcal",
		"DTSTART;VALUE=DATE:20240308",
		"DTEND;VALUE=DATE:20240309",
		"DTSTAMP:20240301T120000Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Broken") {
		t.Errorf("event with invalid date was exported")
	}
}

func TestParseEventsRoundTrip(t *testing.T) {
	var sb strings.Builder
	if err := Write(&sb, sampleEvents()[:2], ExportOptions{Location: time.UTC, Stamp: stamp}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ParseEvents([]byte(sb.String()), time.UTC)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}

	want := []model.Event{
		{ID: "ev-1", Title: "Standup", Date: "2024-03-05", Time: "09:00", Description: "daily"},
		{ID: "ev-2", Title: "Holiday", Date: "2024-03-08"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseEventsConvertsToLocation(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:late@example.com",
		"DTSTAMP:20240301T000000Z",
		"DTSTART:20240305T230000Z",
		"SUMMARY:Late call",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:untitled@example.com",
		"DTSTAMP:20240301T000000Z",
		"DTSTART;VALUE=DATE:20240306",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := ParseEvents([]byte(body), loc)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 (untitled skipped)", len(got))
	}
	if got[0].Date != "2024-03-06" || got[0].Time != "01:00" {
		t.Fatalf("late call = %s %s, want 2024-03-06 01:00", got[0].Date, got[0].Time)
	}
}

func TestParseEventsRejectsEmptyBody(t *testing.T) {
	if _, err := ParseEvents(nil, time.UTC); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	s := store.New(store.NewMemoryBackend())
	existing := s.Add(model.Fields("Standup", "2024-03-05", "09:00", ""))

	events := []model.Event{
		{ID: existing.ID, Title: "Renamed elsewhere", Date: "2024-03-05"},
		{ID: "other", Title: "Standup", Date: "2024-03-05", Time: "09:00"},
		{ID: "new-1", Title: "Dentist", Date: "2024-03-12", Time: "14:30"},
		{ID: "new-2", Title: "Dentist", Date: "2024-03-12", Time: "14:30"},
	}
	var sb strings.Builder
	if err := Write(&sb, events, ExportOptions{Location: time.UTC, Stamp: stamp}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	res, err := Import(s, []byte(sb.String()), time.UTC)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Added != 1 || res.Skipped != 3 {
		t.Fatalf("result = %+v, want added=1 skipped=3", res)
	}

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("store has %d events, want 2", len(list))
	}
	if list[1].Title != "Dentist" || list[1].ID == "new-1" {
		t.Fatalf("imported event = %+v, want fresh id for Dentist", list[1])
	}
}

func TestPublisherWritesFile(t *testing.T) {
	s := store.New(store.NewMemoryBackend())
	s.Add(model.Fields("Holiday", "2024-03-08", "", ""))

	path := filepath.Join(t.TempDir(), "public", "calendar.ics")
	p := NewPublisher(s, path, time.UTC, "Home")
	if err := p.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read published file: %v", err)
	}
	if !strings.Contains(string(data), "SUMMARY:Holiday") {
		t.Fatalf("published file missing event:\n%s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the published file, got %d entries", len(entries))
	}
}

func TestPublisherRunRejectsBadSchedule(t *testing.T) {
	p := NewPublisher(store.New(store.NewMemoryBackend()), filepath.Join(t.TempDir(), "c.ics"), time.UTC, "")
	if err := p.Run(context.Background(), "not a schedule"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestPublisherRunStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.ics")
	p := NewPublisher(store.New(store.NewMemoryBackend()), path, time.UTC, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, "@every 1h") }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("initial publish did not happen")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
