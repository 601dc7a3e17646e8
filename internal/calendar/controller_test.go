package calendar

import (
	"fmt"
	"testing"
	"time"

	"monthcal/internal/dates"
	"monthcal/internal/model"
	"monthcal/internal/store"
)

// countingStore wraps a store and counts mutations.
type countingStore struct {
	*store.Store
	mutations int
}

func (s *countingStore) Add(f model.EventFields) model.Event {
	s.mutations++
	return s.Store.Add(f)
}

func (s *countingStore) Update(id string, f model.EventFields) {
	s.mutations++
	s.Store.Update(id, f)
}

func (s *countingStore) Remove(id string) {
	s.mutations++
	s.Store.Remove(id)
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
}

func newTestController(t *testing.T) (*Controller, *countingStore) {
	t.Helper()
	n := 0
	s := &countingStore{Store: store.New(store.NewMemoryBackend(), store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}))}
	c := New(s, WithClock(fixedClock(2024, time.March, 15)), WithLocation(time.UTC))
	return c, s
}

func TestNewStartsOnCurrentMonth(t *testing.T) {
	c, _ := newTestController(t)
	want := model.Month{Year: 2024, Month: time.March}
	if c.Current != want || c.Mini != want {
		t.Fatalf("current=%+v mini=%+v, want %+v", c.Current, c.Mini, want)
	}
	if c.Title() != "March 2024" {
		t.Fatalf("title = %q", c.Title())
	}
	if c.Modal.State != Closed {
		t.Fatalf("modal = %v, want closed", c.Modal.State)
	}
}

func TestNavigation(t *testing.T) {
	c, _ := newTestController(t)

	c.Next()
	if c.Current != (model.Month{Year: 2024, Month: time.April}) || c.Mini != c.Current {
		t.Fatalf("after next: current=%+v mini=%+v", c.Current, c.Mini)
	}

	c.JumpMonth(model.Month{Year: 2024, Month: time.January})
	c.Prev()
	if c.Current != (model.Month{Year: 2023, Month: time.December}) {
		t.Fatalf("after prev across year: %+v", c.Current)
	}

	c.Jump(time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	c.Next()
	if c.Current != (model.Month{Year: 2025, Month: time.February}) {
		t.Fatalf("Jan 31 + next = %+v, want February 2025", c.Current)
	}

	c.GoToday()
	if c.Current != (model.Month{Year: 2024, Month: time.March}) {
		t.Fatalf("today = %+v", c.Current)
	}
}

func TestMiniNavigationIsIndependent(t *testing.T) {
	c, _ := newTestController(t)

	c.MiniNext()
	c.MiniNext()
	if c.Mini != (model.Month{Year: 2024, Month: time.May}) {
		t.Fatalf("mini = %+v", c.Mini)
	}
	if c.Current != (model.Month{Year: 2024, Month: time.March}) {
		t.Fatalf("main moved with mini: %+v", c.Current)
	}

	// Selecting an in-month mini day moves the main grid only.
	if !c.SelectMiniDate("2024-05-20") {
		t.Fatal("expected in-month mini selection to navigate")
	}
	if c.Current != (model.Month{Year: 2024, Month: time.May}) {
		t.Fatalf("current = %+v", c.Current)
	}

	c.MiniPrev()
	before := c.Current
	// April 2024 starts on a Monday, so March 31 is leading filler.
	if c.SelectMiniDate("2024-03-31") {
		t.Fatal("outside mini day must not navigate")
	}
	if c.Current != before {
		t.Fatalf("current changed to %+v", c.Current)
	}
	if c.SelectMiniDate("1999-01-01") {
		t.Fatal("date not on the mini grid must not navigate")
	}
}

func TestActivateDayOpensAddForInMonthCells(t *testing.T) {
	c, _ := newTestController(t)

	if c.ActivateDate("2024-02-28") {
		t.Fatal("outside cell must not open the dialog")
	}
	if c.Modal.Open() {
		t.Fatal("dialog opened for outside cell")
	}

	if !c.ActivateDate("2024-03-05") {
		t.Fatal("expected dialog for in-month cell")
	}
	if c.Modal.State != Adding || c.Modal.Form.Date != "2024-03-05" {
		t.Fatalf("modal = %+v", c.Modal)
	}
	if c.Modal.Heading() != "New Event" || c.Modal.CanDelete() {
		t.Fatalf("adding heading=%q canDelete=%v", c.Modal.Heading(), c.Modal.CanDelete())
	}
}

func TestOpenCreatePrefillsToday(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenCreate()
	if c.Modal.Form.Date != "2024-03-15" {
		t.Fatalf("prefilled date = %q", c.Modal.Form.Date)
	}
}

func TestSubmitAddsAndRebuilds(t *testing.T) {
	c, s := newTestController(t)
	c.OpenAdd("2024-03-05")

	if !c.Submit(Form{Title: "  Standup ", Date: "2024-03-05", Time: "09:00"}) {
		t.Fatal("submit rejected valid form")
	}
	if c.Modal.State != Closed {
		t.Fatalf("modal = %v, want closed", c.Modal.State)
	}
	if s.mutations != 1 {
		t.Fatalf("mutations = %d", s.mutations)
	}

	g := c.Grid()
	cell, ok := g.Cell("2024-03-05")
	if !ok {
		t.Fatal("cell missing")
	}
	if len(cell.Events) != 1 || dates.ChipText(cell.Events[0]) != "09:00 Standup" {
		t.Fatalf("cell events = %+v", cell.Events)
	}
}

func TestSubmitWithEmptyTitleKeepsDialogOpen(t *testing.T) {
	c, s := newTestController(t)
	c.OpenAdd("2024-03-05")

	if c.Submit(Form{Title: "   ", Date: "2024-03-05"}) {
		t.Fatal("submit accepted empty title")
	}
	if c.Modal.State != Adding {
		t.Fatalf("state = %v, want adding", c.Modal.State)
	}
	if c.Modal.Errors.Title != msgTitleRequired || c.Modal.Errors.Date != "" {
		t.Fatalf("errors = %+v", c.Modal.Errors)
	}
	if s.mutations != 0 {
		t.Fatalf("store mutated %d times", s.mutations)
	}

	// Typing in the title clears its error immediately.
	c.Edit(FieldTitle, "S")
	if c.Modal.Errors.Title != "" {
		t.Fatalf("title error not cleared: %+v", c.Modal.Errors)
	}
}

func TestSubmitValidatesDateAndTime(t *testing.T) {
	c, s := newTestController(t)
	c.OpenCreate()

	c.Submit(Form{Title: "x", Date: "", Time: "9am"})
	if c.Modal.Errors.Date != msgDateRequired || c.Modal.Errors.Time != msgTimeInvalid {
		t.Fatalf("errors = %+v", c.Modal.Errors)
	}

	c.Submit(Form{Title: "x", Date: "2024-02-30"})
	if c.Modal.Errors.Date != msgDateInvalid {
		t.Fatalf("errors = %+v", c.Modal.Errors)
	}

	c.Edit(FieldDate, "2024-03-01")
	if c.Modal.Errors.Date != "" {
		t.Fatalf("date error not cleared: %+v", c.Modal.Errors)
	}

	c.Submit(Form{Title: "x", Date: "2024-03-05", Time: "9:00"})
	if c.Modal.Errors.Time != msgTimeInvalid {
		t.Fatalf("unpadded hour accepted: %+v", c.Modal.Errors)
	}
	if s.mutations != 0 {
		t.Fatalf("store mutated %d times", s.mutations)
	}
}

func TestEditFlowUpdatesExistingRecord(t *testing.T) {
	c, s := newTestController(t)
	ev := s.Store.Add(model.Fields("Standup", "2024-03-05", "09:00", "daily"))

	if c.OpenEdit("missing") {
		t.Fatal("unknown id opened dialog")
	}
	if !c.OpenEdit(ev.ID) {
		t.Fatal("expected edit dialog")
	}
	if c.Modal.State != Editing || c.Modal.Form.Description != "daily" || !c.Modal.CanDelete() {
		t.Fatalf("modal = %+v", c.Modal)
	}

	f := c.Modal.Form
	f.Title = "Retro"
	if !c.Submit(f) {
		t.Fatal("submit rejected")
	}
	got, _ := s.Get(ev.ID)
	want := model.Event{ID: ev.ID, Title: "Retro", Date: "2024-03-05", Time: "09:00", Description: "daily"}
	if got != want {
		t.Fatalf("updated = %+v, want %+v", got, want)
	}
	if n := len(s.List()); n != 1 {
		t.Fatalf("edit must not add records, have %d", n)
	}
}

func TestDeleteOnlyFromEditing(t *testing.T) {
	c, s := newTestController(t)
	ev := s.Store.Add(model.Fields("Standup", "2024-03-05", "", ""))

	c.OpenAdd("2024-03-05")
	if c.Delete() {
		t.Fatal("delete allowed while adding")
	}
	if c.Modal.State != Adding {
		t.Fatal("delete from adding changed state")
	}

	c.OpenEdit(ev.ID)
	if !c.Delete() {
		t.Fatal("delete rejected while editing")
	}
	if c.Modal.State != Closed || len(s.List()) != 0 {
		t.Fatalf("state=%v events=%+v", c.Modal.State, s.List())
	}
}

func TestCancelDoesNotMutate(t *testing.T) {
	c, s := newTestController(t)
	c.OpenAdd("2024-03-05")
	c.Edit(FieldTitle, "draft")
	c.Cancel()

	if c.Modal.Open() || c.Modal.Form.Title != "" {
		t.Fatalf("modal after cancel = %+v", c.Modal)
	}
	if s.mutations != 0 {
		t.Fatalf("store mutated %d times", s.mutations)
	}
	if c.Submit(Form{Title: "late", Date: "2024-03-05"}) {
		t.Fatal("submit on closed dialog must be ignored")
	}
}
