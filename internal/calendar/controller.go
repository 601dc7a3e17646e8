// Package calendar owns the interactive state of one calendar instance: the
// main and mini reference months and the add/edit dialog. Every action runs
// to completion synchronously; callers rebuild the grids afterwards with
// Grid and MiniGrid.
package calendar

import (
	"time"

	"monthcal/internal/dates"
	"monthcal/internal/grid"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// EventStore is the persistence the controller drives.
type EventStore interface {
	List() []model.Event
	Get(id string) (model.Event, bool)
	Add(fields model.EventFields) model.Event
	Update(id string, fields model.EventFields)
	Remove(id string)
}

// Controller is not safe for concurrent use; callers serialize actions.
type Controller struct {
	// Current is the main grid's reference month.
	Current model.Month
	// Mini is the mini grid's reference month, independent of Current.
	Mini  model.Month
	Modal Modal

	store EventStore
	now   func() time.Time
	loc   *time.Location
	opts  grid.Options
}

type Option func(*Controller)

// WithClock injects the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the display timezone "today" is resolved in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithWeekStart sets the first grid column.
func WithWeekStart(d time.Weekday) Option {
	return func(c *Controller) {
		c.opts.WeekStart = d
	}
}

// New returns a controller showing the current month in both grids.
func New(store EventStore, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Current = model.MonthOf(c.Today())
	c.Mini = c.Current
	return c
}

// Today is the current instant in the display timezone.
func (c *Controller) Today() time.Time {
	return c.now().In(c.loc)
}

// Location is the display timezone.
func (c *Controller) Location() *time.Location {
	return c.loc
}

// WeekStart returns the configured first weekday.
func (c *Controller) WeekStart() time.Weekday {
	return c.opts.WeekStart
}

// Store exposes the underlying event store.
func (c *Controller) Store() EventStore {
	return c.store
}

// Grid rebuilds the main grid from the store.
func (c *Controller) Grid() grid.Grid {
	return c.GridFor(c.Current)
}

// MiniGrid rebuilds the mini grid.
func (c *Controller) MiniGrid() grid.Grid {
	return c.MiniGridFor(c.Mini)
}

// GridFor builds a main grid for m without moving the reference month.
func (c *Controller) GridFor(m model.Month) grid.Grid {
	return grid.Build(m, c.store.List(), c.Today(), c.opts)
}

// MiniGridFor builds a mini grid for m without moving the mini anchor.
func (c *Controller) MiniGridFor(m model.Month) grid.Grid {
	return grid.BuildMini(m, c.Today(), c.opts)
}

// Title is the main heading, e.g. "March 2024".
func (c *Controller) Title() string {
	return dates.MonthTitle(c.Current)
}

// MiniTitle is the mini calendar heading.
func (c *Controller) MiniTitle() string {
	return dates.MonthTitle(c.Mini)
}

// Month navigation. Main-grid moves also bring the mini grid along.

func (c *Controller) Prev() {
	c.setCurrent(c.Current.Add(-1))
}

func (c *Controller) Next() {
	c.setCurrent(c.Current.Add(1))
}

func (c *Controller) GoToday() {
	c.setCurrent(model.MonthOf(c.Today()))
}

// Jump shows the month containing t.
func (c *Controller) Jump(t time.Time) {
	c.setCurrent(model.MonthOf(t))
}

// JumpMonth shows m.
func (c *Controller) JumpMonth(m model.Month) {
	c.setCurrent(m.Add(0))
}

func (c *Controller) setCurrent(m model.Month) {
	c.Current = m
	c.Mini = m
	appLog.Debug("calendar: navigate", "month", dates.FormatMonth(m))
}

func (c *Controller) MiniPrev() {
	c.Mini = c.Mini.Add(-1)
}

func (c *Controller) MiniNext() {
	c.Mini = c.Mini.Add(1)
}

// SelectMiniDay points the main grid at the month of an in-month mini cell.
// Outside cells are ignored. It reports whether navigation happened.
func (c *Controller) SelectMiniDay(cell model.Cell) bool {
	if cell.Outside || cell.Date == "" {
		return false
	}
	t, err := dates.ParseISO(cell.Date)
	if err != nil {
		return false
	}
	c.Current = model.MonthOf(t)
	return true
}

// SelectMiniDate resolves date against the current mini grid and selects it.
func (c *Controller) SelectMiniDate(date string) bool {
	g := c.MiniGrid()
	cell, ok := g.Cell(date)
	if !ok {
		return false
	}
	return c.SelectMiniDay(cell)
}

// Dialog transitions.

// ActivateDay opens the add dialog for a main-grid cell. Outside cells are
// not activatable.
func (c *Controller) ActivateDay(cell model.Cell) bool {
	if cell.Outside {
		return false
	}
	c.OpenAdd(cell.Date)
	return true
}

// ActivateDate resolves date against the current main grid and activates it.
func (c *Controller) ActivateDate(date string) bool {
	g := c.Grid()
	cell, ok := g.Cell(date)
	if !ok {
		return false
	}
	return c.ActivateDay(cell)
}

// OpenAdd opens an empty dialog prefilled with date.
func (c *Controller) OpenAdd(date string) {
	c.Modal = Modal{State: Adding, Form: Form{Date: date}}
}

// OpenCreate opens the dialog prefilled with today's date.
func (c *Controller) OpenCreate() {
	c.OpenAdd(dates.ISO(c.Today()))
}

// OpenEdit loads the full record into the dialog. Unknown ids leave the
// dialog untouched.
func (c *Controller) OpenEdit(id string) bool {
	ev, ok := c.store.Get(id)
	if !ok {
		return false
	}
	c.Modal = Modal{
		State:   Editing,
		EventID: ev.ID,
		Form: Form{
			Title:       ev.Title,
			Date:        ev.Date,
			Time:        ev.Time,
			Description: ev.Description,
		},
	}
	return true
}

// Edit records an input change and clears that field's error indicator
// without re-validating.
func (c *Controller) Edit(field Field, value string) {
	if !c.Modal.Open() {
		return
	}
	switch field {
	case FieldTitle:
		c.Modal.Form.Title = value
		c.Modal.Errors.Title = ""
	case FieldDate:
		c.Modal.Form.Date = value
		c.Modal.Errors.Date = ""
	case FieldTime:
		c.Modal.Form.Time = value
		c.Modal.Errors.Time = ""
	case FieldDescription:
		c.Modal.Form.Description = value
	}
}

// Submit validates f and commits it as an add or an update depending on the
// dialog state. On validation failure the dialog stays open with per-field
// errors and nothing is written. It reports whether the store was mutated.
func (c *Controller) Submit(f Form) bool {
	if !c.Modal.Open() {
		return false
	}
	clean, errs := Validate(f)
	if !errs.Empty() {
		c.Modal.Form = f
		c.Modal.Errors = errs
		return false
	}

	fields := model.Fields(clean.Title, clean.Date, clean.Time, clean.Description)
	if c.Modal.State == Editing {
		c.store.Update(c.Modal.EventID, fields)
	} else {
		c.store.Add(fields)
	}
	c.close()
	return true
}

// Delete removes the event being edited. It is only valid while Editing.
func (c *Controller) Delete() bool {
	if c.Modal.State != Editing {
		return false
	}
	c.store.Remove(c.Modal.EventID)
	c.close()
	return true
}

// Cancel closes the dialog without touching the store.
func (c *Controller) Cancel() {
	c.close()
}

func (c *Controller) close() {
	c.Modal = Modal{}
}
