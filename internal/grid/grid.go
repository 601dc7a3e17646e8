// Package grid builds the fixed 6x7 month grids shown by the main and mini
// calendars.
//
// A grid always has 42 cells. Leading cells are filled with the tail of the
// previous month and trailing cells with the head of the next month; those
// filler cells are flagged Outside and never carry the Today flag.
package grid

import (
	"sort"
	"strings"
	"time"

	"monthcal/internal/dates"
	"monthcal/internal/model"
)

const (
	Columns = 7
	Rows    = 6
	Size    = Columns * Rows
)

// Grid is one rendered month.
type Grid [Size]model.Cell

// Options tunes grid layout.
type Options struct {
	// WeekStart is the weekday shown in the first column. Sunday when zero.
	WeekStart time.Weekday
}

// Build lays out ref as 42 cells and attaches events to the cell whose
// resolved date equals the event date. today only drives the Today flag;
// it is compared by calendar date, not by timestamp.
//
// Events on the same day are ordered with untimed events first, then by
// ascending HH:MM time; ties keep their order in events.
func Build(ref model.Month, events []model.Event, today time.Time, opts Options) Grid {
	g := layout(ref, today, opts)

	byDate := make(map[string][]model.Event, len(events))
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}
	for i := range g {
		day, ok := byDate[g[i].Date]
		if !ok {
			continue
		}
		sortSameDay(day)
		g[i].Events = day
	}
	return g
}

// BuildMini lays out ref without attaching events. The mini calendar keeps
// its own reference month and is only used to pick a month.
func BuildMini(ref model.Month, today time.Time, opts Options) Grid {
	return layout(ref, today, opts)
}

func layout(ref model.Month, today time.Time, opts Options) Grid {
	var g Grid

	first := ref.First(time.UTC)
	firstWeekday := (int(first.Weekday()) - int(opts.WeekStart) + Columns) % Columns
	daysInMonth := ref.Days()
	prev := ref.Add(-1)
	next := ref.Add(1)
	daysInPrevMonth := prev.Days()
	todayStr := dates.ISO(today)

	for i := 0; i < Size; i++ {
		dayOffset := i - firstWeekday + 1

		var cell model.Cell
		switch {
		case dayOffset < 1:
			cell.Day = daysInPrevMonth + dayOffset
			cell.Date = dates.FormatISO(prev.Year, prev.Month, cell.Day)
			cell.Outside = true
		case dayOffset > daysInMonth:
			cell.Day = dayOffset - daysInMonth
			cell.Date = dates.FormatISO(next.Year, next.Month, cell.Day)
			cell.Outside = true
		default:
			cell.Day = dayOffset
			cell.Date = dates.FormatISO(ref.Year, ref.Month, dayOffset)
			cell.Today = cell.Date == todayStr
		}
		g[i] = cell
	}
	return g
}

func sortSameDay(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Time, events[j].Time
		if a == "" || b == "" {
			return a == "" && b != ""
		}
		return strings.Compare(a, b) < 0
	})
}

// Weeks splits the grid into its six rows.
func (g *Grid) Weeks() [Rows][]model.Cell {
	var weeks [Rows][]model.Cell
	for r := 0; r < Rows; r++ {
		weeks[r] = g[r*Columns : (r+1)*Columns]
	}
	return weeks
}

// Cell returns the cell for an ISO date, if the grid shows it.
func (g *Grid) Cell(date string) (model.Cell, bool) {
	for _, c := range g {
		if c.Date == date {
			return c, true
		}
	}
	return model.Cell{}, false
}

// InMonth counts the cells that belong to the reference month.
func (g *Grid) InMonth() int {
	n := 0
	for _, c := range g {
		if !c.Outside {
			n++
		}
	}
	return n
}

// WeekdayLabels returns one-letter column headers starting at start.
func WeekdayLabels(start time.Weekday) [Columns]string {
	var out [Columns]string
	for i := range out {
		out[i] = ((start + time.Weekday(i)) % Columns).String()[:1]
	}
	return out
}
