package main

import (
	"fmt"
	"io"
	"strings"

	"monthcal/internal/calendar"
	"monthcal/internal/dates"
	"monthcal/internal/grid"
)

// printMonth writes the current main grid as a text calendar followed by
// the month's events in grid order. Outside days are bracketed and today is
// starred.
func printMonth(w io.Writer, ctrl *calendar.Controller) {
	g := ctrl.Grid()

	fmt.Fprintln(w, ctrl.Title())
	for _, l := range grid.WeekdayLabels(ctrl.WeekStart()) {
		fmt.Fprintf(w, "%5s", l)
	}
	fmt.Fprintln(w)

	for _, week := range g.Weeks() {
		var sb strings.Builder
		for _, c := range week {
			switch {
			case c.Outside:
				fmt.Fprintf(&sb, " (%2d)", c.Day)
			case c.Today:
				fmt.Fprintf(&sb, "  %2d*", c.Day)
			default:
				fmt.Fprintf(&sb, "  %2d ", c.Day)
			}
		}
		fmt.Fprintln(w, sb.String())
	}

	first := true
	for _, c := range g {
		if c.Outside || len(c.Events) == 0 {
			continue
		}
		if first {
			fmt.Fprintln(w)
			first = false
		}
		for _, ev := range c.Events {
			fmt.Fprintf(w, "%s  %s\n", c.Date, dates.ChipText(ev))
		}
	}
}
