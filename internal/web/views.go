package web

//go:generate templ generate

import (
	"net/url"

	"github.com/a-h/templ"

	"monthcal/internal/calendar"
	"monthcal/internal/grid"
	"monthcal/internal/model"
)

// PageView is a snapshot of the controller taken under the server lock, so
// rendering can happen after the lock is released.
type PageView struct {
	Title     string
	MiniTitle string
	Weekdays  [grid.Columns]string
	Main      [grid.Rows][]model.Cell
	Mini      [grid.Rows][]model.Cell
	Modal     calendar.Modal
}

func newPageView(c *calendar.Controller) PageView {
	mainGrid := c.Grid()
	miniGrid := c.MiniGrid()
	return PageView{
		Title:     c.Title(),
		MiniTitle: c.MiniTitle(),
		Weekdays:  grid.WeekdayLabels(c.WeekStart()),
		Main:      mainGrid.Weeks(),
		Mini:      miniGrid.Weeks(),
		Modal:     c.Modal,
	}
}

// withQuery builds an action URL carrying one query parameter.
func withQuery(path, key, value string) templ.SafeURL {
	return templ.URL(path + "?" + url.Values{key: {value}}.Encode())
}
