package calendar

import (
	"errors"
	"strings"

	"monthcal/internal/dates"
)

// ModalState is the state of the add/edit dialog.
type ModalState int

const (
	Closed ModalState = iota
	Adding
	Editing
)

func (s ModalState) String() string {
	switch s {
	case Adding:
		return "adding"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Field names a form input.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldDescription Field = "description"
)

// ParseField maps a form input name to its Field.
func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case FieldTitle, FieldDate, FieldTime, FieldDescription:
		return f, true
	default:
		return "", false
	}
}

const (
	msgTitleRequired = "Title is required"
	msgDateRequired  = "Date is required"
	msgDateInvalid   = "Date is invalid"
	msgTimeInvalid   = "Time must be HH:MM"
)

// Form is what the form surface submits.
type Form struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// FieldErrors holds the per-field messages shown next to inputs. An empty
// string means the field has no error indicator.
type FieldErrors struct {
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
}

// Empty reports whether no field has an error.
func (e FieldErrors) Empty() bool {
	return e == FieldErrors{}
}

// Modal is the dialog state. EventID is set only while Editing.
type Modal struct {
	State   ModalState  `json:"state"`
	EventID string      `json:"event_id,omitempty"`
	Form    Form        `json:"form"`
	Errors  FieldErrors `json:"errors"`
}

// Open reports whether the dialog is shown.
func (m Modal) Open() bool {
	return m.State != Closed
}

// Heading is the dialog title.
func (m Modal) Heading() string {
	if m.State == Editing {
		return "Edit Event"
	}
	return "New Event"
}

// CanDelete reports whether the delete control is offered.
func (m Modal) CanDelete() bool {
	return m.State == Editing
}

// Validate normalizes f and checks the required fields. It is run on every
// submit regardless of any client-side constraints.
func Validate(f Form) (Form, FieldErrors) {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Description = strings.TrimSpace(f.Description)

	var errs FieldErrors
	if f.Title == "" {
		errs.Title = msgTitleRequired
	}
	if _, err := dates.ParseISO(f.Date); err != nil {
		if errors.Is(err, dates.ErrEmptyDate) {
			errs.Date = msgDateRequired
		} else {
			errs.Date = msgDateInvalid
		}
	}
	if err := dates.ValidClock(f.Time); err != nil {
		errs.Time = msgTimeInvalid
	}
	return f, errs
}
