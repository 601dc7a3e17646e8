package ics

import (
	"time"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Store is the subset of the event store used by imports and publishing.
type Store interface {
	List() []model.Event
	Add(fields model.EventFields) model.Event
}

// ImportResult summarizes an import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Import parses body and adds every event not already present. An event is
// a duplicate when its UID maps to an existing id, or when an event with the
// same date, time and title exists.
func Import(s Store, body []byte, loc *time.Location) (ImportResult, error) {
	var res ImportResult

	parsed, err := ParseEvents(body, loc)
	if err != nil {
		return res, err
	}

	existing := s.List()
	ids := make(map[string]struct{}, len(existing))
	keys := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		ids[ev.ID] = struct{}{}
		keys[dedupKey(ev)] = struct{}{}
	}

	for _, ev := range parsed {
		if _, dup := ids[ev.ID]; dup && ev.ID != "" {
			res.Skipped++
			continue
		}
		if _, dup := keys[dedupKey(ev)]; dup {
			res.Skipped++
			continue
		}
		s.Add(model.Fields(ev.Title, ev.Date, ev.Time, ev.Description))
		keys[dedupKey(ev)] = struct{}{}
		res.Added++
	}

	appLog.Info("ics import completed", "added", res.Added, "skipped", res.Skipped)
	return res, nil
}

func dedupKey(ev model.Event) string {
	return ev.Date + "\x00" + ev.Time + "\x00" + ev.Title
}
