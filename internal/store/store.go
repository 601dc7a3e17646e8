// Package store is the CRUD layer over the persisted event collection.
//
// The store holds no cache: every call reads the whole collection from the
// backend, applies one change and writes the whole collection back. Storage
// failures never reach the caller: reads fall back to an empty collection and
// failed writes are dropped.
package store

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "calendarEvents"

// Store implements list/add/update/remove over a Backend.
type Store struct {
	backend Backend
	key     string
	newID   func() string

	// shadow is the last collection that failed to persist. While set, List
	// serves it instead of the backend so the session keeps seeing its own
	// writes. The next successful write clears it.
	mu     sync.Mutex
	shadow []model.Event
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDGenerator replaces the random UUID generator, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key of the collection.
func (s *Store) Key() string {
	return s.key
}

// List returns the current collection in insertion order. It never fails:
// a missing key, an unreadable backend or malformed data yield an empty list.
func (s *Store) List() []model.Event {
	s.mu.Lock()
	if s.shadow != nil {
		out := append([]model.Event{}, s.shadow...)
		s.mu.Unlock()
		return out
	}
	s.mu.Unlock()

	if s.backend == nil {
		return []model.Event{}
	}
	data, err := s.backend.Get(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			appLog.Error("store: read failed, using empty collection", err, "key", s.key)
		}
		return []model.Event{}
	}
	if len(data) == 0 {
		return []model.Event{}
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		appLog.Error("store: malformed collection, using empty collection", err, "key", s.key)
		return []model.Event{}
	}
	if events == nil {
		events = []model.Event{}
	}
	return events
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (model.Event, bool) {
	for _, ev := range s.List() {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Add assigns a fresh id, appends the record and persists the collection.
// The created record is returned even if persisting failed.
func (s *Store) Add(fields model.EventFields) model.Event {
	events := s.List()
	ev := fields.Apply(model.Event{ID: s.uniqueID(events)})
	events = append(events, ev)
	s.Persist(events)
	appLog.Debug("store: event added", "id", ev.ID, "date", ev.Date)
	return ev
}

// Update merges fields onto the record with the given id. Unknown ids are a
// silent no-op.
func (s *Store) Update(id string, fields model.EventFields) {
	events := s.List()
	for i := range events {
		if events[i].ID == id {
			events[i] = fields.Apply(events[i])
			s.Persist(events)
			appLog.Debug("store: event updated", "id", id)
			return
		}
	}
}

// Remove deletes the record with the given id if present.
func (s *Store) Remove(id string) {
	events := s.List()
	kept := events[:0]
	for _, ev := range events {
		if ev.ID != id {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(events) {
		return
	}
	s.Persist(kept)
	appLog.Debug("store: event removed", "id", id)
}

// Persist writes the full collection. Failures (medium full or unavailable)
// are logged and swallowed without retry.
func (s *Store) Persist(events []model.Event) {
	if events == nil {
		events = []model.Event{}
	}
	data, err := json.Marshal(events)
	if err == nil {
		if s.backend == nil {
			err = errors.New("no backend configured")
		} else {
			err = s.backend.Set(s.key, data)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		appLog.Error("store: persist failed, keeping session copy", err, "key", s.key, "count", len(events))
		s.shadow = append([]model.Event{}, events...)
		return
	}
	s.shadow = nil
}

func (s *Store) uniqueID(existing []model.Event) string {
	taken := make(map[string]struct{}, len(existing))
	for _, ev := range existing {
		taken[ev.ID] = struct{}{}
	}
	for {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id
		}
	}
}
