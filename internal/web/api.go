package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"monthcal/internal/calendar"
	"monthcal/internal/dates"
	"monthcal/internal/grid"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// maxBodyBytes caps JSON and ICS request bodies.
const maxBodyBytes = 1 << 20

// gridResponse is the JSON shape for /api/grid and /api/mini.
type gridResponse struct {
	Month     string               `json:"month"`
	Title     string               `json:"title"`
	WeekStart string               `json:"week_start"`
	Weekdays  [grid.Columns]string `json:"weekdays"`
	Cells     []model.Cell         `json:"cells"`
}

// validationResponse is returned with 400 when a submitted event fails
// validation.
type validationResponse struct {
	Error  string               `json:"error"`
	Fields calendar.FieldErrors `json:"fields"`
}

// eventPatch is the PATCH body. Absent fields are left unchanged.
type eventPatch struct {
	Title       *string `json:"title"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
}

// monthParam resolves ?month=YYYY-MM, falling back to def.
func monthParam(r *http.Request, def model.Month) (model.Month, error) {
	q := r.URL.Query().Get("month")
	if q == "" {
		return def, nil
	}
	return dates.ParseMonth(q)
}

func (s *Server) handleAPIGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m, err := monthParam(r, s.ctrl.Current)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
		return
	}
	g := s.ctrl.GridFor(m)
	start := s.ctrl.WeekStart()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, newGridResponse(m, start, g))
}

func (s *Server) handleAPIMini(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m, err := monthParam(r, s.ctrl.Mini)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
		return
	}
	g := s.ctrl.MiniGridFor(m)
	start := s.ctrl.WeekStart()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, newGridResponse(m, start, g))
}

func newGridResponse(m model.Month, start time.Weekday, g grid.Grid) gridResponse {
	return gridResponse{
		Month:     dates.FormatMonth(m),
		Title:     dates.MonthTitle(m),
		WeekStart: start.String(),
		Weekdays:  grid.WeekdayLabels(start),
		Cells:     g[:],
	}
}

func (s *Server) handleAPIListEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.ctrl.Store().List()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleAPICreateEvent(w http.ResponseWriter, r *http.Request) {
	var form calendar.Form
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	clean, errs := calendar.Validate(form)
	if !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: errs})
		return
	}

	s.mu.Lock()
	ev := s.ctrl.Store().Add(model.Fields(clean.Title, clean.Date, clean.Time, clean.Description))
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleAPIUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch eventPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.ctrl.Store()
	existing, ok := store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	merged := model.EventFields{
		Title:       patch.Title,
		Date:        patch.Date,
		Time:        patch.Time,
		Description: patch.Description,
	}.Apply(existing)

	clean, errs := calendar.Validate(calendar.Form{
		Title:       merged.Title,
		Date:        merged.Date,
		Time:        merged.Time,
		Description: merged.Description,
	})
	if !errs.Empty() {
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "validation failed", Fields: errs})
		return
	}

	fields := model.Fields(clean.Title, clean.Date, clean.Time, clean.Description)
	store.Update(id, fields)
	writeJSON(w, http.StatusOK, fields.Apply(existing))
}

func (s *Server) handleAPIDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	store := s.ctrl.Store()
	if _, ok := store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	store.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the collection as an iCalendar document.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.ctrl.Store().List()
	loc := s.ctrl.Location()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if err := ics.Write(w, events, ics.ExportOptions{Name: "MonthCal", Location: loc}); err != nil {
		appLog.Error("ics export failed", err)
	}
}

// handleImport adds the VEVENTs of an uploaded .ics body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	s.mu.Lock()
	res, err := ics.Import(s.ctrl.Store(), body, s.ctrl.Location())
	s.mu.Unlock()
	if err != nil {
		appLog.Warn("ics import rejected", "err", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}
