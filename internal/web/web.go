package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"

	"monthcal/internal/auth"
	"monthcal/internal/calendar"
	"monthcal/internal/config"
	"monthcal/internal/dates"
	appLog "monthcal/internal/log"
)

// Server serves the month view as HTML forms plus a JSON API.
// All handlers share one calendar.Controller; every action takes mu so a
// request sees one mutation and one rebuild at a time.
type Server struct {
	cfg   *config.Config
	debug bool
	mux   *http.ServeMux

	mu   sync.Mutex
	ctrl *calendar.Controller
}

// embeddedStatic holds the stylesheet referenced by the page layout.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server around ctrl.
func NewServer(cfg *config.Config, ctrl *calendar.Controller, debug bool) *Server {
	s := &Server{
		cfg:   cfg,
		debug: debug,
		mux:   http.NewServeMux(),
		ctrl:  ctrl,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if creds := s.credentials(); creds.Enabled() {
		appLog.Info("HTTP basic auth enabled", "user", creds.Username)
		return basicAuthMiddleware(creds, h)
	}
	return h
}

func (s *Server) credentials() auth.Credentials {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return auth.Credentials{}
	}
	return auth.Credentials{
		Username: s.cfg.BasicAuth.Username,
		Password: s.cfg.BasicAuth.Password,
	}
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func basicAuthMiddleware(creds auth.Credentials, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health is always unauthenticated.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !creds.Check(u, p) {
			w.Header().Set("WWW-Authenticate", `Basic realm="MonthCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+ln.Addr().String(), "debug", s.debug)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /static/", s.staticFileServer())

	// HTML surface. Actions redirect back to the page.
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("POST /nav/{dir}", s.handleNav)
	s.mux.HandleFunc("POST /mini/select", s.handleMiniSelect)
	s.mux.HandleFunc("POST /mini/{dir}", s.handleMiniNav)
	s.mux.HandleFunc("POST /modal/add", s.handleModalAdd)
	s.mux.HandleFunc("POST /modal/create", s.handleModalCreate)
	s.mux.HandleFunc("POST /modal/edit", s.handleModalEdit)
	s.mux.HandleFunc("POST /modal/field", s.handleModalField)
	s.mux.HandleFunc("POST /modal/submit", s.handleModalSubmit)
	s.mux.HandleFunc("POST /modal/delete", s.handleModalDelete)
	s.mux.HandleFunc("POST /modal/cancel", s.handleModalCancel)

	// JSON API.
	s.mux.HandleFunc("GET /api/grid", s.handleAPIGrid)
	s.mux.HandleFunc("GET /api/mini", s.handleAPIMini)
	s.mux.HandleFunc("GET /api/events", s.handleAPIListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleAPICreateEvent)
	s.mux.HandleFunc("PATCH /api/events/{id}", s.handleAPIUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleAPIDeleteEvent)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExport)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// staticFileServer serves the embedded assets under /static/.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static assets not available", http.StatusServiceUnavailable)
		})
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// handlePage renders the full month view. ?month=YYYY-MM jumps first.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if q := r.URL.Query().Get("month"); q != "" {
		m, err := dates.ParseMonth(q)
		if err != nil {
			s.mu.Unlock()
			http.Error(w, "invalid month, want YYYY-MM", http.StatusBadRequest)
			return
		}
		s.ctrl.JumpMonth(m)
	}
	view := newPageView(s.ctrl)
	s.mu.Unlock()

	templ.Handler(Page(view), templ.WithErrorHandler(renderErrorHandler)).ServeHTTP(w, r)
}

func renderErrorHandler(r *http.Request, err error) http.Handler {
	appLog.Error("failed to render page", err, "path", r.URL.Path)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "render failed", http.StatusInternalServerError)
	})
}

// act runs fn under the controller lock and redirects back to the page.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(c *calendar.Controller)) {
	s.mu.Lock()
	fn(s.ctrl)
	s.mu.Unlock()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	var fn func(c *calendar.Controller)
	switch r.PathValue("dir") {
	case "prev":
		fn = (*calendar.Controller).Prev
	case "next":
		fn = (*calendar.Controller).Next
	case "today":
		fn = (*calendar.Controller).GoToday
	default:
		http.NotFound(w, r)
		return
	}
	s.act(w, r, fn)
}

func (s *Server) handleMiniNav(w http.ResponseWriter, r *http.Request) {
	var fn func(c *calendar.Controller)
	switch r.PathValue("dir") {
	case "prev":
		fn = (*calendar.Controller).MiniPrev
	case "next":
		fn = (*calendar.Controller).MiniNext
	default:
		http.NotFound(w, r)
		return
	}
	s.act(w, r, fn)
}

func (s *Server) handleMiniSelect(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	s.act(w, r, func(c *calendar.Controller) { c.SelectMiniDate(date) })
}

func (s *Server) handleModalAdd(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	s.act(w, r, func(c *calendar.Controller) { c.ActivateDate(date) })
}

func (s *Server) handleModalCreate(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, (*calendar.Controller).OpenCreate)
}

func (s *Server) handleModalEdit(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	s.act(w, r, func(c *calendar.Controller) { c.OpenEdit(id) })
}

// handleModalField records a single input change in the open dialog and
// clears that field's error. The dialog script calls it while typing.
func (s *Server) handleModalField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	field, ok := calendar.ParseField(r.Form.Get("name"))
	if !ok {
		http.Error(w, "unknown field", http.StatusBadRequest)
		return
	}
	value := r.Form.Get("value")

	s.mu.Lock()
	s.ctrl.Edit(field, value)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModalSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := calendar.Form{
		Title:       r.PostForm.Get("title"),
		Date:        r.PostForm.Get("date"),
		Time:        r.PostForm.Get("time"),
		Description: r.PostForm.Get("description"),
	}
	s.act(w, r, func(c *calendar.Controller) { c.Submit(form) })
}

func (s *Server) handleModalDelete(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(c *calendar.Controller) { c.Delete() })
}

func (s *Server) handleModalCancel(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, (*calendar.Controller).Cancel)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
