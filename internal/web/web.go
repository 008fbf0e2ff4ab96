package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"holocal/internal/capture"
	"holocal/internal/config"
	"holocal/internal/grid"
	"holocal/internal/ics"
	appLog "holocal/internal/log"
	"holocal/internal/model"
	"holocal/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Server exposes the store over a JSON API and renders the month page.
type Server struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *ics.Fetcher
	loc     *time.Location
	now     func() time.Time
	mux     *http.ServeMux
	limiter *ipLimiter

	// previewToken lets the headless renderer past basic auth on /calendar.
	previewToken string

	// capture renders the month page into the preview file.
	capture func(ctx context.Context, path string) error
}

type Option func(*Server)

// WithClock replaces time.Now for "today" and view defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithCapture replaces the chromedp preview renderer.
func WithCapture(fn func(ctx context.Context, path string) error) Option {
	return func(s *Server) { s.capture = fn }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		fetcher: ics.NewFetcher(15*time.Second, ics.PublicOnly()),
		loc:     resolveLocationOrLocal(cfg.Timezone),
		now:     time.Now,
		mux:     http.NewServeMux(),
		limiter: newIPLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),

		previewToken: uuid.NewString(),
	}
	s.capture = func(ctx context.Context, path string) error {
		o := capture.OptionsFromConfig(cfg)
		if s.basicAuthEnabled() {
			o.Username, o.Password = previewUser, s.previewToken
		}
		return capture.CalendarPNGToFile(ctx, o, path)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	h = s.limiter.middleware(h)
	return logRequests(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		appLog.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/calendars", s.handleListCalendars)
	s.mux.HandleFunc("POST /api/calendars", s.handleCreateCalendar)
	s.mux.HandleFunc("POST /api/calendars/{id}/select", s.handleSelectCalendar)
	s.mux.HandleFunc("DELETE /api/calendars/{id}", s.handleDeleteCalendar)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("GET /api/navigate", s.handleNavigate)

	s.mux.HandleFunc("GET /api/timetables", s.handleListTimetables)
	s.mux.HandleFunc("POST /api/timetables", s.handleSaveTimetable)
	s.mux.HandleFunc("GET /api/timetables/{id}", s.handleGetTimetable)
	s.mux.HandleFunc("DELETE /api/timetables/{id}", s.handleDeleteTimetable)
	s.mux.HandleFunc("POST /api/timetables/{id}/activate", s.handleActivateTimetable)
	s.mux.HandleFunc("GET /api/timetable/template", s.handleSlotTemplate)
	s.mux.HandleFunc("POST /api/timetable/slots", s.handleAddSlot)
	s.mux.HandleFunc("PUT /api/timetable/slots/{id}", s.handleUpdateSlot)
	s.mux.HandleFunc("DELETE /api/timetable/slots/{id}", s.handleDeleteSlot)

	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleSaveSettings)

	s.mux.HandleFunc("GET /calendar.ics", s.handleExportICS)
	s.mux.HandleFunc("POST /api/import", s.handleImportICS)

	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// today is the start of the current day in the display timezone.
func (s *Server) today() time.Time {
	return grid.Today(s.now().In(s.loc))
}

// parseDate reads a YYYY-MM-DD query value in the display timezone. An empty
// value means today.
func (s *Server) parseDate(v string) (time.Time, error) {
	if v == "" {
		return s.today(), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return d, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
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

// writeStoreError maps domain errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrCalendarNotFound),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrTimetableNotFound),
		errors.Is(err, store.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDefaultCalendar),
		errors.Is(err, store.ErrNoActiveTimetable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrInvalidRecurrence),
		errors.Is(err, grid.ErrUnknownView):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
