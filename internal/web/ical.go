package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"

	"holocal/internal/ics"
	appLog "holocal/internal/log"
	"holocal/internal/model"
)

// findCalendar resolves ?calendar=<id>, defaulting to the active calendar.
func (s *Server) findCalendar(id string) (model.Calendar, bool) {
	if id == "" {
		return s.store.ActiveCalendar(), true
	}
	for _, c := range s.store.Calendars() {
		if c.ID == id {
			return c, true
		}
	}
	return model.Calendar{}, false
}

// handleExportICS serves a calendar as an iCalendar feed.
//
// GET /calendar.ics?calendar=<id>
func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	cal, ok := s.findCalendar(r.URL.Query().Get("calendar"))
	if !ok {
		writeError(w, http.StatusNotFound, "calendar not found")
		return
	}
	events, err := s.store.EventsOf(cal.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := ics.Export(&buf, cal, events, s.now()); err != nil {
		appLog.Error("ics export failed", err, "calendar_id", cal.ID)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+cal.ID+`.ics"`)
	_, _ = w.Write(buf.Bytes())
}

type importResponse struct {
	CalendarID string `json:"calendarId"`
	Imported   int    `json:"imported"`
}

// handleImportICS adds the events of an ICS payload to a calendar. The
// payload is the request body, or the feed at ?url= when given.
//
// POST /api/import?calendar=<id>&url=<feed>
func (s *Server) handleImportICS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cal, ok := s.findCalendar(q.Get("calendar"))
	if !ok {
		writeError(w, http.StatusNotFound, "calendar not found")
		return
	}

	var body []byte
	if feed := q.Get("url"); feed != "" {
		b, err := s.fetcher.Fetch(r.Context(), feed)
		if errors.Is(err, ics.ErrPrivateAddress) {
			appLog.Warn("ics import refused non-public feed", "error", err.Error())
			writeError(w, http.StatusBadRequest, "feed address is not allowed")
			return
		}
		if err != nil {
			appLog.Error("ics import fetch failed", err)
			writeError(w, http.StatusBadGateway, "failed to fetch feed")
			return
		}
		body = b
	} else {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, ics.MaxFeedSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		body = b
	}

	events, err := ics.Import(body, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ICS: "+err.Error())
		return
	}
	n, err := s.store.ImportEvents(r.Context(), cal.ID, events)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	appLog.Info("ics imported", "calendar_id", cal.ID, "count", n)
	writeJSON(w, http.StatusOK, importResponse{CalendarID: cal.ID, Imported: n})
}

// handlePreview serves the last rendered PNG preview from disk. ?refresh=1
// renders a fresh one first.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := s.cfg.Preview.Output
	if path == "" {
		writeError(w, http.StatusNotFound, "preview disabled")
		return
	}
	if r.URL.Query().Get("refresh") == "1" {
		if err := s.capture(r.Context(), path); err != nil {
			appLog.Error("preview capture failed", err)
			writeError(w, http.StatusInternalServerError, "capture failed")
			return
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "no preview rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
