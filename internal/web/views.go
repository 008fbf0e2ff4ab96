package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"holocal/internal/grid"
	appLog "holocal/internal/log"
	"holocal/internal/model"
)

//go:embed templates/calendar.html
var templateFS embed.FS

var calendarPage = template.Must(template.ParseFS(templateFS, "templates/calendar.html"))

// viewResponse is the JSON response shape for /api/view.
type viewResponse struct {
	Title string `json:"title"`
	grid.View
}

// handleView renders one view as JSON.
//
// GET /api/view?kind=month|week|day|timetable&date=YYYY-MM-DD
//   - kind: defaults to the saved default view
//   - date: defaults to today in the display timezone
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := s.store.Snapshot()

	kind := model.ViewKind(q.Get("kind"))
	if kind == "" {
		kind = snap.Settings.DefaultView
	}
	ref, err := s.parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := grid.Build(kind, ref, s.now().In(s.loc), snap.Events, snap.Timetable)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Title: grid.Title(kind, ref), View: v})
}

type navigateResponse struct {
	Kind  model.ViewKind `json:"kind"`
	Date  string         `json:"date"`
	Title string         `json:"title"`
}

// handleNavigate moves the reference date by delta periods of kind. An empty
// date starts from today, so delta=0 is the "today" control.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := model.ViewKind(q.Get("kind"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown view kind")
		return
	}
	ref, err := s.parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	next := grid.Shift(kind, ref, parseIntDefault(q.Get("delta"), 0))
	writeJSON(w, http.StatusOK, navigateResponse{
		Kind:  kind,
		Date:  next.Format(time.DateOnly),
		Title: grid.Title(kind, next),
	})
}

// handleSlotTemplate proposes a new slot for an empty timetable cell.
//
// GET /api/timetable/template?day=1&label=09:00
func (s *Server) handleSlotTemplate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day := parseIntDefault(q.Get("day"), -1)
	label := q.Get("label")
	if day < 0 || day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0-6")
		return
	}
	if _, ok := model.ClockHour(label); !ok {
		writeError(w, http.StatusBadRequest, "label must be HH:mm")
		return
	}
	writeJSON(w, http.StatusOK, grid.NewSlotTemplate(day, label))
}

type pageEvent struct {
	Time  string
	Title string
	Color string
}

type pageDay struct {
	Day     int
	InMonth bool
	Today   bool
	Events  []pageEvent
	More    string
}

type pageData struct {
	Title    string
	Theme    model.Theme
	Calendar model.Calendar
	Date     string
	Prev     string
	Next     string
	Weekdays []string
	Weeks    [][]pageDay
}

// handleCalendarPage server-renders the month around ?date for browsers and
// the preview renderer. The root element carries data-ready="true".
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	ref, err := s.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := s.store.Snapshot()
	v, err := grid.Build(model.ViewMonth, ref, s.now().In(s.loc), snap.Events, nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	clock := "3:04pm"
	if snap.Settings.TimeFormat == "24h" {
		clock = "15:04"
	}

	data := pageData{
		Title:    grid.Title(model.ViewMonth, ref),
		Theme:    snap.Settings.Theme,
		Calendar: snap.ActiveCalendar,
		Date:     ref.Format(time.DateOnly),
		Prev:     grid.Shift(model.ViewMonth, ref, -1).Format(time.DateOnly),
		Next:     grid.Shift(model.ViewMonth, ref, 1).Format(time.DateOnly),
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		data.Weekdays = append(data.Weekdays, d.String()[:3])
	}
	var week []pageDay
	for _, md := range v.Month.Days {
		pd := pageDay{
			Day:     md.Date.Day(),
			InMonth: md.InMonth,
			Today:   md.Today,
			More:    md.Overflow,
		}
		for _, ev := range md.Events {
			pe := pageEvent{Title: ev.Title, Color: ev.Color}
			if !ev.AllDay {
				pe.Time = ev.StartTime.In(s.loc).Format(clock)
			}
			pd.Events = append(pd.Events, pe)
		}
		week = append(week, pd)
		if len(week) == 7 {
			data.Weeks = append(data.Weeks, week)
			week = nil
		}
	}

	var buf bytes.Buffer
	if err := calendarPage.Execute(&buf, data); err != nil {
		appLog.Error("calendar page render failed", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
