package web

import (
	"net/http"
	"strings"

	"holocal/internal/model"
)

type calendarsResponse struct {
	Calendars []model.Calendar `json:"calendars"`
	ActiveID  string           `json:"activeId"`
}

func (s *Server) handleListCalendars(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, calendarsResponse{
		Calendars: s.store.Calendars(),
		ActiveID:  s.store.ActiveCalendar().ID,
	})
}

func (s *Server) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	var c model.Calendar
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, http.StatusBadRequest, "calendar name is required")
		return
	}
	c.IsDefault = false
	created, err := s.store.CreateCalendar(r.Context(), c)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSelectCalendar(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SelectCalendar(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.ActiveCalendar())
}

func (s *Server) handleDeleteCalendar(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCalendar(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListEvents returns the active calendar's events, or those of
// ?calendar=<id>.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("calendar")
	if id == "" {
		writeJSON(w, http.StatusOK, s.store.ActiveEvents())
		return
	}
	events, err := s.store.EventsOf(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.CalendarEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.store.CreateEvent(r.Context(), ev)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Event(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.CalendarEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.store.UpdateEvent(r.Context(), r.PathValue("id"), ev)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTimetables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Timetables())
}

// handleSaveTimetable creates a timetable, or replaces one when the body
// carries a known id.
func (s *Server) handleSaveTimetable(w http.ResponseWriter, r *http.Request) {
	var tt model.Timetable
	if err := decodeJSON(w, r, &tt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.store.SaveTimetable(r.Context(), tt)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetTimetable(w http.ResponseWriter, r *http.Request) {
	tt, err := s.store.Timetable(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tt)
}

func (s *Server) handleDeleteTimetable(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTimetable(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateTimetable(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ActivateTimetable(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	tt, _ := s.store.ActiveTimetable()
	writeJSON(w, http.StatusOK, tt)
}

func (s *Server) handleAddSlot(w http.ResponseWriter, r *http.Request) {
	var slot model.TimetableSlot
	if err := decodeJSON(w, r, &slot); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if slot.Day < 0 || slot.Day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0-6")
		return
	}
	added, err := s.store.AddSlot(r.Context(), slot)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request) {
	var slot model.TimetableSlot
	if err := decodeJSON(w, r, &slot); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if slot.Day < 0 || slot.Day > 6 {
		writeError(w, http.StatusBadRequest, "day must be 0-6")
		return
	}
	slot.ID = r.PathValue("id")
	if err := s.store.UpdateSlot(r.Context(), slot); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSlot(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Settings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.store.SaveSettings(r.Context(), settings)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
