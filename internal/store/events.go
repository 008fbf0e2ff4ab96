package store

import (
	"context"
	"fmt"

	appLog "holocal/internal/log"
	"holocal/internal/model"
)

func (s *Store) eventIndex(id string) int {
	for i, ev := range s.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}

// cloneEvent copies ev so the result shares no recurrence data with it.
func cloneEvent(ev model.CalendarEvent) model.CalendarEvent {
	if ev.RecurrenceRule != nil {
		rule := *ev.RecurrenceRule
		if rule.EndDate != nil {
			end := *rule.EndDate
			rule.EndDate = &end
		}
		rule.DaysOfWeek = append([]int(nil), rule.DaysOfWeek...)
		ev.RecurrenceRule = &rule
	}
	return ev
}

func (s *Store) eventsWhere(keep func(model.CalendarEvent) bool) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range s.events {
		if keep(ev) {
			out = append(out, cloneEvent(ev))
		}
	}
	return out
}

func (s *Store) activeEventsLocked() []model.CalendarEvent {
	return s.eventsWhere(func(ev model.CalendarEvent) bool { return ev.CalendarID == s.activeCalendar })
}

// Events returns every stored event across all calendars.
func (s *Store) Events() []model.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsWhere(func(model.CalendarEvent) bool { return true })
}

// ActiveEvents returns the events of the active calendar in stored order.
func (s *Store) ActiveEvents() []model.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeEventsLocked()
}

// EventsOf returns the events of one calendar.
func (s *Store) EventsOf(calendarID string) ([]model.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.calendarIndex(calendarID) < 0 {
		return nil, fmt.Errorf("events of %q: %w", calendarID, ErrCalendarNotFound)
	}
	return s.eventsWhere(func(ev model.CalendarEvent) bool { return ev.CalendarID == calendarID }), nil
}

func (s *Store) Event(id string) (model.CalendarEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.eventIndex(id); i >= 0 {
		return cloneEvent(s.events[i]), nil
	}
	return model.CalendarEvent{}, fmt.Errorf("event %q: %w", id, ErrEventNotFound)
}

// prepare validates fields shared by create and update. Inverted time
// ranges are accepted; views place events by start time only.
func (s *Store) prepare(ev *model.CalendarEvent) error {
	if ev.CalendarID == "" {
		ev.CalendarID = s.activeCalendar
	}
	if s.calendarIndex(ev.CalendarID) < 0 {
		return fmt.Errorf("calendar %q: %w", ev.CalendarID, ErrCalendarNotFound)
	}
	if ev.RecurrenceRule != nil {
		if err := ev.RecurrenceRule.Validate(); err != nil {
			return err
		}
	}
	if !ev.IsRecurring {
		ev.RecurrenceRule = nil
	}
	if !ev.HasTimer {
		ev.TimerDuration = 0
	}
	if ev.Inverted() {
		appLog.Warn("event ends before it starts", "title", ev.Title,
			"start", ev.StartTime, "end", ev.EndTime)
	}
	return nil
}

// CreateEvent stores ev with a fresh id and creation time. An empty
// CalendarID means the active calendar.
func (s *Store) CreateEvent(ctx context.Context, ev model.CalendarEvent) (model.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(&ev); err != nil {
		return model.CalendarEvent{}, err
	}
	ev.ID = s.newID()
	ev.CreatedAt = s.now()

	events := append(append([]model.CalendarEvent(nil), s.events...), cloneEvent(ev))
	if err := s.save(ctx, KeyEvents, events); err != nil {
		return model.CalendarEvent{}, err
	}
	s.events = events
	return ev, nil
}

// ImportEvents adds events in bulk to calendarID with a single write.
func (s *Store) ImportEvents(ctx context.Context, calendarID string, evs []model.CalendarEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := append([]model.CalendarEvent(nil), s.events...)
	for _, ev := range evs {
		ev.CalendarID = calendarID
		if err := s.prepare(&ev); err != nil {
			return 0, err
		}
		ev.ID = s.newID()
		ev.CreatedAt = s.now()
		events = append(events, cloneEvent(ev))
	}
	if err := s.save(ctx, KeyEvents, events); err != nil {
		return 0, err
	}
	s.events = events
	return len(evs), nil
}

// UpdateEvent replaces the event's fields. Identity and creation time are
// kept; an empty CalendarID keeps the current calendar.
func (s *Store) UpdateEvent(ctx context.Context, id string, ev model.CalendarEvent) (model.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(id)
	if i < 0 {
		return model.CalendarEvent{}, fmt.Errorf("failed to update event with id %q: %w", id, ErrEventNotFound)
	}
	cur := s.events[i]
	if ev.CalendarID == "" {
		ev.CalendarID = cur.CalendarID
	}
	if err := s.prepare(&ev); err != nil {
		return model.CalendarEvent{}, err
	}
	ev.ID = cur.ID
	ev.CreatedAt = cur.CreatedAt

	events := append([]model.CalendarEvent(nil), s.events...)
	events[i] = cloneEvent(ev)
	if err := s.save(ctx, KeyEvents, events); err != nil {
		return model.CalendarEvent{}, err
	}
	s.events = events
	return ev, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(id)
	if i < 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, ErrEventNotFound)
	}
	events := make([]model.CalendarEvent, 0, len(s.events)-1)
	events = append(events, s.events[:i]...)
	events = append(events, s.events[i+1:]...)
	if err := s.save(ctx, KeyEvents, events); err != nil {
		return err
	}
	s.events = events
	return nil
}
