package store

import (
	"context"
	"fmt"

	"holocal/internal/model"
)

func (s *Store) calendarIndex(id string) int {
	for i, c := range s.calendars {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) Calendars() []model.Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Calendar(nil), s.calendars...)
}

func (s *Store) ActiveCalendar() model.Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.calendarIndex(s.activeCalendar); i >= 0 {
		return s.calendars[i]
	}
	return model.Calendar{}
}

// CreateCalendar assigns a new id and creation time. The active calendar is
// left unchanged.
func (s *Store) CreateCalendar(ctx context.Context, c model.Calendar) (model.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.newID()
	c.CreatedAt = s.now()
	cals := append(append([]model.Calendar(nil), s.calendars...), c)
	if err := s.save(ctx, KeyCalendars, cals); err != nil {
		return model.Calendar{}, err
	}
	s.calendars = cals
	return c, nil
}

func (s *Store) SelectCalendar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calendarIndex(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrCalendarNotFound)
	}
	if err := s.save(ctx, KeyActiveCalendar, id); err != nil {
		return err
	}
	s.activeCalendar = id
	return nil
}

// DeleteCalendar removes a calendar together with its events. Deleting the
// active calendar falls back to the default one.
func (s *Store) DeleteCalendar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calendarIndex(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrCalendarNotFound)
	}
	if s.calendars[i].IsDefault || id == DefaultCalendarID {
		return ErrDefaultCalendar
	}

	events := make([]model.CalendarEvent, 0, len(s.events))
	for _, ev := range s.events {
		if ev.CalendarID != id {
			events = append(events, ev)
		}
	}
	cals := make([]model.Calendar, 0, len(s.calendars)-1)
	cals = append(cals, s.calendars[:i]...)
	cals = append(cals, s.calendars[i+1:]...)

	active := s.activeCalendar
	if active == id {
		active = ""
		if len(cals) > 0 {
			active = defaultCalendarID(cals)
		}
	}

	writes := []pendingWrite{
		{KeyEvents, events, s.events},
		{KeyCalendars, cals, s.calendars},
	}
	if active != "" && active != s.activeCalendar {
		writes = append(writes, pendingWrite{KeyActiveCalendar, active, s.activeCalendar})
	}
	if err := s.saveAll(ctx, writes...); err != nil {
		return err
	}
	s.events, s.calendars, s.activeCalendar = events, cals, active

	if active == "" {
		return s.ensureDefaultCalendar(ctx)
	}
	return nil
}
