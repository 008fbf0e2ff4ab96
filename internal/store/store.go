// Package store holds the application state (calendars, events, timetables,
// settings) and persists it into a kv.Store. State is loaded once on Open and
// written back on every mutation, one key per collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"holocal/internal/kv"
	appLog "holocal/internal/log"
	"holocal/internal/model"
)

// Logical keys under which collections are persisted.
const (
	KeyCalendars      = "user_calendars"
	KeyActiveCalendar = "active_calendar"
	KeyEvents         = "calendar_events"
	KeySettings       = "calendar_settings"
	KeyTimetables     = "calendar_timetables"
)

const DefaultCalendarID = "default"

var (
	ErrCalendarNotFound  = errors.New("calendar not found")
	ErrDefaultCalendar   = errors.New("default calendar cannot be deleted")
	ErrEventNotFound     = errors.New("event not found")
	ErrTimetableNotFound = errors.New("timetable not found")
	ErrSlotNotFound      = errors.New("timetable slot not found")
	ErrNoActiveTimetable = errors.New("no active timetable")
)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	kv    kv.Store
	now   func() time.Time
	newID func() string

	calendars      []model.Calendar
	activeCalendar string
	events         []model.CalendarEvent
	settings       model.Settings
	timetables     []model.Timetable
}

type Option func(*Store)

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open loads every collection from backend. Missing keys start empty. When
// no calendar exists yet a default one is created and selected.
func Open(ctx context.Context, backend kv.Store, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       backend,
		now:      time.Now,
		newID:    uuid.NewString,
		settings: model.DefaultSettings(),
	}
	for _, o := range opts {
		o(s)
	}

	loads := []struct {
		key string
		dst any
	}{
		{KeyCalendars, &s.calendars},
		{KeyActiveCalendar, &s.activeCalendar},
		{KeyEvents, &s.events},
		{KeySettings, &s.settings},
		{KeyTimetables, &s.timetables},
	}
	for _, l := range loads {
		if err := s.load(ctx, l.key, l.dst); err != nil {
			return nil, err
		}
	}
	s.settings.Normalize()

	if err := s.ensureDefaultCalendar(ctx); err != nil {
		return nil, err
	}

	appLog.Info("store opened",
		"calendars", len(s.calendars),
		"events", len(s.events),
		"timetables", len(s.timetables),
		"active_calendar", s.activeCalendar,
	)
	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		appLog.Error("store save failed", err, "key", key)
		return fmt.Errorf("save %s: %w", key, err)
	}
	appLog.Debug("store saved", "key", key, "bytes", len(data))
	return nil
}

// pendingWrite is one key of a mutation spanning several keys. previous is
// written back when a later key fails.
type pendingWrite struct {
	key      string
	value    any
	previous any
}

// saveAll persists writes in order. If one fails, the keys already written
// are restored to their previous values and the first error is returned.
func (s *Store) saveAll(ctx context.Context, writes ...pendingWrite) error {
	for i, w := range writes {
		if err := s.save(ctx, w.key, w.value); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := s.save(ctx, writes[j].key, writes[j].previous); rerr != nil {
					appLog.Error("store rollback failed", rerr, "key", writes[j].key)
				}
			}
			return err
		}
	}
	return nil
}

// defaultCalendarID picks the calendar flagged as default, else the first.
func defaultCalendarID(cals []model.Calendar) string {
	for _, c := range cals {
		if c.IsDefault {
			return c.ID
		}
	}
	return cals[0].ID
}

func (s *Store) ensureDefaultCalendar(ctx context.Context) error {
	if len(s.calendars) == 0 {
		cals := []model.Calendar{{
			ID:          DefaultCalendarID,
			Name:        "Main Calendar",
			Description: "Your primary calendar",
			Color:       "#00ff88",
			IsDefault:   true,
			CreatedAt:   s.now(),
		}}
		if err := s.save(ctx, KeyCalendars, cals); err != nil {
			return err
		}
		s.calendars = cals
	}
	if s.calendarIndex(s.activeCalendar) >= 0 {
		return nil
	}
	id := defaultCalendarID(s.calendars)
	if err := s.save(ctx, KeyActiveCalendar, id); err != nil {
		return err
	}
	s.activeCalendar = id
	return nil
}

// Snapshot is a copy of the state a view needs for one render.
type Snapshot struct {
	Calendars      []model.Calendar
	ActiveCalendar model.Calendar
	// Events holds only the active calendar's events, in stored order.
	Events    []model.CalendarEvent
	Timetable *model.Timetable
	Settings  model.Settings
}

// Snapshot copies the current state; callers may keep or modify it freely.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Calendars: append([]model.Calendar(nil), s.calendars...),
		Events:    s.activeEventsLocked(),
		Settings:  s.settings,
	}
	if i := s.calendarIndex(s.activeCalendar); i >= 0 {
		snap.ActiveCalendar = s.calendars[i]
	}
	if tt, ok := s.activeTimetableLocked(); ok {
		snap.Timetable = &tt
	}
	return snap
}
