package store

import (
	"context"

	"holocal/internal/model"
)

func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SaveSettings normalizes and persists settings. The active timetable is
// managed by ActivateTimetable and is kept as is.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings.Normalize()
	settings.Timetable.ActiveTimetableID = s.settings.Timetable.ActiveTimetableID
	if err := s.save(ctx, KeySettings, settings); err != nil {
		return model.Settings{}, err
	}
	s.settings = settings
	return settings, nil
}
