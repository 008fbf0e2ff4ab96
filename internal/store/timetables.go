package store

import (
	"context"
	"fmt"

	"holocal/internal/model"
)

func (s *Store) timetableIndex(id string) int {
	for i, tt := range s.timetables {
		if tt.ID == id {
			return i
		}
	}
	return -1
}

func cloneTimetable(tt model.Timetable) model.Timetable {
	tt.Slots = append([]model.TimetableSlot(nil), tt.Slots...)
	return tt
}

func (s *Store) cloneTimetables() []model.Timetable {
	out := make([]model.Timetable, len(s.timetables))
	for i, tt := range s.timetables {
		out[i] = cloneTimetable(tt)
	}
	return out
}

func (s *Store) activeTimetableLocked() (model.Timetable, bool) {
	id := s.settings.Timetable.ActiveTimetableID
	if id == "" {
		return model.Timetable{}, false
	}
	if i := s.timetableIndex(id); i >= 0 {
		return cloneTimetable(s.timetables[i]), true
	}
	return model.Timetable{}, false
}

func (s *Store) Timetables() []model.Timetable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneTimetables()
}

func (s *Store) Timetable(id string) (model.Timetable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.timetableIndex(id); i >= 0 {
		return cloneTimetable(s.timetables[i]), nil
	}
	return model.Timetable{}, fmt.Errorf("timetable %q: %w", id, ErrTimetableNotFound)
}

// ActiveTimetable returns the timetable selected in settings, if any.
func (s *Store) ActiveTimetable() (model.Timetable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTimetableLocked()
}

// SaveTimetable creates tt when its id is empty or unknown, otherwise
// replaces the stored timetable keeping its creation time. Slots without an
// id get one.
func (s *Store) SaveTimetable(ctx context.Context, tt model.Timetable) (model.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tt = cloneTimetable(tt)
	if tt.Slots == nil {
		tt.Slots = []model.TimetableSlot{}
	}
	for i := range tt.Slots {
		if tt.Slots[i].ID == "" {
			tt.Slots[i].ID = s.newID()
		}
	}

	tts := s.cloneTimetables()
	if i := s.timetableIndex(tt.ID); tt.ID != "" && i >= 0 {
		tt.CreatedAt = tts[i].CreatedAt
		tt.IsActive = s.settings.Timetable.ActiveTimetableID == tt.ID
		tts[i] = tt
	} else {
		tt.ID = s.newID()
		tt.CreatedAt = s.now()
		tt.IsActive = false
		tts = append(tts, tt)
	}

	if err := s.save(ctx, KeyTimetables, tts); err != nil {
		return model.Timetable{}, err
	}
	s.timetables = tts
	return cloneTimetable(tt), nil
}

// DeleteTimetable removes a timetable and its slots. If it was active the
// settings no longer reference any timetable.
func (s *Store) DeleteTimetable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.timetableIndex(id)
	if i < 0 {
		return fmt.Errorf("delete timetable %q: %w", id, ErrTimetableNotFound)
	}
	tts := s.cloneTimetables()
	tts = append(tts[:i], tts[i+1:]...)
	settings := s.settings
	writes := []pendingWrite{{KeyTimetables, tts, s.timetables}}
	if settings.Timetable.ActiveTimetableID == id {
		settings.Timetable.ActiveTimetableID = ""
		writes = append(writes, pendingWrite{KeySettings, settings, s.settings})
	}
	if err := s.saveAll(ctx, writes...); err != nil {
		return err
	}
	s.timetables, s.settings = tts, settings
	return nil
}

// ActivateTimetable makes id the timetable shown in the timetable view. An
// empty id deactivates all timetables.
func (s *Store) ActivateTimetable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.timetableIndex(id) < 0 {
		return fmt.Errorf("activate timetable %q: %w", id, ErrTimetableNotFound)
	}
	tts := s.cloneTimetables()
	for i := range tts {
		tts[i].IsActive = tts[i].ID == id
	}
	settings := s.settings
	settings.Timetable.ActiveTimetableID = id

	err := s.saveAll(ctx,
		pendingWrite{KeyTimetables, tts, s.timetables},
		pendingWrite{KeySettings, settings, s.settings},
	)
	if err != nil {
		return err
	}
	s.timetables, s.settings = tts, settings
	return nil
}

// mutateActiveSlots applies fn to a copy of the active timetable's slots and
// persists the result.
func (s *Store) mutateActiveSlots(ctx context.Context, fn func([]model.TimetableSlot) ([]model.TimetableSlot, error)) error {
	i := s.timetableIndex(s.settings.Timetable.ActiveTimetableID)
	if s.settings.Timetable.ActiveTimetableID == "" || i < 0 {
		return ErrNoActiveTimetable
	}
	tts := s.cloneTimetables()
	slots, err := fn(tts[i].Slots)
	if err != nil {
		return err
	}
	tts[i].Slots = slots
	if err := s.save(ctx, KeyTimetables, tts); err != nil {
		return err
	}
	s.timetables = tts
	return nil
}

// AddSlot appends slot to the active timetable. Overlaps with existing
// slots are allowed.
func (s *Store) AddSlot(ctx context.Context, slot model.TimetableSlot) (model.TimetableSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.ID = s.newID()
	err := s.mutateActiveSlots(ctx, func(slots []model.TimetableSlot) ([]model.TimetableSlot, error) {
		return append(slots, slot), nil
	})
	if err != nil {
		return model.TimetableSlot{}, err
	}
	return slot, nil
}

func (s *Store) UpdateSlot(ctx context.Context, slot model.TimetableSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateActiveSlots(ctx, func(slots []model.TimetableSlot) ([]model.TimetableSlot, error) {
		for i := range slots {
			if slots[i].ID == slot.ID {
				slots[i] = slot
				return slots, nil
			}
		}
		return nil, fmt.Errorf("update slot %q: %w", slot.ID, ErrSlotNotFound)
	})
}

func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutateActiveSlots(ctx, func(slots []model.TimetableSlot) ([]model.TimetableSlot, error) {
		for i := range slots {
			if slots[i].ID == id {
				return append(slots[:i], slots[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete slot %q: %w", id, ErrSlotNotFound)
	})
}
