package grid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"holocal/internal/model"
)

func TestSlotAt(t *testing.T) {
	math := model.TimetableSlot{ID: "math", Day: 1, StartTime: "09:00", EndTime: "11:00", Subject: "Math"}
	slots := []model.TimetableSlot{math}

	s, ok := SlotAt(slots, 1, "09:00")
	require.True(t, ok)
	require.Equal(t, "math", s.ID)

	_, ok = SlotAt(slots, 1, "10:00")
	require.True(t, ok)

	_, ok = SlotAt(slots, 1, "11:00")
	require.False(t, ok)

	_, ok = SlotAt(slots, 2, "09:00")
	require.False(t, ok)

	require.Equal(t, Layout{Height: 120, Offset: 540}, SlotLayout(math))
}

func TestSlotAtIgnoresMinutes(t *testing.T) {
	short := model.TimetableSlot{ID: "short", Day: 3, StartTime: "09:30", EndTime: "10:15"}

	_, ok := SlotAt([]model.TimetableSlot{short}, 3, "09:00")
	require.True(t, ok)
	_, ok = SlotAt([]model.TimetableSlot{short}, 3, "10:00")
	require.False(t, ok)

	require.False(t, StartsAt(short, "09:00"))
	require.Equal(t, Layout{Height: 60, Offset: 570}, SlotLayout(short))
}

func TestSlotAtFirstMatchWins(t *testing.T) {
	a := model.TimetableSlot{ID: "a", Day: 0, StartTime: "08:00", EndTime: "10:00"}
	b := model.TimetableSlot{ID: "b", Day: 0, StartTime: "09:00", EndTime: "12:00"}

	s, ok := SlotAt([]model.TimetableSlot{a, b}, 0, "09:00")
	require.True(t, ok)
	require.Equal(t, "a", s.ID)

	s, ok = SlotAt([]model.TimetableSlot{b, a}, 0, "09:00")
	require.True(t, ok)
	require.Equal(t, "b", s.ID)
}

func TestSlotAtMalformed(t *testing.T) {
	bad := model.TimetableSlot{ID: "bad", Day: 2, StartTime: "nine", EndTime: "10:00"}
	for _, h := range HourSlots() {
		_, ok := SlotAt([]model.TimetableSlot{bad}, 2, HourLabel(h))
		require.False(t, ok)
	}
	require.Equal(t, Layout{}, SlotLayout(bad))

	_, ok := SlotAt([]model.TimetableSlot{bad}, 2, "bogus")
	require.False(t, ok)
}

func TestNewSlotTemplate(t *testing.T) {
	s := NewSlotTemplate(4, "13:00")
	require.Equal(t, 4, s.Day)
	require.Equal(t, "13:00", s.StartTime)
	require.Equal(t, "14:00", s.EndTime)
	require.Equal(t, "New Subject", s.Subject)

	_, ok := SlotAt([]model.TimetableSlot{s}, 4, "13:00")
	require.True(t, ok)
}
