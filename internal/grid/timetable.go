package grid

import (
	"fmt"

	"holocal/internal/model"
)

// UnitHeight is the pixel height of one hour row in the timetable view.
const UnitHeight = 60

// SlotAt finds the slot occupying (day, label). A slot covers the hours
// [startHour, endHour) of its day; minutes are ignored. Overlapping slots
// resolve to the first one in input order. Slots whose times do not parse
// never match.
func SlotAt(slots []model.TimetableSlot, day int, label string) (model.TimetableSlot, bool) {
	hour, ok := model.ClockHour(label)
	if !ok {
		return model.TimetableSlot{}, false
	}
	for _, s := range slots {
		if s.Day != day {
			continue
		}
		start, okStart := model.ClockHour(s.StartTime)
		end, okEnd := model.ClockHour(s.EndTime)
		if !okStart || !okEnd {
			continue
		}
		if hour >= start && hour < end {
			return s, true
		}
	}
	return model.TimetableSlot{}, false
}

// StartsAt reports whether the slot's block is drawn in the cell labelled
// label. Only the cell whose label equals the slot's start string draws it.
func StartsAt(s model.TimetableSlot, label string) bool {
	return s.StartTime == label
}

// Layout is the vertical extent of a drawn slot, in pixels.
type Layout struct {
	Height int `json:"height"`
	Offset int `json:"offset"`
}

// SlotLayout computes height as whole hours times UnitHeight and offset as
// startHour*UnitHeight plus the start minute. Unparseable hours give a zero
// layout; an unparseable minute counts as zero.
func SlotLayout(s model.TimetableSlot) Layout {
	start, okStart := model.ClockHour(s.StartTime)
	end, okEnd := model.ClockHour(s.EndTime)
	if !okStart || !okEnd {
		return Layout{}
	}
	minute, _ := model.ClockMinute(s.StartTime)
	return Layout{
		Height: (end - start) * UnitHeight,
		Offset: start*UnitHeight + minute,
	}
}

// NewSlotTemplate is the slot proposed when an empty cell is picked: one
// hour long, starting at the cell's label.
func NewSlotTemplate(day int, label string) model.TimetableSlot {
	hour, _ := model.ClockHour(label)
	return model.TimetableSlot{
		Day:       day,
		StartTime: label,
		EndTime:   fmt.Sprintf("%02d:00", hour+1),
		Subject:   "New Subject",
		Color:     "#0099ff",
	}
}
