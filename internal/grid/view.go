package grid

import (
	"errors"
	"fmt"
	"time"

	"holocal/internal/model"
)

// ErrUnknownView is returned by Build for a kind it cannot render.
var ErrUnknownView = errors.New("unknown view kind")

// View is the rendered content of one view kind. Exactly one of the
// per-kind fields is set, matching Kind.
type View struct {
	Kind model.ViewKind `json:"kind"`
	Date time.Time      `json:"date"`

	Month     *MonthView     `json:"month,omitempty"`
	Week      *WeekView      `json:"week,omitempty"`
	Day       *DayView       `json:"day,omitempty"`
	Timetable *TimetableView `json:"timetable,omitempty"`
}

// MonthDay is one cell of the month grid with its capped event list.
type MonthDay struct {
	Cell
	DayBucket
	Overflow string `json:"moreLabel,omitempty"`
}

// MonthView is the six-week grid around a month.
type MonthView struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []MonthDay `json:"days"`
}

// HourBucket holds the events starting in one hour of a day.
type HourBucket struct {
	Hour   int                   `json:"hour"`
	Events []model.CalendarEvent `json:"events"`
}

// DayColumn is one day split into 24 hour buckets.
type DayColumn struct {
	Cell
	Hours []HourBucket `json:"hours"`
}

// WeekView is the Sunday to Saturday week containing the reference date.
type WeekView struct {
	Start time.Time   `json:"start"`
	Days  []DayColumn `json:"days"`
}

// DayView is a single day column.
type DayView struct {
	DayColumn
}

// TimetableCell is one hour label of a weekday, with the slot covering it.
type TimetableCell struct {
	Label  string               `json:"label"`
	Slot   *model.TimetableSlot `json:"slot,omitempty"`
	Start  bool                 `json:"start"`
	Layout *Layout              `json:"layout,omitempty"`
}

// TimetableDay is the column of hour cells for one weekday.
type TimetableDay struct {
	Day   int             `json:"day"`
	Name  string          `json:"name"`
	Cells []TimetableCell `json:"cells"`
}

// TimetableView is the weekly grid of the active timetable.
type TimetableView struct {
	TimetableID string         `json:"timetableId,omitempty"`
	Name        string         `json:"name"`
	Days        []TimetableDay `json:"days"`
}

// Build renders the view of the given kind around ref. now decides the
// "today" flags; tt may be nil when no timetable is active.
func Build(kind model.ViewKind, ref, now time.Time, events []model.CalendarEvent, tt *model.Timetable) (View, error) {
	v := View{Kind: kind, Date: StartOfDay(ref)}
	switch kind {
	case model.ViewMonth:
		v.Month = buildMonth(ref, now, events)
	case model.ViewWeek:
		v.Week = buildWeek(ref, now, events)
	case model.ViewDay:
		v.Day = &DayView{DayColumn: buildColumn(StartOfDay(ref), ref, now, events)}
	case model.ViewTimetable:
		v.Timetable = BuildTimetable(tt)
	default:
		return View{}, fmt.Errorf("%q: %w", kind, ErrUnknownView)
	}
	return v, nil
}

func buildMonth(ref, now time.Time, events []model.CalendarEvent) *MonthView {
	cells := MonthCells(ref, now)
	mv := &MonthView{
		Year:  ref.Year(),
		Month: ref.Month(),
		Days:  make([]MonthDay, len(cells)),
	}
	for i, c := range cells {
		b := MonthBucket(events, c.Date)
		mv.Days[i] = MonthDay{Cell: c, DayBucket: b, Overflow: b.MoreLabel()}
	}
	return mv
}

func buildWeek(ref, now time.Time, events []model.CalendarEvent) *WeekView {
	days := WeekDays(ref)
	wv := &WeekView{Start: days[0], Days: make([]DayColumn, len(days))}
	for i, d := range days {
		wv.Days[i] = buildColumn(d, ref, now, events)
	}
	return wv
}

func buildColumn(day, ref, now time.Time, events []model.CalendarEvent) DayColumn {
	col := DayColumn{
		Cell: Cell{
			Date:    day,
			InMonth: day.Month() == ref.Month(),
			Today:   SameDay(day, now),
		},
		Hours: make([]HourBucket, 0, HoursPerDay),
	}
	for _, h := range HourSlots() {
		col.Hours = append(col.Hours, HourBucket{Hour: h, Events: EventsAt(events, day, h)})
	}
	return col
}

// BuildTimetable lays out a 7x24 grid for tt. A nil timetable yields an
// empty grid.
func BuildTimetable(tt *model.Timetable) *TimetableView {
	tv := &TimetableView{Name: "Weekly Timetable", Days: make([]TimetableDay, 7)}
	var slots []model.TimetableSlot
	if tt != nil {
		tv.TimetableID = tt.ID
		tv.Name = tt.Name
		slots = tt.Slots
	}
	for d := range tv.Days {
		day := TimetableDay{
			Day:   d,
			Name:  time.Weekday(d).String(),
			Cells: make([]TimetableCell, 0, HoursPerDay),
		}
		for _, h := range HourSlots() {
			label := HourLabel(h)
			cell := TimetableCell{Label: label}
			if s, ok := SlotAt(slots, d, label); ok {
				cell.Slot = &s
				if StartsAt(s, label) {
					cell.Start = true
					l := SlotLayout(s)
					cell.Layout = &l
				}
			}
			day.Cells = append(day.Cells, cell)
		}
		tv.Days[d] = day
	}
	return tv
}
