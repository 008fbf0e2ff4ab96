package grid

import (
	"fmt"
	"time"

	"holocal/internal/model"
)

// MonthCellLimit is how many events a month cell lists before collapsing the
// rest into a "+N more" marker.
const MonthCellLimit = 3

// EventsOn returns the events whose start falls on date's calendar day, in
// input order. The end time is never consulted: an event spanning several
// days appears only on its start day.
func EventsOn(events []model.CalendarEvent, date time.Time) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		if SameDay(date, ev.StartTime) {
			out = append(out, ev)
		}
	}
	return out
}

// EventsAt narrows EventsOn to events starting within the given hour of
// date, read in date's location.
func EventsAt(events []model.CalendarEvent, date time.Time, hour int) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		start := ev.StartTime.In(date.Location())
		if SameDay(date, start) && start.Hour() == hour {
			out = append(out, ev)
		}
	}
	return out
}

// DayBucket is the content of one month cell.
type DayBucket struct {
	Events []model.CalendarEvent `json:"events"`
	More   int                   `json:"more"`
}

// MoreLabel renders the overflow marker, or "" when nothing was cut.
func (b DayBucket) MoreLabel() string {
	if b.More <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", b.More)
}

// MonthBucket returns the first MonthCellLimit events of date and the number
// left out.
func MonthBucket(events []model.CalendarEvent, date time.Time) DayBucket {
	day := EventsOn(events, date)
	if len(day) <= MonthCellLimit {
		return DayBucket{Events: day}
	}
	return DayBucket{
		Events: day[:MonthCellLimit:MonthCellLimit],
		More:   len(day) - MonthCellLimit,
	}
}
