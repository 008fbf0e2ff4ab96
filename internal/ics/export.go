package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "holocal/internal/log"
	"holocal/internal/model"
)

const ProductID = "-//holocal//holocal//EN"

// Export writes cal's events as a VCALENDAR. Recurring events carry their
// RRULE; rules that fail to encode are dropped with a log line. now is used
// as DTSTAMP.
func Export(w io.Writer, cal model.Calendar, events []model.CalendarEvent, now time.Time) error {
	out := ical.NewCalendar()
	out.SetMethod(ical.MethodPublish)
	out.SetProductId(ProductID)
	out.SetXWRCalName(cal.Name)
	if cal.Description != "" {
		out.SetXWRCalDesc(cal.Description)
	}

	for _, ev := range events {
		ve := out.AddEvent(ev.ID + "@holocal")
		ve.SetDtStampTime(now)
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt)
		}
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Color != "" {
			ve.SetColor(ev.Color)
		}

		if ev.AllDay {
			start := dateOnly(ev.StartTime)
			end := dateOnly(ev.EndTime).AddDate(0, 0, 1)
			if !end.After(start) {
				end = start.AddDate(0, 0, 1)
			}
			ve.SetAllDayStartAt(start)
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(ev.StartTime)
			ve.SetEndAt(ev.EndTime)
		}

		if ev.IsRecurring && ev.RecurrenceRule != nil {
			rule, err := EncodeRRule(*ev.RecurrenceRule)
			if err != nil {
				appLog.Error("ics export: dropping recurrence rule", err, "event_id", ev.ID)
			} else {
				ve.AddRrule(rule)
			}
		}
	}

	_, err := io.WriteString(w, out.Serialize())
	return err
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
