package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "holocal/internal/log"
	"holocal/internal/model"
)

// Import parses an ICS payload into calendar events. Times are converted to
// loc (time.Local when nil). VEVENTs that cannot be read are logged and
// skipped; recurrence overrides (RECURRENCE-ID) are skipped as well since
// recurring events are never expanded.
func Import(body []byte, loc *time.Location) ([]model.CalendarEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]model.CalendarEvent, 0)
	skipped := 0
	for _, comp := range cal.Events() {
		ev, ok, perr := parseVEvent(comp, loc)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr)
			skipped++
			continue
		}
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events), "skipped", skipped)
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.CalendarEvent, bool, error) {
	var out model.CalendarEvent

	if ve.GetProperty("RECURRENCE-ID") != nil {
		return out, false, nil
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyColor); p != nil {
		out.Color = p.Value
	}

	dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStartProp == nil {
		return out, false, errors.New("missing DTSTART")
	}

	// Detect all-day: VALUE=DATE or no 'T' in the value.
	if vs, ok := dtStartProp.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		out.AllDay = true
	}
	if !strings.Contains(dtStartProp.Value, "T") {
		out.AllDay = true
	}

	if out.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return out, false, err
		}
		// All-day dates are wall-clock dates; keep the day in loc.
		out.StartTime = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		end, err := ve.GetAllDayEndAt()
		if err != nil {
			out.EndTime = out.StartTime
		} else {
			// DTEND is exclusive for all-day events.
			out.EndTime = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).Add(-time.Second)
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return out, false, err
		}
		out.StartTime = start.In(loc)
		end, err := ve.GetEndAt()
		if err != nil {
			out.EndTime = out.StartTime
		} else {
			out.EndTime = end.In(loc)
		}
	}
	if out.EndTime.Before(out.StartTime) {
		out.EndTime = out.StartTime
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.IsRecurring = true
		if rule, ok := DecodeRRule(p.Value); ok {
			out.RecurrenceRule = &rule
		}
	}

	return out, true, nil
}
