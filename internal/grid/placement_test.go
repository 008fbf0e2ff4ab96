package grid

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"holocal/internal/model"
)

func event(id string, start, end time.Time) model.CalendarEvent {
	return model.CalendarEvent{ID: id, CalendarID: "default", Title: id, StartTime: start, EndTime: end}
}

func TestEventPlacementByStartOnly(t *testing.T) {
	start := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	long := event("long", start, start.AddDate(0, 0, 3))
	events := []model.CalendarEvent{long}

	for _, d := range MonthDays(start) {
		got := EventsOn(events, d)
		if d.Day() == 15 && d.Month() == time.March {
			require.Len(t, got, 1)
		} else {
			require.Empty(t, got, d.String())
		}
	}

	day := StartOfDay(start)
	for _, h := range HourSlots() {
		got := EventsAt(events, day, h)
		if h == 14 {
			require.Equal(t, []model.CalendarEvent{long}, got)
		} else {
			require.Empty(t, got, "hour %d", h)
		}
	}

	// The 16th lies inside the event's range but is not its start day.
	require.Empty(t, EventsAt(events, day.AddDate(0, 0, 1), 14))
}

func TestEventPlacementKeepsInputOrder(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	late := event("late", day.Add(18*time.Hour), day.Add(19*time.Hour))
	early := event("early", day.Add(8*time.Hour), day.Add(9*time.Hour))
	other := event("other", day.AddDate(0, 0, 1), day.AddDate(0, 0, 1))

	got := EventsOn([]model.CalendarEvent{late, other, early}, day)
	require.Equal(t, []string{"late", "early"}, []string{got[0].ID, got[1].ID})
}

func TestEventPlacementInvertedRange(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	inverted := event("inv", start, start.Add(-2*time.Hour))
	require.Len(t, EventsAt([]model.CalendarEvent{inverted}, StartOfDay(start), 9), 1)
}

func TestMonthBucketTruncation(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	events := make([]model.CalendarEvent, 0, 5)
	for i := 0; i < 5; i++ {
		s := day.Add(time.Duration(i) * time.Hour)
		events = append(events, event(fmt.Sprintf("e%d", i), s, s.Add(time.Hour)))
	}

	b := MonthBucket(events, day)
	require.Len(t, b.Events, 3)
	require.Equal(t, 2, b.More)
	require.Equal(t, "+2 more", b.MoreLabel())
	require.Equal(t, "e0", b.Events[0].ID)

	small := MonthBucket(events[:3], day)
	require.Len(t, small.Events, 3)
	require.Zero(t, small.More)
	require.Empty(t, small.MoreLabel())
}

func TestPlacementIdempotent(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		event("a", day.Add(9*time.Hour), day.Add(10*time.Hour)),
		event("b", day.Add(9*time.Hour), day.Add(11*time.Hour)),
	}
	snapshot := append([]model.CalendarEvent(nil), events...)

	first := EventsAt(events, day, 9)
	second := EventsAt(events, day, 9)
	require.Equal(t, first, second)
	require.Equal(t, snapshot, events)

	// Results do not alias the input.
	first[0].Title = "changed"
	require.Equal(t, "a", events[0].Title)
}
