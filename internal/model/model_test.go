package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockHour(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{in: "09:00", want: 9, ok: true},
		{in: "9:30", want: 9, ok: true},
		{in: "23:59", want: 23, ok: true},
		{in: " 7:15", want: 7, ok: true},
		{in: "10", want: 10, ok: true},
		{in: "ab:00", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ClockHour(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestClockMinute(t *testing.T) {
	m, ok := ClockMinute("09:30")
	require.True(t, ok)
	require.Equal(t, 30, m)

	_, ok = ClockMinute("09")
	require.False(t, ok)

	_, ok = ClockMinute("09:xx")
	require.False(t, ok)
}

func TestRecurrenceValidate(t *testing.T) {
	require.NoError(t, RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{1, 3}}.Validate())
	require.ErrorIs(t, RecurrenceRule{Frequency: "hourly"}.Validate(), ErrInvalidRecurrence)
	require.ErrorIs(t, RecurrenceRule{Frequency: FrequencyDaily, Interval: -1}.Validate(), ErrInvalidRecurrence)
	require.ErrorIs(t, RecurrenceRule{Frequency: FrequencyWeekly, DaysOfWeek: []int{7}}.Validate(), ErrInvalidRecurrence)
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{Theme: "vaporwave", DefaultView: "agenda", WeekStartsOn: 9, TimeFormat: "36h"}
	s.Normalize()
	require.Equal(t, ThemeSciFi, s.Theme)
	require.Equal(t, ViewMonth, s.DefaultView)
	require.Equal(t, 0, s.WeekStartsOn)
	require.Equal(t, "12h", s.TimeFormat)

	d := DefaultSettings()
	before := d
	d.Normalize()
	require.Equal(t, before, d)
}

func TestEventInverted(t *testing.T) {
	start := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	require.False(t, CalendarEvent{StartTime: start, EndTime: start}.Inverted())
	require.True(t, CalendarEvent{StartTime: start, EndTime: start.Add(-time.Minute)}.Inverted())
}
