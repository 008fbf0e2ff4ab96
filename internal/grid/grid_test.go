package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonthDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		ref  time.Time
		want int
	}{
		// Feb 2015 starts on Sunday and has 28 days.
		{name: "four weeks", ref: time.Date(2015, 2, 14, 10, 0, 0, 0, time.UTC), want: 28},
		{name: "five weeks", ref: time.Date(2023, 3, 15, 14, 30, 0, 0, time.UTC), want: 35},
		{name: "march 2024", ref: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), want: 42},
		// Aug 2026 starts on Saturday and has 31 days.
		{name: "six weeks", ref: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), want: 42},
		{name: "leap february", ref: time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), want: 35},
		{name: "dst month", ref: time.Date(2024, 11, 3, 12, 0, 0, 0, loc), want: 35},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			days := MonthDays(tc.ref)
			require.Len(t, days, tc.want)
			require.Zero(t, len(days)%7)
			require.Equal(t, time.Sunday, days[0].Weekday())
			require.Equal(t, time.Saturday, days[len(days)-1].Weekday())

			seen := map[int]int{}
			for i, d := range days {
				require.Equal(t, 0, d.Hour())
				if i > 0 {
					prev := days[i-1]
					require.Equal(t, prev.AddDate(0, 0, 1), d)
				}
				if d.Month() == tc.ref.Month() {
					seen[d.Day()]++
				}
			}
			last := time.Date(tc.ref.Year(), tc.ref.Month()+1, 0, 0, 0, 0, 0, tc.ref.Location()).Day()
			require.Len(t, seen, last)
			for day, n := range seen {
				require.Equal(t, 1, n, "day %d", day)
			}
		})
	}
}

func TestMonthCells(t *testing.T) {
	ref := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	now := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	cells := MonthCells(ref, now)
	require.Len(t, cells, 42)

	// Mar 1 2024 is a Friday, so the grid opens on Feb 25.
	require.Equal(t, time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC), cells[0].Date)
	require.False(t, cells[0].InMonth)
	require.True(t, cells[5].InMonth)

	today := 0
	for _, c := range cells {
		if c.Today {
			today++
			require.Equal(t, 20, c.Date.Day())
		}
	}
	require.Equal(t, 1, today)
}

func TestWeekDays(t *testing.T) {
	for _, ref := range []time.Time{
		time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 16, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	} {
		days := WeekDays(ref)
		require.Len(t, days, 7)
		require.Equal(t, time.Sunday, days[0].Weekday())
		require.False(t, days[0].After(ref))
		require.True(t, ref.Sub(days[0]) < 7*24*time.Hour)
		for i := 1; i < 7; i++ {
			require.Equal(t, days[i-1].AddDate(0, 0, 1), days[i])
		}
	}

	days := WeekDays(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC), days[0])
	require.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), days[6])
}

func TestHourSlots(t *testing.T) {
	hours := HourSlots()
	require.Len(t, hours, 24)
	for i, h := range hours {
		require.Equal(t, i, h)
	}

	// Callers get their own copy.
	hours[0] = 99
	require.Equal(t, 0, HourSlots()[0])

	require.Equal(t, "09:00", HourLabel(9))
	require.Equal(t, "23:00", HourLabel(23))
}

func TestSameDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, loc)

	// 20:00 UTC on the 14th is 05:00 on the 15th at UTC+9.
	require.True(t, SameDay(day, time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)))
	require.False(t, SameDay(day, time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)))
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Today(now))
}
