// Package grid builds the date and time grids shown by the calendar views and
// decides which events and timetable slots land in each cell.
//
// Every function here is pure: inputs are read, never modified, and each call
// returns freshly allocated results. Weeks always run Sunday to Saturday.
package grid

import (
	"fmt"
	"time"
)

// HoursPerDay is the number of hour rows in week, day and timetable views.
const HoursPerDay = 24

// Cell is one date of a month or week grid.
type Cell struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"inMonth"`
	Today   bool      `json:"today"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, judged in
// a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthDays returns every date from the Sunday on or before the first day of
// ref's month through the Saturday on or after its last day. The result
// always holds 28, 35 or 42 dates at midnight in ref's location.
func MonthDays(ref time.Time) []time.Time {
	loc := ref.Location()
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	last := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, loc)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	days := make([]time.Time, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthCells decorates MonthDays with the in-month and today flags.
func MonthCells(ref, now time.Time) []Cell {
	days := MonthDays(ref)
	cells := make([]Cell, len(days))
	for i, d := range days {
		cells[i] = Cell{
			Date:    d,
			InMonth: d.Month() == ref.Month() && d.Year() == ref.Year(),
			Today:   SameDay(d, now),
		}
	}
	return cells
}

// WeekStart returns midnight of the Sunday on or before ref.
func WeekStart(ref time.Time) time.Time {
	day := StartOfDay(ref)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekDays returns the seven dates of the Sunday-Saturday week containing ref.
func WeekDays(ref time.Time) []time.Time {
	start := WeekStart(ref)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// HourSlots returns the hour labels 0 through 23.
func HourSlots() []int {
	hours := make([]int, HoursPerDay)
	for h := range hours {
		hours[h] = h
	}
	return hours
}

// HourLabel formats an hour as the "HH:00" label used by timetable cells.
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
