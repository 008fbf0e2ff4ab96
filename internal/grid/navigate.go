package grid

import (
	"time"

	"holocal/internal/model"
)

// Shift moves ref by delta periods of the given view: months for the month
// view, weeks for the week view, days for the day view. The timetable view
// is not dated and returns ref unchanged.
//
// Month arithmetic follows time.AddDate normalization, so Jan 31 + 1 month
// lands in early March.
func Shift(kind model.ViewKind, ref time.Time, delta int) time.Time {
	switch kind {
	case model.ViewMonth:
		return ref.AddDate(0, delta, 0)
	case model.ViewWeek:
		return ref.AddDate(0, 0, 7*delta)
	case model.ViewDay:
		return ref.AddDate(0, 0, delta)
	default:
		return ref
	}
}

// Title is the header text for a view, e.g. "March 2024" for a month.
func Title(kind model.ViewKind, ref time.Time) string {
	switch kind {
	case model.ViewMonth:
		return ref.Format("January 2006")
	case model.ViewWeek:
		days := WeekDays(ref)
		return days[0].Format("Jan 2") + " - " + days[6].Format("Jan 2, 2006")
	case model.ViewDay:
		return ref.Format("Monday, January 2, 2006")
	default:
		return "Weekly Timetable"
	}
}

// Today is the reference date the "today" control jumps back to.
func Today(now time.Time) time.Time {
	return StartOfDay(now)
}
