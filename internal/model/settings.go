package model

// ViewKind selects which grid the caller renders.
type ViewKind string

const (
	ViewMonth     ViewKind = "month"
	ViewWeek      ViewKind = "week"
	ViewDay       ViewKind = "day"
	ViewTimetable ViewKind = "timetable"
)

func (v ViewKind) Valid() bool {
	switch v {
	case ViewMonth, ViewWeek, ViewDay, ViewTimetable:
		return true
	}
	return false
}

// Theme is a cosmetic skin name. Themes carry no behavior.
type Theme string

const (
	ThemeSciFi     Theme = "sci-fi"
	ThemeCyberpunk Theme = "cyberpunk"
	ThemeRetro     Theme = "retro"
	ThemeStarWars  Theme = "starwars"
	ThemeStarTrek  Theme = "startrek"
	ThemeMinimal   Theme = "minimal"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeSciFi, ThemeCyberpunk, ThemeRetro, ThemeStarWars, ThemeStarTrek, ThemeMinimal:
		return true
	}
	return false
}

type NotificationSettings struct {
	Enabled bool `json:"enabled"`
	// DefaultReminder is minutes before the event.
	DefaultReminder int `json:"defaultReminder"`
}

type TimetableSettings struct {
	ShowInCalendar    bool   `json:"showInCalendar"`
	ActiveTimetableID string `json:"activeTimetableId,omitempty"`
}

// Settings are per-user display preferences.
type Settings struct {
	Theme           Theme                `json:"theme"`
	DefaultView     ViewKind             `json:"defaultView"`
	WeekStartsOn    int                  `json:"weekStartsOn"`
	TimeFormat      string               `json:"timeFormat"`
	ShowWeekNumbers bool                 `json:"showWeekNumbers"`
	ShowWeekends    bool                 `json:"showWeekends"`
	Notifications   NotificationSettings `json:"notifications"`
	Timetable       TimetableSettings    `json:"timetable"`
}

// DefaultSettings mirrors a freshly installed application.
func DefaultSettings() Settings {
	return Settings{
		Theme:        ThemeSciFi,
		DefaultView:  ViewMonth,
		WeekStartsOn: 0,
		TimeFormat:   "12h",
		ShowWeekends: true,
		Notifications: NotificationSettings{
			Enabled:         true,
			DefaultReminder: 15,
		},
	}
}

// Normalize replaces unknown or out-of-range values with defaults.
func (s *Settings) Normalize() {
	if !s.Theme.Valid() {
		s.Theme = ThemeSciFi
	}
	if !s.DefaultView.Valid() {
		s.DefaultView = ViewMonth
	}
	if s.WeekStartsOn < 0 || s.WeekStartsOn > 6 {
		s.WeekStartsOn = 0
	}
	if s.TimeFormat != "12h" && s.TimeFormat != "24h" {
		s.TimeFormat = "12h"
	}
	if s.Notifications.DefaultReminder < 0 {
		s.Notifications.DefaultReminder = 0
	}
}
