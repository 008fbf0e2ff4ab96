package model

import "time"

// Calendar is a named collection of events. Exactly one calendar is active
// at a time; views only show events of the active calendar.
type Calendar struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CalendarEvent is a single event as created by the user.
//
// StartTime/EndTime are absolute timestamps (RFC 3339 on the wire). Placement
// in views only ever looks at StartTime; EndTime is carried for display and
// export.
type CalendarEvent struct {
	ID          string `json:"id"`
	CalendarID  string `json:"calendarId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	AllDay    bool      `json:"allDay"`
	Color     string    `json:"color,omitempty"`

	// Recurrence is stored as entered and never expanded into occurrences.
	IsRecurring    bool            `json:"isRecurring"`
	RecurrenceRule *RecurrenceRule `json:"recurrenceRule,omitempty"`

	HasTimer bool `json:"hasTimer"`
	// TimerDuration is in minutes.
	TimerDuration int `json:"timerDuration,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Inverted reports whether the event ends before it starts.
func (e CalendarEvent) Inverted() bool {
	return e.EndTime.Before(e.StartTime)
}

// TimetableSlot is one recurring weekly block of a timetable. Day is 0-6 with
// Sunday=0; StartTime/EndTime are wall-clock "HH:mm" strings.
type TimetableSlot struct {
	ID         string `json:"id"`
	Day        int    `json:"day"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Subject    string `json:"subject"`
	Location   string `json:"location,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Timetable owns its slots; deleting the timetable deletes them.
type Timetable struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Slots       []TimetableSlot `json:"slots"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}
