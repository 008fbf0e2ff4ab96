package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRecurrence = errors.New("invalid recurrence rule")

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// RecurrenceRule describes how an event repeats. DaysOfWeek uses 0-6 with
// Sunday=0.
type RecurrenceRule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
}

// Validate checks the rule's fields. An interval of zero is read as 1.
func (r RecurrenceRule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return fmt.Errorf("frequency %q: %w", r.Frequency, ErrInvalidRecurrence)
	}
	if r.Interval < 0 {
		return fmt.Errorf("interval %d: %w", r.Interval, ErrInvalidRecurrence)
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("day of week %d: %w", d, ErrInvalidRecurrence)
		}
	}
	return nil
}
