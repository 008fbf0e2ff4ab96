package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"holocal/internal/model"
)

// weekdays maps model day numbers (Sunday=0) to rrule weekdays.
var weekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var frequencies = map[model.Frequency]rrule.Frequency{
	model.FrequencyDaily:   rrule.DAILY,
	model.FrequencyWeekly:  rrule.WEEKLY,
	model.FrequencyMonthly: rrule.MONTHLY,
	model.FrequencyYearly:  rrule.YEARLY,
}

// EncodeRRule renders a recurrence rule as an RFC 5545 RRULE value such as
// "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE". The rule is validated by building it
// with rrule-go, but no occurrences are generated.
func EncodeRRule(r model.RecurrenceRule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	opt := rrule.ROption{
		Freq:     frequencies[r.Frequency],
		Interval: r.Interval,
	}
	if opt.Interval == 0 {
		opt.Interval = 1
	}
	if r.EndDate != nil {
		opt.Until = r.EndDate.UTC()
	}
	for _, d := range r.DaysOfWeek {
		opt.Byweekday = append(opt.Byweekday, weekdays[d])
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidRecurrence, err)
	}
	return opt.String(), nil
}

// DecodeRRule converts an RRULE value back into a RecurrenceRule. ok is
// false for rules that use parts the model cannot hold (hourly frequencies,
// BYMONTHDAY, COUNT and so on); such events are still imported as recurring,
// just without a rule.
func DecodeRRule(s string) (rule model.RecurrenceRule, ok bool) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return model.RecurrenceRule{}, false
	}
	found := false
	for f, rf := range frequencies {
		if rf == opt.Freq {
			rule.Frequency = f
			found = true
		}
	}
	if !found || opt.Count > 0 || len(opt.Bymonthday) > 0 || len(opt.Bysetpos) > 0 || len(opt.Byyearday) > 0 {
		return model.RecurrenceRule{}, false
	}
	rule.Interval = opt.Interval
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if !opt.Until.IsZero() {
		until := opt.Until.In(time.UTC)
		rule.EndDate = &until
	}
	for _, wd := range opt.Byweekday {
		rule.DaysOfWeek = append(rule.DaysOfWeek, (wd.Day()+1)%7)
	}
	return rule, true
}
