package domain

import (
	"fmt"
	"time"
)

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
	RecurrenceCustom  RecurrenceType = "custom"
)

func NewRecurrenceType(t string) (RecurrenceType, error) {
	switch t {
	case string(RecurrenceNone), string(RecurrenceDaily), string(RecurrenceWeekly),
		string(RecurrenceMonthly), string(RecurrenceYearly), string(RecurrenceCustom):
		return RecurrenceType(t), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRecurrenceType, t)
	}
}

// RecurrenceRule is a declarative repeat pattern for time-based reminders.
type RecurrenceRule struct {
	ruleType       RecurrenceType
	interval       int
	daysOfWeek     []time.Weekday
	dayOfMonth     int
	endDate        *time.Time
	maxOccurrences int
}

func NewRecurrenceRule(
	ruleType RecurrenceType,
	interval int,
	daysOfWeek []time.Weekday,
	dayOfMonth int,
	endDate *time.Time,
	maxOccurrences int,
) (RecurrenceRule, error) {
	if interval <= 0 {
		return RecurrenceRule{}, ErrInvalidRecurrenceInterval
	}

	days := make([]time.Weekday, len(daysOfWeek))
	copy(days, daysOfWeek)

	return RecurrenceRule{
		ruleType:       ruleType,
		interval:       interval,
		daysOfWeek:     days,
		dayOfMonth:     dayOfMonth,
		endDate:        endDate,
		maxOccurrences: maxOccurrences,
	}, nil
}

func (r RecurrenceRule) Type() RecurrenceType {
	return r.ruleType
}

func (r RecurrenceRule) Interval() int {
	return r.interval
}

func (r RecurrenceRule) DaysOfWeek() []time.Weekday {
	days := make([]time.Weekday, len(r.daysOfWeek))
	copy(days, r.daysOfWeek)

	return days
}

func (r RecurrenceRule) DayOfMonth() int {
	return r.dayOfMonth
}

func (r RecurrenceRule) EndDate() *time.Time {
	return r.endDate
}

func (r RecurrenceRule) MaxOccurrences() int {
	return r.maxOccurrences
}
