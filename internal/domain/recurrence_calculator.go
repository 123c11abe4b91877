package domain

import (
	"time"
)

// RecurrenceCalculator computes the next valid occurrence of a recurrence
// rule. It is pure: identical inputs always yield identical outputs, which
// the dispatcher relies on when rescheduling after a firing.
type RecurrenceCalculator struct{}

func NewRecurrenceCalculator() *RecurrenceCalculator {
	return &RecurrenceCalculator{}
}

// NextOccurrence returns the occurrence following from, or false when the
// rule is exhausted. occurred is the number of firings already delivered and
// is checked against the rule's max occurrence cap.
//
//   - daily/custom: add interval days, preserving time-of-day
//   - weekly: advance to the next configured weekday, wrapping across week
//     boundaries; interval > 1 skips whole weeks on wrap
//   - monthly: target day-of-month clamped to the month length
//   - yearly: Feb 29 clamps to Feb 28 in non-leap years
func (c *RecurrenceCalculator) NextOccurrence(from time.Time, rule RecurrenceRule, occurred int) (time.Time, bool) {
	if rule.Type() == RecurrenceNone {
		return time.Time{}, false
	}

	if rule.MaxOccurrences() > 0 && occurred >= rule.MaxOccurrences() {
		return time.Time{}, false
	}

	var next time.Time

	switch rule.Type() {
	case RecurrenceDaily, RecurrenceCustom:
		next = from.AddDate(0, 0, rule.Interval())
	case RecurrenceWeekly:
		next = c.nextWeekly(from, rule)
	case RecurrenceMonthly:
		next = c.nextMonthly(from, rule)
	case RecurrenceYearly:
		next = c.nextYearly(from, rule)
	default:
		return time.Time{}, false
	}

	if end := rule.EndDate(); end != nil && next.After(*end) {
		return time.Time{}, false
	}

	return next, true
}

func (c *RecurrenceCalculator) nextWeekly(from time.Time, rule RecurrenceRule) time.Time {
	days := rule.DaysOfWeek()
	if len(days) == 0 {
		return from.AddDate(0, 0, 7*rule.Interval())
	}

	allowed := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		allowed[d] = struct{}{}
	}

	for offset := 1; offset <= 7; offset++ {
		candidate := from.AddDate(0, 0, offset)
		if _, ok := allowed[candidate.Weekday()]; ok {
			// Wrapping into the following week honors the week interval.
			if rule.Interval() > 1 && candidate.Weekday() <= from.Weekday() {
				candidate = candidate.AddDate(0, 0, 7*(rule.Interval()-1))
			}

			return candidate
		}
	}

	return from.AddDate(0, 0, 7*rule.Interval())
}

func (c *RecurrenceCalculator) nextMonthly(from time.Time, rule RecurrenceRule) time.Time {
	targetDay := rule.DayOfMonth()
	if targetDay <= 0 {
		targetDay = from.Day()
	}

	year, month, _ := from.Date()
	month += time.Month(rule.Interval())

	return dateWithClampedDay(year, month, targetDay, from)
}

func (c *RecurrenceCalculator) nextYearly(from time.Time, rule RecurrenceRule) time.Time {
	year, month, day := from.Date()

	return dateWithClampedDay(year+rule.Interval(), month, day, from)
}

// dateWithClampedDay builds a date in from's location preserving its clock
// time, clamping day to the length of the target month (day 31 in a 30-day
// month becomes day 30, Feb 29 becomes Feb 28 off leap years).
func dateWithClampedDay(year int, month time.Month, day int, from time.Time) time.Time {
	// Normalize month overflow before measuring the month length.
	norm := time.Date(year, month, 1, 0, 0, 0, 0, from.Location())
	lastDay := norm.AddDate(0, 1, -1).Day()

	if day > lastDay {
		day = lastDay
	}

	hour, minute, sec := from.Clock()

	return time.Date(norm.Year(), norm.Month(), day, hour, minute, sec, from.Nanosecond(), from.Location())
}
