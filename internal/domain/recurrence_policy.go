package domain

import (
	"fmt"
	"time"
)

// RecurrencePolicy controls how often a location reminder may fire.
type RecurrencePolicy string

const (
	PolicyOnce      RecurrencePolicy = "once"
	PolicyEveryTime RecurrencePolicy = "every_time"
	PolicyDaily     RecurrencePolicy = "daily"
	PolicyWeekdays  RecurrencePolicy = "weekdays"
	PolicyWeekends  RecurrencePolicy = "weekends"
)

func NewRecurrencePolicy(p string) (RecurrencePolicy, error) {
	switch p {
	case string(PolicyOnce), string(PolicyEveryTime), string(PolicyDaily),
		string(PolicyWeekdays), string(PolicyWeekends):
		return RecurrencePolicy(p), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRecurrencePolicy, p)
	}
}

// AllowsDay reports whether the policy permits firing on the given day at all.
func (p RecurrencePolicy) AllowsDay(t time.Time) bool {
	switch p {
	case PolicyWeekdays:
		wd := t.Weekday()

		return wd != time.Saturday && wd != time.Sunday
	case PolicyWeekends:
		wd := t.Weekday()

		return wd == time.Saturday || wd == time.Sunday
	default:
		return true
	}
}

// InCooldown reports whether a firing at lastTriggered suppresses another
// firing at now. Day-scoped policies fire at most once per calendar day;
// every-time uses the configured re-entry debounce to absorb GPS jitter at
// the region boundary.
func (p RecurrencePolicy) InCooldown(lastTriggered *time.Time, now time.Time, debounce time.Duration) bool {
	if lastTriggered == nil {
		return false
	}

	switch p {
	case PolicyEveryTime:
		return now.Sub(*lastTriggered) < debounce
	case PolicyDaily, PolicyWeekdays, PolicyWeekends:
		return sameCalendarDay(*lastTriggered, now)
	default:
		return false
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
