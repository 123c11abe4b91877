package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeConstraint restricts a location trigger to a local time-of-day window
// and an optional set of weekdays. A window whose end precedes its start
// wraps past midnight.
type TimeConstraint struct {
	startMinutes int
	endMinutes   int
	daysOfWeek   []time.Weekday
}

func NewTimeConstraint(start, end string, daysOfWeek []time.Weekday) (TimeConstraint, error) {
	startMinutes, err := parseTimeOfDay(start)
	if err != nil {
		return TimeConstraint{}, err
	}

	endMinutes, err := parseTimeOfDay(end)
	if err != nil {
		return TimeConstraint{}, err
	}

	days := make([]time.Weekday, len(daysOfWeek))
	copy(days, daysOfWeek)

	return TimeConstraint{
		startMinutes: startMinutes,
		endMinutes:   endMinutes,
		daysOfWeek:   days,
	}, nil
}

func parseTimeOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, s)
	}

	return hour*60 + minute, nil
}

// Matches reports whether t falls inside the constrained window.
func (c TimeConstraint) Matches(t time.Time) bool {
	if len(c.daysOfWeek) > 0 {
		found := false
		for _, d := range c.daysOfWeek {
			if t.Weekday() == d {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	minutes := t.Hour()*60 + t.Minute()

	if c.startMinutes <= c.endMinutes {
		return minutes >= c.startMinutes && minutes <= c.endMinutes
	}

	// Overnight window, e.g. 22:00-06:00
	return minutes >= c.startMinutes || minutes <= c.endMinutes
}

func (c TimeConstraint) Start() string {
	return formatTimeOfDay(c.startMinutes)
}

func (c TimeConstraint) End() string {
	return formatTimeOfDay(c.endMinutes)
}

func (c TimeConstraint) DaysOfWeek() []time.Weekday {
	days := make([]time.Weekday, len(c.daysOfWeek))
	copy(days, c.daysOfWeek)

	return days
}

func formatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
