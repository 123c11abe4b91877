package domain

import (
	"time"
)

// Alarm is a local-clock wake-up: hour/minute plus an optional weekday
// repeat set. An empty repeat set means one-time.
type Alarm struct {
	id                    AlarmID
	label                 string
	hour                  int
	minute                int
	enabled               bool
	repeatDays            []time.Weekday
	soundRef              string
	vibrate               bool
	snoozeCount           int
	snoozeDurationMinutes int
	lastTriggeredAt       *time.Time
	nextTriggerAt         *time.Time
	createdAt             time.Time
	updatedAt             time.Time
}

func NewAlarm(
	label string,
	hour, minute int,
	repeatDays []time.Weekday,
	soundRef string,
	vibrate bool,
	snoozeDurationMinutes int,
) (*Alarm, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, ErrInvalidAlarmTime
	}

	if snoozeDurationMinutes <= 0 {
		return nil, ErrInvalidSnoozeSpan
	}

	days := make([]time.Weekday, len(repeatDays))
	copy(days, repeatDays)

	now := time.Now()

	a := &Alarm{
		id:                    NewAlarmID(),
		label:                 label,
		hour:                  hour,
		minute:                minute,
		enabled:               true,
		repeatDays:            days,
		soundRef:              soundRef,
		vibrate:               vibrate,
		snoozeDurationMinutes: snoozeDurationMinutes,
		createdAt:             now,
		updatedAt:             now,
	}

	next := a.NextTriggerAfter(now)
	a.nextTriggerAt = &next

	return a, nil
}

func ReconstituteAlarm(
	id AlarmID,
	label string,
	hour, minute int,
	enabled bool,
	repeatDays []time.Weekday,
	soundRef string,
	vibrate bool,
	snoozeCount int,
	snoozeDurationMinutes int,
	lastTriggeredAt *time.Time,
	nextTriggerAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Alarm {
	return &Alarm{
		id:                    id,
		label:                 label,
		hour:                  hour,
		minute:                minute,
		enabled:               enabled,
		repeatDays:            repeatDays,
		soundRef:              soundRef,
		vibrate:               vibrate,
		snoozeCount:           snoozeCount,
		snoozeDurationMinutes: snoozeDurationMinutes,
		lastTriggeredAt:       lastTriggeredAt,
		nextTriggerAt:         nextTriggerAt,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}
}

// NextTriggerAfter computes the next local instant matching the alarm's
// hour/minute. With a repeat set, only configured weekdays qualify; without
// one, the next matching instant does.
func (a *Alarm) NextTriggerAfter(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), a.hour, a.minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	if len(a.repeatDays) == 0 {
		return candidate
	}

	allowed := make(map[time.Weekday]struct{}, len(a.repeatDays))
	for _, d := range a.repeatDays {
		allowed[d] = struct{}{}
	}

	for i := 0; i < 7; i++ {
		if _, ok := allowed[candidate.Weekday()]; ok {
			return candidate
		}

		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}

func (a *Alarm) IsRepeating() bool {
	return len(a.repeatDays) > 0
}

// MarkFired records a firing. Repeating alarms roll to the next repeat day;
// one-time alarms disable.
func (a *Alarm) MarkFired(now time.Time) {
	fired := now
	a.lastTriggeredAt = &fired

	if a.IsRepeating() {
		next := a.NextTriggerAfter(now)
		a.nextTriggerAt = &next
	} else {
		a.enabled = false
		a.nextTriggerAt = nil
	}

	a.updatedAt = now
}

// Snooze moves the next trigger to now plus the configured snooze span.
func (a *Alarm) Snooze(now time.Time) {
	next := now.Add(time.Duration(a.snoozeDurationMinutes) * time.Minute)
	a.nextTriggerAt = &next
	a.snoozeCount++
	a.updatedAt = now
}

func (a *Alarm) SetEnabled(enabled bool, now time.Time) {
	a.enabled = enabled

	if enabled {
		next := a.NextTriggerAfter(now)
		a.nextTriggerAt = &next
	} else {
		a.nextTriggerAt = nil
	}

	a.updatedAt = now
}

func (a *Alarm) ID() AlarmID {
	return a.id
}

func (a *Alarm) Label() string {
	return a.label
}

func (a *Alarm) Hour() int {
	return a.hour
}

func (a *Alarm) Minute() int {
	return a.minute
}

func (a *Alarm) IsEnabled() bool {
	return a.enabled
}

func (a *Alarm) RepeatDays() []time.Weekday {
	days := make([]time.Weekday, len(a.repeatDays))
	copy(days, a.repeatDays)

	return days
}

func (a *Alarm) SoundRef() string {
	return a.soundRef
}

func (a *Alarm) Vibrate() bool {
	return a.vibrate
}

func (a *Alarm) SnoozeCount() int {
	return a.snoozeCount
}

func (a *Alarm) SnoozeDurationMinutes() int {
	return a.snoozeDurationMinutes
}

func (a *Alarm) LastTriggeredAt() *time.Time {
	return a.lastTriggeredAt
}

func (a *Alarm) NextTriggerAt() *time.Time {
	return a.nextTriggerAt
}

func (a *Alarm) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Alarm) UpdatedAt() time.Time {
	return a.updatedAt
}
