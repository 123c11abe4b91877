package domain

import (
	"time"
)

// Reminder is the aggregate the trigger engine schedules around. A reminder
// is either time-based (scheduledTime set, location nil) or location-based
// (location set, scheduledTime nil); constructors enforce the split.
type Reminder struct {
	id              ReminderID
	kind            Kind
	message         string
	scheduledTime   *time.Time
	location        *LocationTrigger
	status          Status
	recurrenceRule  *RecurrenceRule
	priority        Priority
	category        string
	spatialHandle   string
	snoozedUntil    *time.Time
	snoozeCount     int
	lastTriggeredAt *time.Time
	triggerCount    int
	createdAt       time.Time
	updatedAt       time.Time
}

func NewTimeReminder(
	message string,
	scheduledTime time.Time,
	rule *RecurrenceRule,
	priority Priority,
	category string,
) (*Reminder, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	if scheduledTime.Before(time.Now()) {
		return nil, ErrPastScheduledTime
	}

	now := time.Now()

	return &Reminder{
		id:             NewReminderID(),
		kind:           KindTimeBased,
		message:        message,
		scheduledTime:  &scheduledTime,
		status:         StatusPending,
		recurrenceRule: rule,
		priority:       priority,
		category:       category,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func NewLocationReminder(
	message string,
	location LocationTrigger,
	priority Priority,
	category string,
) (*Reminder, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	now := time.Now()

	return &Reminder{
		id:        NewReminderID(),
		kind:      KindLocationBased,
		message:   message,
		location:  &location,
		status:    StatusPending,
		priority:  priority,
		category:  category,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstituteReminder(
	id ReminderID,
	kind Kind,
	message string,
	scheduledTime *time.Time,
	location *LocationTrigger,
	status Status,
	rule *RecurrenceRule,
	priority Priority,
	category string,
	spatialHandle string,
	snoozedUntil *time.Time,
	snoozeCount int,
	lastTriggeredAt *time.Time,
	triggerCount int,
	createdAt time.Time,
	updatedAt time.Time,
) *Reminder {
	return &Reminder{
		id:              id,
		kind:            kind,
		message:         message,
		scheduledTime:   scheduledTime,
		location:        location,
		status:          status,
		recurrenceRule:  rule,
		priority:        priority,
		category:        category,
		spatialHandle:   spatialHandle,
		snoozedUntil:    snoozedUntil,
		snoozeCount:     snoozeCount,
		lastTriggeredAt: lastTriggeredAt,
		triggerCount:    triggerCount,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *Reminder) IsPending() bool {
	return r.status == StatusPending
}

// IsSnoozedAt reports whether the suppression window is still open at now.
func (r *Reminder) IsSnoozedAt(now time.Time) bool {
	return r.snoozedUntil != nil && now.Before(*r.snoozedUntil)
}

// MarkFired records a delivered firing.
func (r *Reminder) MarkFired(now time.Time) {
	fired := now
	r.lastTriggeredAt = &fired
	r.triggerCount++
	r.snoozedUntil = nil
	r.updatedAt = now
}

func (r *Reminder) Complete(now time.Time) error {
	if !r.IsPending() {
		return ErrReminderNotPending
	}

	r.status = StatusCompleted
	r.updatedAt = now

	return nil
}

func (r *Reminder) Cancel(now time.Time) error {
	if !r.IsPending() {
		return ErrReminderNotPending
	}

	r.status = StatusCancelled
	r.updatedAt = now

	return nil
}

// RescheduleTo moves the scheduled time forward after a recurring firing.
func (r *Reminder) RescheduleTo(next time.Time, now time.Time) {
	r.scheduledTime = &next
	r.updatedAt = now
}

// SnoozeUntil opens a suppression window. The instant must be strictly in
// the future at time of setting.
func (r *Reminder) SnoozeUntil(until time.Time, now time.Time) error {
	if !r.IsPending() {
		return ErrReminderNotPending
	}

	if !until.After(now) {
		return ErrPastSnoozeTime
	}

	r.snoozedUntil = &until
	r.snoozeCount++
	r.updatedAt = now

	return nil
}

func (r *Reminder) AttachSpatialHandle(handle string, now time.Time) {
	r.spatialHandle = handle
	r.updatedAt = now
}

func (r *Reminder) DetachSpatialHandle(now time.Time) {
	r.spatialHandle = ""
	r.updatedAt = now
}

func (r *Reminder) ID() ReminderID {
	return r.id
}

func (r *Reminder) Kind() Kind {
	return r.kind
}

func (r *Reminder) Message() string {
	return r.message
}

func (r *Reminder) ScheduledTime() *time.Time {
	return r.scheduledTime
}

func (r *Reminder) Location() *LocationTrigger {
	return r.location
}

func (r *Reminder) Status() Status {
	return r.status
}

func (r *Reminder) RecurrenceRule() *RecurrenceRule {
	return r.recurrenceRule
}

func (r *Reminder) Priority() Priority {
	return r.priority
}

func (r *Reminder) Category() string {
	return r.category
}

func (r *Reminder) SpatialHandle() string {
	return r.spatialHandle
}

func (r *Reminder) SnoozedUntil() *time.Time {
	return r.snoozedUntil
}

func (r *Reminder) SnoozeCount() int {
	return r.snoozeCount
}

func (r *Reminder) LastTriggeredAt() *time.Time {
	return r.lastTriggeredAt
}

func (r *Reminder) TriggerCount() int {
	return r.triggerCount
}

func (r *Reminder) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reminder) UpdatedAt() time.Time {
	return r.updatedAt
}
