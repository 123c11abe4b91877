package domain

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrAlarmNotFound    = errors.New("alarm not found")

	ErrEmptyMessage      = errors.New("message must not be empty")
	ErrPastScheduledTime = errors.New("scheduled time cannot be in the past")
	ErrPastSnoozeTime    = errors.New("snooze time must be in the future")
	ErrReminderNotPending = errors.New("reminder is not pending")

	ErrInvalidReminderID         = errors.New("invalid reminder ID")
	ErrInvalidAlarmID            = errors.New("invalid alarm ID")
	ErrInvalidReminderKind       = errors.New("invalid reminder kind")
	ErrInvalidReminderStatus     = errors.New("invalid reminder status")
	ErrInvalidPriority           = errors.New("invalid priority")
	ErrInvalidTriggerDirection   = errors.New("invalid trigger direction")
	ErrInvalidRecurrencePolicy   = errors.New("invalid recurrence policy")
	ErrInvalidRecurrenceType     = errors.New("invalid recurrence type")
	ErrInvalidRecurrenceInterval = errors.New("recurrence interval must be positive")

	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrInvalidRadius    = errors.New("radius must be positive")
	ErrMissingPlace     = errors.New("either place name or place category is required")

	ErrInvalidTimeOfDay   = errors.New("time of day must be in HH:MM format")
	ErrInvalidAlarmTime   = errors.New("alarm hour must be 0-23 and minute 0-59")
	ErrInvalidSnoozeSpan  = errors.New("snooze duration must be positive")
)
