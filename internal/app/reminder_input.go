package app

import "time"

type RecurrenceInput struct {
	Type           string
	Interval       int
	DaysOfWeek     []int
	DayOfMonth     int
	EndDate        *time.Time
	MaxOccurrences int
}

type CreateTimeReminderInput struct {
	Message       string
	ScheduledTime time.Time
	Recurrence    *RecurrenceInput
	Priority      string
	Category      string
}

type TimeConstraintInput struct {
	Start      string
	End        string
	DaysOfWeek []int
}

type LocationInput struct {
	Latitude         float64
	Longitude        float64
	RadiusMeters     float64
	PlaceName        string
	PlaceCategory    string
	TriggerDirection string
	RecurrencePolicy string
	TimeConstraint   *TimeConstraintInput
}

type CreateLocationReminderInput struct {
	Message  string
	Location LocationInput
	Priority string
	Category string
}

type DeleteReminderInput struct {
	ID string
}

type SnoozeReminderInput struct {
	ID      string
	Minutes int
}

type SnoozeUntilLeaveInput struct {
	ID string
}
