package handler

import "time"

type RecurrenceRequest struct {
	Type           string     `json:"type" binding:"required"`
	Interval       int        `json:"interval" binding:"omitempty,min=1"`
	DaysOfWeek     []int      `json:"days_of_week" binding:"omitempty,dive,min=0,max=6"`
	DayOfMonth     int        `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	EndDate        *time.Time `json:"end_date"`
	MaxOccurrences int        `json:"max_occurrences" binding:"omitempty,min=1"`
}

type CreateTimeReminderRequest struct {
	Message       string             `json:"message" binding:"required"`
	ScheduledTime time.Time          `json:"scheduled_time" binding:"required"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
	Priority      string             `json:"priority"`
	Category      string             `json:"category"`
}

type TimeConstraintRequest struct {
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	DaysOfWeek []int  `json:"days_of_week" binding:"omitempty,dive,min=0,max=6"`
}

type LocationRequest struct {
	Latitude         float64                `json:"latitude" binding:"min=-90,max=90"`
	Longitude        float64                `json:"longitude" binding:"min=-180,max=180"`
	RadiusMeters     float64                `json:"radius_meters" binding:"required,gt=0"`
	PlaceName        string                 `json:"place_name"`
	PlaceCategory    string                 `json:"place_category"`
	TriggerDirection string                 `json:"trigger_direction" binding:"required,oneof=enter exit both"`
	RecurrencePolicy string                 `json:"recurrence_policy" binding:"required,oneof=once every_time daily weekdays weekends"`
	TimeConstraint   *TimeConstraintRequest `json:"time_constraint"`
}

type CreateLocationReminderRequest struct {
	Message  string          `json:"message" binding:"required"`
	Location LocationRequest `json:"location" binding:"required"`
	Priority string          `json:"priority"`
	Category string          `json:"category"`
}

type SnoozeReminderRequest struct {
	Minutes int `json:"minutes" binding:"omitempty,min=1"`
}
