package handler

import (
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
)

type LocationResponse struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	RadiusMeters     float64 `json:"radius_meters"`
	PlaceName        string  `json:"place_name,omitempty"`
	PlaceCategory    string  `json:"place_category,omitempty"`
	TriggerDirection string  `json:"trigger_direction"`
	RecurrencePolicy string  `json:"recurrence_policy"`
}

type ReminderResponse struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Message         string            `json:"message"`
	ScheduledTime   *time.Time        `json:"scheduled_time,omitempty"`
	Location        *LocationResponse `json:"location,omitempty"`
	Status          string            `json:"status"`
	Priority        string            `json:"priority"`
	Category        string            `json:"category,omitempty"`
	SnoozedUntil    *time.Time        `json:"snoozed_until,omitempty"`
	SnoozeCount     int               `json:"snooze_count"`
	LastTriggeredAt *time.Time        `json:"last_triggered_at,omitempty"`
	TriggerCount    int               `json:"trigger_count"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type RemindersResponse struct {
	Reminders []ReminderResponse `json:"reminders"`
	Count     int32              `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromReminderDTO(output app.ReminderOutput) ReminderResponse {
	var location *LocationResponse

	if output.Location != nil {
		location = &LocationResponse{
			Latitude:         output.Location.Latitude,
			Longitude:        output.Location.Longitude,
			RadiusMeters:     output.Location.RadiusMeters,
			PlaceName:        output.Location.PlaceName,
			PlaceCategory:    output.Location.PlaceCategory,
			TriggerDirection: output.Location.TriggerDirection,
			RecurrencePolicy: output.Location.RecurrencePolicy,
		}
	}

	return ReminderResponse{
		ID:              output.ID,
		Kind:            output.Kind,
		Message:         output.Message,
		ScheduledTime:   output.ScheduledTime,
		Location:        location,
		Status:          output.Status,
		Priority:        output.Priority,
		Category:        output.Category,
		SnoozedUntil:    output.SnoozedUntil,
		SnoozeCount:     output.SnoozeCount,
		LastTriggeredAt: output.LastTriggeredAt,
		TriggerCount:    output.TriggerCount,
		CreatedAt:       output.CreatedAt,
		UpdatedAt:       output.UpdatedAt,
	}
}

func FromReminderDTOs(output app.RemindersOutput) RemindersResponse {
	reminders := make([]ReminderResponse, 0, len(output.Reminders))
	for _, r := range output.Reminders {
		reminders = append(reminders, FromReminderDTO(r))
	}

	return RemindersResponse{
		Reminders: reminders,
		Count:     output.Count,
	}
}
