package app

import (
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type LocationOutput struct {
	Latitude         float64
	Longitude        float64
	RadiusMeters     float64
	PlaceName        string
	PlaceCategory    string
	TriggerDirection string
	RecurrencePolicy string
}

type ReminderOutput struct {
	ID              string
	Kind            string
	Message         string
	ScheduledTime   *time.Time
	Location        *LocationOutput
	Status          string
	Priority        string
	Category        string
	SnoozedUntil    *time.Time
	SnoozeCount     int
	LastTriggeredAt *time.Time
	TriggerCount    int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RemindersOutput struct {
	Reminders []ReminderOutput
	Count     int32
}

func FromReminderEntity(reminder *domain.Reminder) ReminderOutput {
	var location *LocationOutput

	if loc := reminder.Location(); loc != nil {
		location = &LocationOutput{
			Latitude:         loc.Latitude(),
			Longitude:        loc.Longitude(),
			RadiusMeters:     loc.RadiusMeters(),
			PlaceName:        loc.PlaceName(),
			PlaceCategory:    loc.PlaceCategory(),
			TriggerDirection: string(loc.Direction()),
			RecurrencePolicy: string(loc.Policy()),
		}
	}

	return ReminderOutput{
		ID:              reminder.ID().String(),
		Kind:            string(reminder.Kind()),
		Message:         reminder.Message(),
		ScheduledTime:   reminder.ScheduledTime(),
		Location:        location,
		Status:          string(reminder.Status()),
		Priority:        string(reminder.Priority()),
		Category:        reminder.Category(),
		SnoozedUntil:    reminder.SnoozedUntil(),
		SnoozeCount:     reminder.SnoozeCount(),
		LastTriggeredAt: reminder.LastTriggeredAt(),
		TriggerCount:    reminder.TriggerCount(),
		CreatedAt:       reminder.CreatedAt(),
		UpdatedAt:       reminder.UpdatedAt(),
	}
}

func FromReminderEntities(reminders []*domain.Reminder) RemindersOutput {
	outputs := make([]ReminderOutput, 0, len(reminders))
	for _, r := range reminders {
		outputs = append(outputs, FromReminderEntity(r))
	}

	return RemindersOutput{
		Reminders: outputs,
		Count:     int32(len(outputs)), //nolint:gosec
	}
}
