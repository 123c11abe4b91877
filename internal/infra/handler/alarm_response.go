package handler

import (
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
)

type AlarmResponse struct {
	ID                    string     `json:"id"`
	Label                 string     `json:"label,omitempty"`
	Hour                  int        `json:"hour"`
	Minute                int        `json:"minute"`
	Enabled               bool       `json:"enabled"`
	RepeatDays            []int      `json:"repeat_days"`
	SoundRef              string     `json:"sound_ref,omitempty"`
	Vibrate               bool       `json:"vibrate"`
	SnoozeCount           int        `json:"snooze_count"`
	SnoozeDurationMinutes int        `json:"snooze_duration_minutes"`
	LastTriggeredAt       *time.Time `json:"last_triggered_at,omitempty"`
	NextTriggerAt         *time.Time `json:"next_trigger_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type AlarmsResponse struct {
	Alarms []AlarmResponse `json:"alarms"`
	Count  int32           `json:"count"`
}

func FromAlarmDTO(output app.AlarmOutput) AlarmResponse {
	return AlarmResponse{
		ID:                    output.ID,
		Label:                 output.Label,
		Hour:                  output.Hour,
		Minute:                output.Minute,
		Enabled:               output.Enabled,
		RepeatDays:            output.RepeatDays,
		SoundRef:              output.SoundRef,
		Vibrate:               output.Vibrate,
		SnoozeCount:           output.SnoozeCount,
		SnoozeDurationMinutes: output.SnoozeDurationMinutes,
		LastTriggeredAt:       output.LastTriggeredAt,
		NextTriggerAt:         output.NextTriggerAt,
		CreatedAt:             output.CreatedAt,
		UpdatedAt:             output.UpdatedAt,
	}
}

func FromAlarmDTOs(output app.AlarmsOutput) AlarmsResponse {
	alarms := make([]AlarmResponse, 0, len(output.Alarms))
	for _, a := range output.Alarms {
		alarms = append(alarms, FromAlarmDTO(a))
	}

	return AlarmsResponse{
		Alarms: alarms,
		Count:  output.Count,
	}
}
