package app

import (
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

type AlarmOutput struct {
	ID                    string
	Label                 string
	Hour                  int
	Minute                int
	Enabled               bool
	RepeatDays            []int
	SoundRef              string
	Vibrate               bool
	SnoozeCount           int
	SnoozeDurationMinutes int
	LastTriggeredAt       *time.Time
	NextTriggerAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type AlarmsOutput struct {
	Alarms []AlarmOutput
	Count  int32
}

func FromAlarmEntity(alarm *domain.Alarm) AlarmOutput {
	repeatDays := make([]int, 0, len(alarm.RepeatDays()))
	for _, d := range alarm.RepeatDays() {
		repeatDays = append(repeatDays, int(d))
	}

	return AlarmOutput{
		ID:                    alarm.ID().String(),
		Label:                 alarm.Label(),
		Hour:                  alarm.Hour(),
		Minute:                alarm.Minute(),
		Enabled:               alarm.IsEnabled(),
		RepeatDays:            repeatDays,
		SoundRef:              alarm.SoundRef(),
		Vibrate:               alarm.Vibrate(),
		SnoozeCount:           alarm.SnoozeCount(),
		SnoozeDurationMinutes: alarm.SnoozeDurationMinutes(),
		LastTriggeredAt:       alarm.LastTriggeredAt(),
		NextTriggerAt:         alarm.NextTriggerAt(),
		CreatedAt:             alarm.CreatedAt(),
		UpdatedAt:             alarm.UpdatedAt(),
	}
}

func FromAlarmEntities(alarms []*domain.Alarm) AlarmsOutput {
	outputs := make([]AlarmOutput, 0, len(alarms))
	for _, a := range alarms {
		outputs = append(outputs, FromAlarmEntity(a))
	}

	return AlarmsOutput{
		Alarms: outputs,
		Count:  int32(len(outputs)), //nolint:gosec
	}
}
