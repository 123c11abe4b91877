package app

import (
	"context"
)

type AlarmUseCase interface {
	CreateAlarm(ctx context.Context, input CreateAlarmInput) (AlarmOutput, error)
	ListAlarms(ctx context.Context) (AlarmsOutput, error)
	SetAlarmEnabled(ctx context.Context, input SetAlarmEnabledInput) (AlarmOutput, error)
	DeleteAlarm(ctx context.Context, input DeleteAlarmInput) error
	SnoozeAlarm(ctx context.Context, input SnoozeAlarmInput) error
}
