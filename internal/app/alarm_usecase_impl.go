package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

type alarmUseCaseImpl struct {
	repo      domain.AlarmRepository
	timeSched *trigger.TimeTriggerScheduler
	snoozer   *trigger.SnoozeCoordinator
}

func NewAlarmUseCase(
	repo domain.AlarmRepository,
	timeSched *trigger.TimeTriggerScheduler,
	snoozer *trigger.SnoozeCoordinator,
) AlarmUseCase {
	return &alarmUseCaseImpl{
		repo:      repo,
		timeSched: timeSched,
		snoozer:   snoozer,
	}
}

func (uc *alarmUseCaseImpl) CreateAlarm(ctx context.Context, input CreateAlarmInput) (AlarmOutput, error) {
	slog.Debug("creating alarm",
		"hour", input.Hour,
		"minute", input.Minute,
	)

	snoozeDuration := input.SnoozeDurationMinutes
	if snoozeDuration == 0 {
		snoozeDuration = 10
	}

	alarm, err := domain.NewAlarm(
		input.Label,
		input.Hour,
		input.Minute,
		toWeekdays(input.RepeatDays),
		input.SoundRef,
		input.Vibrate,
		snoozeDuration,
	)
	if err != nil {
		return AlarmOutput{}, NewValidationError("alarm", err.Error())
	}

	if err := uc.repo.Save(ctx, alarm); err != nil {
		slog.Error("failed to save alarm",
			"error", err,
		)

		return AlarmOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	next := alarm.NextTriggerAt()
	if next != nil {
		if err := uc.timeSched.Arm(ctx, trigger.AlarmWakeKey(alarm.ID()), *next); err != nil {
			if delErr := uc.repo.Delete(ctx, alarm.ID()); delErr != nil {
				slog.Error("failed to roll back alarm after arm failure",
					"alarm_id", alarm.ID().String(),
					"error", delErr,
				)
			}

			return AlarmOutput{}, fmt.Errorf("%w: %v", ErrScheduling, err)
		}
	}

	slog.Info("alarm created",
		"alarm_id", alarm.ID().String(),
		"next_trigger_at", next,
	)

	return FromAlarmEntity(alarm), nil
}

func (uc *alarmUseCaseImpl) ListAlarms(ctx context.Context) (AlarmsOutput, error) {
	alarms, err := uc.repo.List(ctx)
	if err != nil {
		slog.Error("failed to list alarms",
			"error", err,
		)

		return AlarmsOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return FromAlarmEntities(alarms), nil
}

func (uc *alarmUseCaseImpl) SetAlarmEnabled(ctx context.Context, input SetAlarmEnabledInput) (AlarmOutput, error) {
	id, err := domain.AlarmIDFromString(input.ID)
	if err != nil {
		return AlarmOutput{}, NewValidationError("id", err.Error())
	}

	alarm, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAlarmNotFound) {
			return AlarmOutput{}, fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		return AlarmOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	alarm.SetEnabled(input.Enabled, time.Now())

	if err := uc.repo.Update(ctx, alarm); err != nil {
		slog.Error("failed to update alarm",
			"alarm_id", input.ID,
			"error", err,
		)

		return AlarmOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	key := trigger.AlarmWakeKey(id)

	if input.Enabled {
		if next := alarm.NextTriggerAt(); next != nil {
			if err := uc.timeSched.Arm(ctx, key, *next); err != nil {
				return AlarmOutput{}, fmt.Errorf("%w: %v", ErrScheduling, err)
			}
		}
	} else if err := uc.timeSched.Disarm(ctx, key); err != nil {
		return AlarmOutput{}, fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	slog.Info("alarm enabled state changed",
		"alarm_id", input.ID,
		"enabled", input.Enabled,
	)

	return FromAlarmEntity(alarm), nil
}

func (uc *alarmUseCaseImpl) DeleteAlarm(ctx context.Context, input DeleteAlarmInput) error {
	id, err := domain.AlarmIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	if err := uc.timeSched.Disarm(ctx, trigger.AlarmWakeKey(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAlarmNotFound) {
			slog.Info("alarm not found for deletion (idempotency)",
				"alarm_id", input.ID,
			)

			return nil
		}

		slog.Error("failed to delete alarm",
			"alarm_id", input.ID,
			"error", err,
		)

		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.Info("alarm deleted",
		"alarm_id", input.ID,
	)

	return nil
}

func (uc *alarmUseCaseImpl) SnoozeAlarm(ctx context.Context, input SnoozeAlarmInput) error {
	id, err := domain.AlarmIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	if err := uc.snoozer.SnoozeAlarm(ctx, id); err != nil {
		if errors.Is(err, domain.ErrAlarmNotFound) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}

		slog.Error("failed to snooze alarm",
			"alarm_id", input.ID,
			"error", err,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return nil
}
