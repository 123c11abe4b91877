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

type reminderUseCaseImpl struct {
	repo      domain.ReminderRepository
	timeSched *trigger.TimeTriggerScheduler
	spatial   *trigger.SpatialTriggerController
	snoozer   *trigger.SnoozeCoordinator
}

func NewReminderUseCase(
	repo domain.ReminderRepository,
	timeSched *trigger.TimeTriggerScheduler,
	spatial *trigger.SpatialTriggerController,
	snoozer *trigger.SnoozeCoordinator,
) ReminderUseCase {
	return &reminderUseCaseImpl{
		repo:      repo,
		timeSched: timeSched,
		spatial:   spatial,
		snoozer:   snoozer,
	}
}

func (uc *reminderUseCaseImpl) CreateTimeReminder(ctx context.Context, input CreateTimeReminderInput) (ReminderOutput, error) {
	slog.Debug("creating time reminder",
		"scheduled_time", input.ScheduledTime,
	)

	priority, err := domain.NewPriority(input.Priority)
	if err != nil {
		return ReminderOutput{}, NewValidationError("priority", err.Error())
	}

	rule, err := buildRecurrenceRule(input.Recurrence)
	if err != nil {
		return ReminderOutput{}, NewValidationError("recurrence", err.Error())
	}

	reminder, err := domain.NewTimeReminder(input.Message, input.ScheduledTime, rule, priority, input.Category)
	if err != nil {
		return ReminderOutput{}, NewValidationError("reminder", err.Error())
	}

	if err := uc.repo.Save(ctx, reminder); err != nil {
		slog.Error("failed to save reminder",
			"error", err,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	key := trigger.ReminderWakeKey(reminder.ID())

	if err := uc.timeSched.Arm(ctx, key, input.ScheduledTime); err != nil {
		// Creation must not leave a pending record with no registration.
		if delErr := uc.repo.Delete(ctx, reminder.ID()); delErr != nil {
			slog.Error("failed to roll back reminder after arm failure",
				"reminder_id", reminder.ID().String(),
				"error", delErr,
			)
		}

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	slog.Info("time reminder created",
		"reminder_id", reminder.ID().String(),
		"scheduled_time", input.ScheduledTime,
	)

	return FromReminderEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) CreateLocationReminder(ctx context.Context, input CreateLocationReminderInput) (ReminderOutput, error) {
	slog.Debug("creating location reminder",
		"place", input.Location.PlaceName,
	)

	priority, err := domain.NewPriority(input.Priority)
	if err != nil {
		return ReminderOutput{}, NewValidationError("priority", err.Error())
	}

	location, err := buildLocationTrigger(input.Location)
	if err != nil {
		return ReminderOutput{}, NewValidationError("location", err.Error())
	}

	reminder, err := domain.NewLocationReminder(input.Message, location, priority, input.Category)
	if err != nil {
		return ReminderOutput{}, NewValidationError("reminder", err.Error())
	}

	if err := uc.repo.Save(ctx, reminder); err != nil {
		slog.Error("failed to save reminder",
			"error", err,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	handle, err := uc.spatial.Register(ctx, reminder)
	if err != nil {
		if delErr := uc.repo.Delete(ctx, reminder.ID()); delErr != nil {
			slog.Error("failed to roll back reminder after register failure",
				"reminder_id", reminder.ID().String(),
				"error", delErr,
			)
		}

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrScheduling, err)
	}

	reminder.AttachSpatialHandle(handle, time.Now())

	if err := uc.repo.Update(ctx, reminder); err != nil {
		slog.Error("failed to persist spatial handle",
			"reminder_id", reminder.ID().String(),
			"error", err,
		)

		return ReminderOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.Info("location reminder created",
		"reminder_id", reminder.ID().String(),
		"place", location.Place(),
	)

	return FromReminderEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) ListReminders(ctx context.Context) (RemindersOutput, error) {
	reminders, err := uc.repo.List(ctx)
	if err != nil {
		slog.Error("failed to list reminders",
			"error", err,
		)

		return RemindersOutput{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return FromReminderEntities(reminders), nil
}

func (uc *reminderUseCaseImpl) DeleteReminder(ctx context.Context, input DeleteReminderInput) error {
	slog.Debug("deleting reminder",
		"reminder_id", input.ID,
	)

	id, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	reminder, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.Info("reminder not found for deletion (idempotency)",
				"reminder_id", input.ID,
			)

			return nil
		}

		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Registrations release synchronously before the record goes away.
	switch reminder.Kind() {
	case domain.KindTimeBased:
		if err := uc.timeSched.Disarm(ctx, trigger.ReminderWakeKey(id)); err != nil {
			return fmt.Errorf("%w: %v", ErrScheduling, err)
		}
	case domain.KindLocationBased:
		if err := uc.spatial.Unregister(ctx, id); err != nil {
			return fmt.Errorf("%w: %v", ErrScheduling, err)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			return nil
		}

		slog.Error("failed to delete reminder",
			"error", err,
			"reminder_id", input.ID,
		)

		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.Info("reminder deleted",
		"reminder_id", input.ID,
	)

	return nil
}

func (uc *reminderUseCaseImpl) SnoozeReminder(ctx context.Context, input SnoozeReminderInput) error {
	id, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	if input.Minutes < 0 {
		return NewValidationError("minutes", "must not be negative")
	}

	err = uc.snoozer.SnoozeReminder(ctx, id, time.Duration(input.Minutes)*time.Minute)

	return uc.mapSnoozeError(err, input.ID)
}

func (uc *reminderUseCaseImpl) SnoozeUntilLeave(ctx context.Context, input SnoozeUntilLeaveInput) error {
	id, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		return NewValidationError("id", err.Error())
	}

	err = uc.snoozer.SnoozeUntilLeave(ctx, id)

	return uc.mapSnoozeError(err, input.ID)
}

func (uc *reminderUseCaseImpl) mapSnoozeError(err error, id string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrReminderNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, domain.ErrReminderNotPending),
		errors.Is(err, domain.ErrInvalidReminderKind),
		errors.Is(err, domain.ErrPastSnoozeTime):
		return NewValidationError("id", err.Error())
	default:
		slog.Error("failed to snooze reminder",
			"reminder_id", id,
			"error", err,
		)

		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
}

func buildRecurrenceRule(input *RecurrenceInput) (*domain.RecurrenceRule, error) {
	if input == nil {
		return nil, nil //nolint:nilnil
	}

	ruleType, err := domain.NewRecurrenceType(input.Type)
	if err != nil {
		return nil, err
	}

	if ruleType == domain.RecurrenceNone {
		return nil, nil //nolint:nilnil
	}

	interval := input.Interval
	if interval == 0 {
		interval = 1
	}

	rule, err := domain.NewRecurrenceRule(
		ruleType,
		interval,
		toWeekdays(input.DaysOfWeek),
		input.DayOfMonth,
		input.EndDate,
		input.MaxOccurrences,
	)
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

func buildLocationTrigger(input LocationInput) (domain.LocationTrigger, error) {
	direction, err := domain.NewTriggerDirection(input.TriggerDirection)
	if err != nil {
		return domain.LocationTrigger{}, err
	}

	policy, err := domain.NewRecurrencePolicy(input.RecurrencePolicy)
	if err != nil {
		return domain.LocationTrigger{}, err
	}

	var constraint *domain.TimeConstraint

	if input.TimeConstraint != nil {
		tc, err := domain.NewTimeConstraint(
			input.TimeConstraint.Start,
			input.TimeConstraint.End,
			toWeekdays(input.TimeConstraint.DaysOfWeek),
		)
		if err != nil {
			return domain.LocationTrigger{}, err
		}

		constraint = &tc
	}

	return domain.NewLocationTrigger(
		input.Latitude,
		input.Longitude,
		input.RadiusMeters,
		input.PlaceName,
		input.PlaceCategory,
		direction,
		policy,
		constraint,
	)
}

func toWeekdays(days []int) []time.Weekday {
	if len(days) == 0 {
		return nil
	}

	weekdays := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, time.Weekday(d%7))
	}

	return weekdays
}
