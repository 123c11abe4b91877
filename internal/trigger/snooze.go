package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

// SnoozeCoordinator mutates suppression windows and re-arms the appropriate
// scheduler. It is the only writer of snoozedUntil/snoozeCount.
type SnoozeCoordinator struct {
	reminders domain.ReminderRepository
	alarms    domain.AlarmRepository
	timeSched *TimeTriggerScheduler
	spatial   *SpatialTriggerController
	cfg       Config
	now       func() time.Time
}

func NewSnoozeCoordinator(
	reminders domain.ReminderRepository,
	alarms domain.AlarmRepository,
	timeSched *TimeTriggerScheduler,
	spatial *SpatialTriggerController,
	cfg Config,
) *SnoozeCoordinator {
	return &SnoozeCoordinator{
		reminders: reminders,
		alarms:    alarms,
		timeSched: timeSched,
		spatial:   spatial,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock substitutes the time source. Intended for tests.
func (s *SnoozeCoordinator) WithClock(now func() time.Time) *SnoozeCoordinator {
	s.now = now

	return s
}

// SnoozeReminder opens a suppression window of the given span (the default
// span when zero). Time-based reminders get their wake re-armed at the end
// of the window as a one-off override; the recurrence base is untouched.
// Location reminders keep their registration live and rely on the
// dispatcher's snooze gate.
func (s *SnoozeCoordinator) SnoozeReminder(ctx context.Context, id domain.ReminderID, span time.Duration) error {
	if span <= 0 {
		span = s.cfg.DefaultSnooze
	}

	reminder, err := s.reminders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	until := now.Add(span)

	if err := reminder.SnoozeUntil(until, now); err != nil {
		return err
	}

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to persist snooze: %w", err)
	}

	if reminder.Kind() == domain.KindTimeBased {
		key := ReminderWakeKey(id)

		if err := s.timeSched.Disarm(ctx, key); err != nil {
			return err
		}

		if err := s.timeSched.Arm(ctx, key, until); err != nil {
			return err
		}
	}

	slog.Info("reminder snoozed",
		"reminder_id", id.String(),
		"until", until,
		"snooze_count", reminder.SnoozeCount(),
	)

	return nil
}

// SnoozeUntilLeave suppresses a location reminder until the device has left
// the region: enter-side events are absorbed until the next exit, with a
// configured cooldown window as a backstop in case the exit is never
// delivered.
func (s *SnoozeCoordinator) SnoozeUntilLeave(ctx context.Context, id domain.ReminderID) error {
	reminder, err := s.reminders.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if reminder.Kind() != domain.KindLocationBased {
		return fmt.Errorf("%w: snooze-until-leave requires a location reminder", domain.ErrInvalidReminderKind)
	}

	now := s.now()

	if err := reminder.SnoozeUntil(now.Add(s.cfg.UntilLeaveCooldown), now); err != nil {
		return err
	}

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to persist snooze: %w", err)
	}

	s.spatial.AwaitExit(id)

	slog.Info("reminder snoozed until leave",
		"reminder_id", id.String(),
		"backstop", s.cfg.UntilLeaveCooldown,
	)

	return nil
}

// SnoozeAlarm pushes the alarm's next trigger by its configured snooze span.
func (s *SnoozeCoordinator) SnoozeAlarm(ctx context.Context, id domain.AlarmID) error {
	alarm, err := s.alarms.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	alarm.Snooze(now)

	if err := s.alarms.Update(ctx, alarm); err != nil {
		return fmt.Errorf("failed to persist alarm snooze: %w", err)
	}

	key := AlarmWakeKey(id)

	if err := s.timeSched.Disarm(ctx, key); err != nil {
		return err
	}

	if next := alarm.NextTriggerAt(); next != nil {
		if err := s.timeSched.Arm(ctx, key, *next); err != nil {
			return err
		}
	}

	slog.Info("alarm snoozed",
		"alarm_id", id.String(),
		"next", alarm.NextTriggerAt(),
	)

	return nil
}
