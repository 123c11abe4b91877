package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

// RecoveryService rebuilds OS-level registrations from the store after a
// restart. It only arms records that are pending and unarmed, so running it
// repeatedly, or concurrently with live dispatch, adds nothing twice.
type RecoveryService struct {
	reminders domain.ReminderRepository
	alarms    domain.AlarmRepository
	timeSched *TimeTriggerScheduler
	spatial   *SpatialTriggerController
	events    chan<- Event
	now       func() time.Time
}

func NewRecoveryService(
	reminders domain.ReminderRepository,
	alarms domain.AlarmRepository,
	timeSched *TimeTriggerScheduler,
	spatial *SpatialTriggerController,
	events chan<- Event,
) *RecoveryService {
	return &RecoveryService{
		reminders: reminders,
		alarms:    alarms,
		timeSched: timeSched,
		spatial:   spatial,
		events:    events,
		now:       time.Now,
	}
}

// WithClock substitutes the time source. Intended for tests.
func (r *RecoveryService) WithClock(now func() time.Time) *RecoveryService {
	r.now = now

	return r
}

// RecoverAll re-arms every pending record. Wake-ups that came due while the
// process was down are dispatched immediately rather than silently dropped;
// the dispatcher's reload-then-act handling makes that safe. Arm failures
// are logged and retried on the next recovery run, not via a retry timer.
func (r *RecoveryService) RecoverAll(ctx context.Context) error {
	if err := r.recoverTimeBased(ctx); err != nil {
		return err
	}

	if err := r.recoverLocationBased(ctx); err != nil {
		return err
	}

	return r.recoverAlarms(ctx)
}

func (r *RecoveryService) recoverTimeBased(ctx context.Context) error {
	reminders, err := r.reminders.ActiveTimeBased(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending time reminders: %w", err)
	}

	now := r.now()
	entries := make([]WakeEntry, 0, len(reminders))
	overdue := 0

	for _, rem := range reminders {
		key := ReminderWakeKey(rem.ID())

		at := rem.ScheduledTime()
		if until := rem.SnoozedUntil(); until != nil && until.After(now) {
			at = until
		}

		if at == nil {
			continue
		}

		if !at.After(now) {
			if !r.timeSched.IsArmed(key) {
				r.events <- TimeFired{Key: key, FiredAt: now}
				overdue++
			}

			continue
		}

		entries = append(entries, WakeEntry{Key: key, At: *at})
	}

	armed, failed := r.timeSched.RearmAll(ctx, entries)

	slog.Info("time trigger recovery completed",
		"pending", len(reminders),
		"armed", armed,
		"failed", failed,
		"dispatched_overdue", overdue,
	)

	return nil
}

func (r *RecoveryService) recoverLocationBased(ctx context.Context) error {
	reminders, err := r.reminders.ActiveLocationBased(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending location reminders: %w", err)
	}

	now := r.now()
	registered := 0

	for _, rem := range reminders {
		if r.spatial.IsRegistered(rem.ID()) {
			continue
		}

		handle, err := r.spatial.Register(ctx, rem)
		if err != nil {
			slog.Warn("failed to restore spatial registration",
				"reminder_id", rem.ID().String(),
				"error", err,
			)

			continue
		}

		if rem.SpatialHandle() != handle {
			rem.AttachSpatialHandle(handle, now)

			if err := r.reminders.Update(ctx, rem); err != nil {
				slog.Error("failed to persist restored spatial handle",
					"reminder_id", rem.ID().String(),
					"error", err,
				)

				continue
			}
		}

		registered++
	}

	slog.Info("spatial trigger recovery completed",
		"pending", len(reminders),
		"registered", registered,
	)

	return nil
}

func (r *RecoveryService) recoverAlarms(ctx context.Context) error {
	alarms, err := r.alarms.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled alarms: %w", err)
	}

	now := r.now()
	entries := make([]WakeEntry, 0, len(alarms))

	for _, alarm := range alarms {
		at := alarm.NextTriggerAt()
		if at == nil || !at.After(now) {
			// Missed while down; roll to the next matching instant.
			next := alarm.NextTriggerAfter(now)
			at = &next
		}

		entries = append(entries, WakeEntry{Key: AlarmWakeKey(alarm.ID()), At: *at})
	}

	armed, failed := r.timeSched.RearmAll(ctx, entries)

	slog.Info("alarm recovery completed",
		"enabled", len(alarms),
		"armed", armed,
		"failed", failed,
	)

	return nil
}
