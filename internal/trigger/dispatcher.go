package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/pubsub"
)

// Dispatcher owns the trigger state machine. Both schedulers feed it through
// a channel boundary; every handler reloads persisted state before acting so
// duplicate or late deliveries degrade to silent no-ops. State transitions
// are committed before the fire payload is published, never after.
//
// Dispatch failures are logged and the event is dropped. The next organic
// delivery (tomorrow's enter, the next wake) is the retry point.
type Dispatcher struct {
	reminders  domain.ReminderRepository
	alarms     domain.AlarmRepository
	calculator *domain.RecurrenceCalculator
	publisher  pubsub.Publisher
	timeSched  *TimeTriggerScheduler
	spatial    *SpatialTriggerController
	cfg        Config
	events     chan Event
	now        func() time.Time
}

func NewDispatcher(
	reminders domain.ReminderRepository,
	alarms domain.AlarmRepository,
	publisher pubsub.Publisher,
	timeSched *TimeTriggerScheduler,
	spatial *SpatialTriggerController,
	cfg Config,
	events chan Event,
) *Dispatcher {
	return &Dispatcher{
		reminders:  reminders,
		alarms:     alarms,
		calculator: domain.NewRecurrenceCalculator(),
		publisher:  publisher,
		timeSched:  timeSched,
		spatial:    spatial,
		cfg:        cfg,
		events:     events,
		now:        time.Now,
	}
}

// WithClock substitutes the time source. Intended for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now

	return d
}

// Events exposes the inbound queue for trigger service implementations.
func (d *Dispatcher) Events() chan<- Event {
	return d.events
}

// Run drains the event queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("trigger dispatcher started")

	for {
		select {
		case <-ctx.Done():
			slog.Info("trigger dispatcher stopped")

			return
		case ev := <-d.events:
			d.Dispatch(ctx, ev)
		}
	}
}

// Dispatch routes one event to its handler. Handler errors are logged and
// the event is dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	var err error

	switch e := ev.(type) {
	case TimeFired:
		err = d.HandleTimeTrigger(ctx, e)
	case RegionTransition:
		err = d.HandleSpatialTransition(ctx, e)
	default:
		slog.Warn("unknown trigger event discarded")

		return
	}

	if err != nil {
		slog.Error("trigger dispatch failed, event dropped",
			"error", err,
		)
	}
}

// HandleTimeTrigger processes an exact-wake delivery.
func (d *Dispatcher) HandleTimeTrigger(ctx context.Context, ev TimeFired) error {
	switch ev.Key.Kind {
	case SourceReminder:
		return d.handleReminderWake(ctx, ev)
	case SourceAlarm:
		return d.handleAlarmWake(ctx, ev)
	default:
		slog.Warn("time trigger with unknown source discarded",
			"key", ev.Key.String(),
		)

		return nil
	}
}

func (d *Dispatcher) handleReminderWake(ctx context.Context, ev TimeFired) error {
	id, err := domain.ReminderIDFromString(ev.Key.ID)
	if err != nil {
		slog.Warn("time trigger with malformed reminder id discarded",
			"key", ev.Key.String(),
		)

		return nil
	}

	reminder, err := d.reminders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.Debug("time trigger for deleted reminder discarded",
				"reminder_id", ev.Key.ID,
			)

			return nil
		}

		return fmt.Errorf("failed to reload reminder: %w", err)
	}

	now := d.now()

	if !reminder.IsPending() {
		slog.Debug("time trigger for non-pending reminder discarded",
			"reminder_id", ev.Key.ID,
			"status", string(reminder.Status()),
		)

		return nil
	}

	if reminder.IsSnoozedAt(now) {
		// The snooze coordinator already re-armed a wake at snoozedUntil.
		slog.Debug("time trigger suppressed by snooze window",
			"reminder_id", ev.Key.ID,
			"snoozed_until", reminder.SnoozedUntil(),
		)

		return nil
	}

	// A recurring record stays pending after firing, so duplicate delivery
	// of the same wake would fire it again. Once a firing has advanced the
	// scheduled time past the delivery instant, the event is stale. A cleared
	// snooze wake is exempt: its delivery instant precedes the next base.
	if scheduled := reminder.ScheduledTime(); scheduled != nil && scheduled.After(ev.FiredAt) && reminder.SnoozedUntil() == nil {
		slog.Debug("stale time trigger discarded",
			"reminder_id", ev.Key.ID,
			"scheduled_time", *scheduled,
			"fired_at", ev.FiredAt,
		)

		return nil
	}

	// Compute the follow-up occurrence before mutating; the recurrence base
	// is the scheduled time, not the delivery time.
	var (
		next    time.Time
		hasNext bool
	)

	if rule := reminder.RecurrenceRule(); rule != nil && reminder.ScheduledTime() != nil {
		base := *reminder.ScheduledTime()
		occurred := reminder.TriggerCount() + 1

		for {
			next, hasNext = d.calculator.NextOccurrence(base, *rule, occurred)
			if !hasNext || next.After(now) {
				break
			}

			// A long snooze can leap past occurrences that never fired;
			// skip them so the re-arm lands in the future.
			base = next
			occurred++
		}
	}

	reminder.MarkFired(now)

	if hasNext {
		reminder.RescheduleTo(next, now)
	} else if err := reminder.Complete(now); err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}

	if err := d.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to persist reminder firing: %w", err)
	}

	if hasNext {
		if err := d.timeSched.Arm(ctx, ev.Key, next); err != nil {
			slog.Error("failed to re-arm recurring reminder",
				"reminder_id", ev.Key.ID,
				"next", next,
				"error", err,
			)
		}
	} else if err := d.timeSched.Disarm(ctx, ev.Key); err != nil {
		slog.Error("failed to disarm completed reminder",
			"reminder_id", ev.Key.ID,
			"error", err,
		)
	}

	d.publishFire(ctx, reminderFireEvent(reminder, now, d.cfg.SnoozeActions))

	slog.Info("time reminder fired",
		"reminder_id", ev.Key.ID,
		"recurring", hasNext,
		"trigger_count", reminder.TriggerCount(),
	)

	return nil
}

func (d *Dispatcher) handleAlarmWake(ctx context.Context, ev TimeFired) error {
	id, err := domain.AlarmIDFromString(ev.Key.ID)
	if err != nil {
		slog.Warn("time trigger with malformed alarm id discarded",
			"key", ev.Key.String(),
		)

		return nil
	}

	alarm, err := d.alarms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAlarmNotFound) {
			slog.Debug("time trigger for deleted alarm discarded",
				"alarm_id", ev.Key.ID,
			)

			return nil
		}

		return fmt.Errorf("failed to reload alarm: %w", err)
	}

	if !alarm.IsEnabled() {
		slog.Debug("time trigger for disabled alarm discarded",
			"alarm_id", ev.Key.ID,
		)

		return nil
	}

	// Firing rolls nextTriggerAt forward, so a duplicate of the consumed
	// wake arrives with an earlier instant than the current target.
	if next := alarm.NextTriggerAt(); next != nil && next.After(ev.FiredAt) {
		slog.Debug("stale alarm wake discarded",
			"alarm_id", ev.Key.ID,
			"next_trigger_at", *next,
			"fired_at", ev.FiredAt,
		)

		return nil
	}

	now := d.now()

	alarm.MarkFired(now)

	if err := d.alarms.Update(ctx, alarm); err != nil {
		return fmt.Errorf("failed to persist alarm firing: %w", err)
	}

	if next := alarm.NextTriggerAt(); next != nil {
		if err := d.timeSched.Arm(ctx, ev.Key, *next); err != nil {
			slog.Error("failed to re-arm repeating alarm",
				"alarm_id", ev.Key.ID,
				"next", *next,
				"error", err,
			)
		}
	} else if err := d.timeSched.Disarm(ctx, ev.Key); err != nil {
		slog.Error("failed to disarm one-time alarm",
			"alarm_id", ev.Key.ID,
			"error", err,
		)
	}

	d.publishFire(ctx, alarmFireEvent(alarm, now, d.cfg.SnoozeActions))

	slog.Info("alarm fired",
		"alarm_id", ev.Key.ID,
		"repeating", alarm.IsRepeating(),
	)

	return nil
}

// HandleSpatialTransition processes a region event already direction-filtered
// by the controller. The direction check is repeated here because the record
// may have changed between filtering and dispatch.
func (d *Dispatcher) HandleSpatialTransition(ctx context.Context, ev RegionTransition) error {
	reminder, err := d.reminders.FindBySpatialHandle(ctx, ev.Handle)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.Debug("transition for unknown handle discarded",
				"handle", ev.Handle,
			)

			return nil
		}

		return fmt.Errorf("failed to reload reminder by handle: %w", err)
	}

	now := d.now()
	id := reminder.ID()

	if !reminder.IsPending() {
		slog.Debug("transition for non-pending reminder discarded",
			"reminder_id", id.String(),
			"status", string(reminder.Status()),
		)

		return nil
	}

	loc := reminder.Location()
	if loc == nil || !loc.Direction().Matches(ev.Transition) {
		slog.Debug("transition direction mismatch discarded",
			"reminder_id", id.String(),
			"transition", string(ev.Transition),
		)

		return nil
	}

	if tc := loc.TimeConstraint(); tc != nil && !tc.Matches(now) {
		slog.Debug("transition outside time constraint discarded",
			"reminder_id", id.String(),
		)

		return nil
	}

	if reminder.IsSnoozedAt(now) {
		slog.Debug("transition suppressed by snooze window",
			"reminder_id", id.String(),
			"snoozed_until", reminder.SnoozedUntil(),
		)

		return nil
	}

	if !loc.Policy().AllowsDay(now) {
		slog.Debug("transition on excluded day discarded",
			"reminder_id", id.String(),
			"policy", string(loc.Policy()),
		)

		return nil
	}

	if loc.Policy().InCooldown(reminder.LastTriggeredAt(), now, d.cfg.ReentryDebounce) {
		slog.Debug("transition within cooldown window discarded",
			"reminder_id", id.String(),
			"policy", string(loc.Policy()),
			"last_triggered_at", reminder.LastTriggeredAt(),
		)

		return nil
	}

	reminder.MarkFired(now)

	once := loc.Policy() == domain.PolicyOnce
	if once {
		if err := reminder.Complete(now); err != nil {
			return fmt.Errorf("failed to complete reminder: %w", err)
		}

		reminder.DetachSpatialHandle(now)
	}

	if err := d.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to persist reminder firing: %w", err)
	}

	if once {
		if err := d.spatial.Unregister(ctx, id); err != nil {
			slog.Error("failed to release spatial registration",
				"reminder_id", id.String(),
				"error", err,
			)
		}
	}

	d.publishFire(ctx, locationFireEvent(reminder, loc, now, d.cfg.SnoozeActions))

	slog.Info("location reminder fired",
		"reminder_id", id.String(),
		"transition", string(ev.Transition),
		"policy", string(loc.Policy()),
		"trigger_count", reminder.TriggerCount(),
	)

	return nil
}

func (d *Dispatcher) publishFire(ctx context.Context, event *pubsub.FireEvent) {
	if d.publisher == nil {
		return
	}

	if err := d.publisher.PublishTriggerFired(ctx, event); err != nil {
		// State is already committed; the presenter misses one payload
		// rather than the store diverging from what was announced.
		slog.Error("failed to publish fire payload",
			"record_id", event.ID,
			"error", err,
		)
	}
}
