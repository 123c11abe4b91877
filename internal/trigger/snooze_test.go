package trigger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

type snoozeFixture struct {
	*dispatchFixture
	coordinator *trigger.SnoozeCoordinator
}

func newSnoozeFixture(t *testing.T, start time.Time) *snoozeFixture {
	t.Helper()

	base := newDispatchFixture(t, start)

	coordinator := trigger.NewSnoozeCoordinator(
		base.reminders,
		base.alarms,
		base.timeSched,
		base.spatial,
		trigger.DefaultConfig(),
	).WithClock(base.clock.Now)

	return &snoozeFixture{
		dispatchFixture: base,
		coordinator:     coordinator,
	}
}

func TestSnoozeReminderError(t *testing.T) {
	f := newSnoozeFixture(t, time.Now())

	id := domain.NewReminderID()
	err := f.coordinator.SnoozeReminder(context.Background(), id, 10*time.Minute)

	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestSnoozeReminderRearmsTimeBased(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	scheduled := now.Add(time.Hour)
	reminder := f.saveTimeReminder(t, scheduled, nil)
	key := trigger.ReminderWakeKey(reminder.ID())

	require.NoError(t, f.timeSched.Arm(ctx, key, scheduled))

	require.NoError(t, f.coordinator.SnoozeReminder(ctx, reminder.ID(), 20*time.Minute))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.SnoozedUntil())
	assert.Equal(t, now.Add(20*time.Minute), *stored.SnoozedUntil())
	assert.Equal(t, 1, stored.SnoozeCount())

	// The wake moved to the end of the window; the recurrence base did not.
	armedAt, ok := f.timeSvc.ScheduledAt(key)
	require.True(t, ok)
	assert.Equal(t, now.Add(20*time.Minute), armedAt)
	require.NotNil(t, stored.ScheduledTime())
	assert.Equal(t, scheduled, *stored.ScheduledTime())
}

func TestSnoozeReminderZeroSpanUsesDefault(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	reminder := f.saveTimeReminder(t, now.Add(time.Hour), nil)

	require.NoError(t, f.coordinator.SnoozeReminder(ctx, reminder.ID(), 0))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.SnoozedUntil())
	assert.Equal(t, now.Add(trigger.DefaultConfig().DefaultSnooze), *stored.SnoozedUntil())
}

func TestSnoozeReminderLocationKeepsRegistration(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	reminder := f.saveLocationReminder(t, domain.PolicyEveryTime)

	require.NoError(t, f.coordinator.SnoozeReminder(ctx, reminder.ID(), 15*time.Minute))

	assert.True(t, f.spatial.IsRegistered(reminder.ID()))
	assert.Equal(t, 0, f.timeSched.ArmedCount())

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.SnoozedUntil())
}

func TestSnoozeUntilLeaveError(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	reminder := f.saveTimeReminder(t, now.Add(time.Hour), nil)

	err := f.coordinator.SnoozeUntilLeave(ctx, reminder.ID())

	assert.ErrorIs(t, err, domain.ErrInvalidReminderKind)
}

func TestSnoozeUntilLeaveAbsorbsEnters(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	reminder := f.saveLocationReminder(t, domain.PolicyEveryTime)
	handle := reminder.SpatialHandle()

	require.NoError(t, f.coordinator.SnoozeUntilLeave(ctx, reminder.ID()))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.SnoozedUntil())
	assert.Equal(t, now.Add(trigger.DefaultConfig().UntilLeaveCooldown), *stored.SnoozedUntil())

	// Enter-side events are absorbed at the controller until the next exit.
	f.spatial.OnTransition(ctx, handle, domain.TransitionEnter)
	select {
	case ev := <-f.events:
		t.Fatalf("unexpected event forwarded: %#v", ev)
	default:
	}
}

func TestSnoozeAlarmMovesWake(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	alarm, err := domain.NewAlarm("snoozer", 7, 0, nil, "", false, 15)
	require.NoError(t, err)
	require.NoError(t, f.alarms.Save(ctx, alarm))

	key := trigger.AlarmWakeKey(alarm.ID())
	require.NoError(t, f.coordinator.SnoozeAlarm(ctx, alarm.ID()))

	stored, err := f.alarms.FindByID(ctx, alarm.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.NextTriggerAt())
	assert.Equal(t, now.Add(15*time.Minute), *stored.NextTriggerAt())

	armedAt, ok := f.timeSvc.ScheduledAt(key)
	require.True(t, ok)
	assert.Equal(t, now.Add(15*time.Minute), armedAt)
}

func TestSnoozeReminderPastNextOccurrenceRolls(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := newSnoozeFixture(t, now)

	scheduled := now.Add(time.Hour)
	rule, err := domain.NewRecurrenceRule(domain.RecurrenceDaily, 1, nil, 0, nil, 0)
	require.NoError(t, err)

	reminder := f.saveTimeReminder(t, scheduled, &rule)
	key := trigger.ReminderWakeKey(reminder.ID())

	f.clock.Advance(time.Hour)
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: scheduled}))

	// The suppression window leaps past the next two occurrences; the fire
	// at its end must re-arm at a future instant, not the stale base.
	require.NoError(t, f.coordinator.SnoozeReminder(ctx, reminder.ID(), 50*time.Hour))

	until := f.clock.Now().Add(50 * time.Hour)
	f.clock.Advance(50 * time.Hour)
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: until}))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())
	assert.Equal(t, 2, stored.TriggerCount())
	require.NotNil(t, stored.ScheduledTime())
	assert.True(t, stored.ScheduledTime().After(f.clock.Now()))

	armedAt, ok := f.timeSvc.ScheduledAt(key)
	require.True(t, ok)
	assert.Equal(t, *stored.ScheduledTime(), armedAt)
	assert.Len(t, f.publisher.Events(), 2)
}
