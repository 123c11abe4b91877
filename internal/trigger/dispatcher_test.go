package trigger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-trigger-engine/internal/testutil"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

// stepClock is a manually advanced time source shared by every component in a
// fixture, so gate decisions and re-armed wake times stay consistent.
type stepClock struct {
	current time.Time
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{current: start}
}

func (c *stepClock) Now() time.Time {
	return c.current
}

func (c *stepClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

type dispatchFixture struct {
	reminders  *testutil.InMemoryReminderRepository
	alarms     *testutil.InMemoryAlarmRepository
	publisher  *testutil.CapturingPublisher
	timeSvc    *testutil.FakeTimeTriggerService
	spatialSvc *testutil.FakeSpatialTriggerService
	timeSched  *trigger.TimeTriggerScheduler
	spatial    *trigger.SpatialTriggerController
	dispatcher *trigger.Dispatcher
	events     chan trigger.Event
	clock      *stepClock
}

func newDispatchFixture(t *testing.T, start time.Time) *dispatchFixture {
	t.Helper()

	clock := newStepClock(start)
	reminders := testutil.NewInMemoryReminderRepository()
	alarms := testutil.NewInMemoryAlarmRepository()
	publisher := testutil.NewCapturingPublisher()
	timeSvc := testutil.NewFakeTimeTriggerService()
	spatialSvc := testutil.NewFakeSpatialTriggerService()

	events := make(chan trigger.Event, 8)
	timeSched := trigger.NewTimeTriggerScheduler(timeSvc).WithClock(clock.Now)
	spatial := trigger.NewSpatialTriggerController(spatialSvc, reminders, events, 20).WithClock(clock.Now)

	dispatcher := trigger.NewDispatcher(
		reminders,
		alarms,
		publisher,
		timeSched,
		spatial,
		trigger.DefaultConfig(),
		events,
	).WithClock(clock.Now)

	return &dispatchFixture{
		reminders:  reminders,
		alarms:     alarms,
		publisher:  publisher,
		timeSvc:    timeSvc,
		spatialSvc: spatialSvc,
		timeSched:  timeSched,
		spatial:    spatial,
		dispatcher: dispatcher,
		events:     events,
		clock:      clock,
	}
}

func (f *dispatchFixture) saveTimeReminder(t *testing.T, scheduledAt time.Time, rule *domain.RecurrenceRule) *domain.Reminder {
	t.Helper()

	reminder, err := domain.NewTimeReminder("stretch", scheduledAt, rule, domain.PriorityNormal, "")
	require.NoError(t, err)
	require.NoError(t, f.reminders.Save(context.Background(), reminder))

	return reminder
}

func (f *dispatchFixture) saveLocationReminder(t *testing.T, policy domain.RecurrencePolicy) *domain.Reminder {
	t.Helper()

	loc, err := domain.NewLocationTrigger(
		35.6812, 139.7671, 150,
		"station", "commute",
		domain.DirectionEnter,
		policy,
		nil,
	)
	require.NoError(t, err)

	reminder, err := domain.NewLocationReminder("buy milk", loc, domain.PriorityNormal, "")
	require.NoError(t, err)
	require.NoError(t, f.reminders.Save(context.Background(), reminder))

	handle, err := f.spatial.Register(context.Background(), reminder)
	require.NoError(t, err)

	reminder.AttachSpatialHandle(handle, f.clock.Now())
	require.NoError(t, f.reminders.Update(context.Background(), reminder))

	return reminder
}

func TestHandleTimeTriggerOneShotSuccess(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	reminder := f.saveTimeReminder(t, scheduled, nil)
	key := trigger.ReminderWakeKey(reminder.ID())

	err := f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: scheduled})

	require.NoError(t, err)

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status())
	assert.Equal(t, 1, stored.TriggerCount())

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, reminder.ID().String(), events[0].ID)
	assert.Equal(t, "reminder", events[0].Source)
	assert.Equal(t, "stretch", events[0].Body)
}

func TestHandleTimeTriggerDuplicateDeliveryNoOp(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	reminder := f.saveTimeReminder(t, scheduled, nil)
	ev := trigger.TimeFired{Key: trigger.ReminderWakeKey(reminder.ID()), FiredAt: scheduled}

	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TriggerCount())
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerUnknownReminderDiscarded(t *testing.T) {
	f := newDispatchFixture(t, time.Now())

	key := trigger.WakeKey{Kind: trigger.SourceReminder, ID: "019539a1-0000-7000-8000-000000000000"}
	err := f.dispatcher.HandleTimeTrigger(context.Background(), trigger.TimeFired{Key: key, FiredAt: f.clock.Now()})

	require.NoError(t, err)
	assert.Empty(t, f.publisher.Events())
}

func TestHandleTimeTriggerRecurringReschedules(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	rule, err := domain.NewRecurrenceRule(domain.RecurrenceDaily, 1, nil, 0, nil, 0)
	require.NoError(t, err)

	reminder := f.saveTimeReminder(t, scheduled, &rule)
	key := trigger.ReminderWakeKey(reminder.ID())

	// Deliver late; the recurrence base stays the scheduled time.
	f.clock.Advance(20 * time.Minute)
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())
	assert.Equal(t, 1, stored.TriggerCount())
	require.NotNil(t, stored.ScheduledTime())
	assert.Equal(t, scheduled.Add(24*time.Hour), *stored.ScheduledTime())

	armedAt, ok := f.timeSvc.ScheduledAt(key)
	require.True(t, ok)
	assert.Equal(t, scheduled.Add(24*time.Hour), armedAt)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerRecurringDuplicateDiscarded(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	rule, err := domain.NewRecurrenceRule(domain.RecurrenceDaily, 1, nil, 0, nil, 0)
	require.NoError(t, err)

	reminder := f.saveTimeReminder(t, scheduled, &rule)
	ev := trigger.TimeFired{Key: trigger.ReminderWakeKey(reminder.ID()), FiredAt: scheduled}

	// The record stays pending after a recurring fire, so only the advanced
	// scheduled time marks the second identical delivery as consumed.
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TriggerCount())
	require.NotNil(t, stored.ScheduledTime())
	assert.Equal(t, scheduled.Add(24*time.Hour), *stored.ScheduledTime())
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerMaxOccurrencesCompletes(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	rule, err := domain.NewRecurrenceRule(domain.RecurrenceDaily, 1, nil, 0, nil, 2)
	require.NoError(t, err)

	reminder := f.saveTimeReminder(t, scheduled, &rule)
	key := trigger.ReminderWakeKey(reminder.ID())

	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status())
	assert.Equal(t, 2, stored.TriggerCount())
	assert.False(t, f.timeSched.IsArmed(key))
	assert.Len(t, f.publisher.Events(), 2)
}

func TestHandleTimeTriggerSnoozeGateSuppresses(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	reminder := f.saveTimeReminder(t, scheduled, nil)
	require.NoError(t, reminder.SnoozeUntil(scheduled.Add(30*time.Minute), scheduled))
	require.NoError(t, f.reminders.Update(ctx, reminder))

	key := trigger.ReminderWakeKey(reminder.ID())
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())
	assert.Equal(t, 0, stored.TriggerCount())
	assert.Empty(t, f.publisher.Events())

	// Past the window the same delivery goes through.
	f.clock.Advance(31 * time.Minute)
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))

	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerPublishFailureStillCommits(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)
	f.publisher.PublishErr = errors.New("broker unavailable")

	reminder := f.saveTimeReminder(t, scheduled, nil)
	key := trigger.ReminderWakeKey(reminder.ID())

	err := f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()})

	require.NoError(t, err)

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status())
}

func TestHandleTimeTriggerRepeatingAlarmRolls(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	alarm, err := domain.NewAlarm("weekday", 7, 0,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday},
		"chime", true, 10)
	require.NoError(t, err)
	require.NoError(t, f.alarms.Save(ctx, alarm))

	wakeAt := *alarm.NextTriggerAt()
	f.clock.Advance(wakeAt.Sub(f.clock.Now()))

	key := trigger.AlarmWakeKey(alarm.ID())
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: wakeAt}))

	stored, err := f.alarms.FindByID(ctx, alarm.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsEnabled())
	require.NotNil(t, stored.NextTriggerAt())

	armedAt, ok := f.timeSvc.ScheduledAt(key)
	require.True(t, ok)
	assert.Equal(t, *stored.NextTriggerAt(), armedAt)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "alarm", events[0].Source)
	assert.Equal(t, "weekday", events[0].Title)
	assert.Equal(t, "chime", events[0].SoundRef)
}

func TestHandleTimeTriggerRepeatingAlarmDuplicateDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	alarm, err := domain.NewAlarm("weekday", 7, 0,
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday},
		"chime", true, 10)
	require.NoError(t, err)
	require.NoError(t, f.alarms.Save(ctx, alarm))

	wakeAt := *alarm.NextTriggerAt()
	f.clock.Advance(wakeAt.Sub(f.clock.Now()))

	ev := trigger.TimeFired{Key: trigger.AlarmWakeKey(alarm.ID()), FiredAt: wakeAt}

	// A repeating alarm stays enabled after firing; the rolled nextTriggerAt
	// is what marks the duplicate wake as consumed.
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, ev))

	stored, err := f.alarms.FindByID(ctx, alarm.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.LastTriggeredAt())
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerOneTimeAlarmDisables(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	alarm, err := domain.NewAlarm("one shot", 7, 0, nil, "", false, 10)
	require.NoError(t, err)
	require.NoError(t, f.alarms.Save(ctx, alarm))

	wakeAt := *alarm.NextTriggerAt()
	f.clock.Advance(wakeAt.Sub(f.clock.Now()))

	key := trigger.AlarmWakeKey(alarm.ID())
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: wakeAt}))

	stored, err := f.alarms.FindByID(ctx, alarm.ID())
	require.NoError(t, err)
	assert.False(t, stored.IsEnabled())
	assert.Nil(t, stored.NextTriggerAt())
	assert.False(t, f.timeSched.IsArmed(key))
	assert.Len(t, f.publisher.Events(), 1)

	// A stale duplicate after the disable is discarded.
	require.NoError(t, f.dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{Key: key, FiredAt: f.clock.Now()}))
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleSpatialTransitionEveryTimeDebounce(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	reminder := f.saveLocationReminder(t, domain.PolicyEveryTime)
	ev := trigger.RegionTransition{
		Handle:     reminder.SpatialHandle(),
		Transition: domain.TransitionEnter,
		OccurredAt: f.clock.Now(),
	}

	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	require.Len(t, f.publisher.Events(), 1)

	// Boundary jitter within the debounce window is absorbed.
	f.clock.Advance(2 * time.Minute)
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Len(t, f.publisher.Events(), 1)

	f.clock.Advance(4 * time.Minute)
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Len(t, f.publisher.Events(), 2)

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())
	assert.Equal(t, 2, stored.TriggerCount())
}

func TestHandleSpatialTransitionDailyOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	reminder := f.saveLocationReminder(t, domain.PolicyDaily)
	ev := trigger.RegionTransition{
		Handle:     reminder.SpatialHandle(),
		Transition: domain.TransitionEnter,
		OccurredAt: f.clock.Now(),
	}

	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	require.Len(t, f.publisher.Events(), 1)

	// Re-entering hours later the same day stays quiet.
	f.clock.Advance(6 * time.Hour)
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Len(t, f.publisher.Events(), 1)

	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Len(t, f.publisher.Events(), 2)
}

func TestHandleSpatialTransitionOnceCompletesAndReleases(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	reminder := f.saveLocationReminder(t, domain.PolicyOnce)
	require.Equal(t, 1, f.spatialSvc.RegionCount())

	ev := trigger.RegionTransition{
		Handle:     reminder.SpatialHandle(),
		Transition: domain.TransitionEnter,
		OccurredAt: f.clock.Now(),
	}
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status())
	assert.Empty(t, stored.SpatialHandle())
	assert.Equal(t, 0, f.spatialSvc.RegionCount())
	assert.False(t, f.spatial.IsRegistered(reminder.ID()))
	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleSpatialTransitionDirectionMismatchDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newDispatchFixture(t, time.Now())

	reminder := f.saveLocationReminder(t, domain.PolicyEveryTime)
	ev := trigger.RegionTransition{
		Handle:     reminder.SpatialHandle(),
		Transition: domain.TransitionExit,
		OccurredAt: f.clock.Now(),
	}

	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))

	assert.Empty(t, f.publisher.Events())

	stored, err := f.reminders.FindByID(ctx, reminder.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TriggerCount())
}

func TestHandleSpatialTransitionTimeConstraintGate(t *testing.T) {
	ctx := context.Background()

	base := time.Now()
	// Pin the fixture clock to mid-afternoon so the constraint verdicts are
	// stable regardless of when the test runs.
	afternoon := time.Date(base.Year(), base.Month(), base.Day(), 15, 0, 0, 0, time.Local).Add(48 * time.Hour)
	f := newDispatchFixture(t, afternoon)

	tc, err := domain.NewTimeConstraint("09:00", "12:00", nil)
	require.NoError(t, err)

	loc, err := domain.NewLocationTrigger(
		35.6812, 139.7671, 150,
		"gym", "",
		domain.DirectionEnter,
		domain.PolicyEveryTime,
		&tc,
	)
	require.NoError(t, err)

	reminder, err := domain.NewLocationReminder("pack towel", loc, domain.PriorityNormal, "")
	require.NoError(t, err)
	require.NoError(t, f.reminders.Save(ctx, reminder))

	handle, err := f.spatial.Register(ctx, reminder)
	require.NoError(t, err)
	reminder.AttachSpatialHandle(handle, f.clock.Now())
	require.NoError(t, f.reminders.Update(ctx, reminder))

	ev := trigger.RegionTransition{Handle: handle, Transition: domain.TransitionEnter, OccurredAt: f.clock.Now()}

	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Empty(t, f.publisher.Events())

	// Next morning inside the window the same enter fires.
	f.clock.Advance(19 * time.Hour)
	require.NoError(t, f.dispatcher.HandleSpatialTransition(ctx, ev))
	assert.Len(t, f.publisher.Events(), 1)
}

func TestDispatchRoutesEvents(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	f := newDispatchFixture(t, scheduled)

	reminder := f.saveTimeReminder(t, scheduled, nil)

	f.dispatcher.Dispatch(ctx, trigger.TimeFired{
		Key:     trigger.ReminderWakeKey(reminder.ID()),
		FiredAt: scheduled,
	})

	assert.Len(t, f.publisher.Events(), 1)
}

func TestHandleTimeTriggerFireEventContents(t *testing.T) {
	ctrl := gomock.NewController(t)

	ctx := context.Background()
	scheduled := time.Now().Add(time.Hour)
	clock := newStepClock(scheduled)

	reminders := testutil.NewInMemoryReminderRepository()
	alarms := testutil.NewInMemoryAlarmRepository()
	timeSvc := testutil.NewFakeTimeTriggerService()
	spatialSvc := testutil.NewFakeSpatialTriggerService()
	events := make(chan trigger.Event, 1)

	mockPublisher := pubsub.NewMockPublisher(ctrl)

	cfg := trigger.DefaultConfig()
	dispatcher := trigger.NewDispatcher(
		reminders,
		alarms,
		mockPublisher,
		trigger.NewTimeTriggerScheduler(timeSvc).WithClock(clock.Now),
		trigger.NewSpatialTriggerController(spatialSvc, reminders, events, 20).WithClock(clock.Now),
		cfg,
		events,
	).WithClock(clock.Now)

	reminder, err := domain.NewTimeReminder("stretch", scheduled, nil, domain.PriorityHigh, "")
	require.NoError(t, err)
	require.NoError(t, reminders.Save(ctx, reminder))

	mockPublisher.EXPECT().
		PublishTriggerFired(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *pubsub.FireEvent) error {
			assert.Equal(t, reminder.ID().String(), event.ID)
			assert.Equal(t, "reminder", event.Source)
			assert.Equal(t, "Reminder", event.Title)
			assert.Equal(t, "stretch", event.Body)
			assert.Equal(t, "high", event.Priority)
			assert.Equal(t, cfg.SnoozeActions, event.SnoozeActions)
			assert.True(t, event.FiredAt.Equal(clock.Now()))

			return nil
		})

	err = dispatcher.HandleTimeTrigger(ctx, trigger.TimeFired{
		Key:     trigger.ReminderWakeKey(reminder.ID()),
		FiredAt: scheduled,
	})

	require.NoError(t, err)
}
