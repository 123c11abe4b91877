package trigger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
	"github.com/KasumiMercury/primind-trigger-engine/internal/testutil"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

type spatialFixture struct {
	reminders *testutil.InMemoryReminderRepository
	service   *testutil.FakeSpatialTriggerService
	events    chan trigger.Event
	ctrl      *trigger.SpatialTriggerController
}

func newSpatialFixture(t *testing.T, maxRegions int) *spatialFixture {
	t.Helper()

	reminders := testutil.NewInMemoryReminderRepository()
	service := testutil.NewFakeSpatialTriggerService()
	events := make(chan trigger.Event, 8)

	return &spatialFixture{
		reminders: reminders,
		service:   service,
		events:    events,
		ctrl:      trigger.NewSpatialTriggerController(service, reminders, events, maxRegions),
	}
}

func (f *spatialFixture) saveLocationReminder(t *testing.T, direction domain.TriggerDirection) *domain.Reminder {
	t.Helper()

	loc, err := domain.NewLocationTrigger(
		35.6812, 139.7671, 150,
		"office", "",
		direction,
		domain.PolicyEveryTime,
		nil,
	)
	require.NoError(t, err)

	reminder, err := domain.NewLocationReminder("badge in", loc, domain.PriorityNormal, "")
	require.NoError(t, err)
	require.NoError(t, f.reminders.Save(context.Background(), reminder))

	return reminder
}

func (f *spatialFixture) registerWithHandle(t *testing.T, reminder *domain.Reminder) string {
	t.Helper()

	handle, err := f.ctrl.Register(context.Background(), reminder)
	require.NoError(t, err)

	reminder.AttachSpatialHandle(handle, time.Now())
	require.NoError(t, f.reminders.Update(context.Background(), reminder))

	return handle
}

func (f *spatialFixture) drainOne(t *testing.T) trigger.RegionTransition {
	t.Helper()

	select {
	case ev := <-f.events:
		transition, ok := ev.(trigger.RegionTransition)
		require.True(t, ok)

		return transition
	default:
		t.Fatal("expected a region transition on the queue")

		return trigger.RegionTransition{}
	}
}

func (f *spatialFixture) assertQueueEmpty(t *testing.T) {
	t.Helper()

	select {
	case ev := <-f.events:
		t.Fatalf("unexpected event on the queue: %#v", ev)
	default:
	}
}

func TestRegisterError(t *testing.T) {
	f := newSpatialFixture(t, 20)

	reminder, err := domain.NewTimeReminder("not spatial", time.Now().Add(time.Hour), nil, domain.PriorityNormal, "")
	require.NoError(t, err)

	_, err = f.ctrl.Register(context.Background(), reminder)

	assert.ErrorIs(t, err, domain.ErrInvalidReminderKind)
}

func TestRegisterIdempotent(t *testing.T) {
	f := newSpatialFixture(t, 20)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)

	first, err := f.ctrl.Register(context.Background(), reminder)
	require.NoError(t, err)

	second, err := f.ctrl.Register(context.Background(), reminder)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.ctrl.LiveCount())
	assert.Equal(t, 1, f.service.RegionCount())
}

func TestRegisterSlotLimitRejectsNewest(t *testing.T) {
	f := newSpatialFixture(t, 1)

	kept := f.saveLocationReminder(t, domain.DirectionEnter)
	rejected := f.saveLocationReminder(t, domain.DirectionEnter)

	_, err := f.ctrl.Register(context.Background(), kept)
	require.NoError(t, err)

	_, err = f.ctrl.Register(context.Background(), rejected)

	assert.ErrorIs(t, err, trigger.ErrRegionSlotsExhausted)
	assert.True(t, f.ctrl.IsRegistered(kept.ID()))
	assert.False(t, f.ctrl.IsRegistered(rejected.ID()))
}

// gatedSpatialService parks RegisterRegion calls until released, holding the
// window between the slot check and the service response open.
type gatedSpatialService struct {
	inner   *testutil.FakeSpatialTriggerService
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSpatialService) RegisterRegion(ctx context.Context, region trigger.Region) (string, error) {
	s.entered <- struct{}{}
	<-s.release

	return s.inner.RegisterRegion(ctx, region)
}

func (s *gatedSpatialService) UnregisterRegion(ctx context.Context, handle string) error {
	return s.inner.UnregisterRegion(ctx, handle)
}

func TestRegisterConcurrentRespectsSlotLimit(t *testing.T) {
	service := &gatedSpatialService{
		inner:   testutil.NewFakeSpatialTriggerService(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	events := make(chan trigger.Event, 8)
	ctrl := trigger.NewSpatialTriggerController(service, testutil.NewInMemoryReminderRepository(), events, 1)

	loc, err := domain.NewLocationTrigger(
		35.6812, 139.7671, 150,
		"office", "",
		domain.DirectionEnter,
		domain.PolicyEveryTime,
		nil,
	)
	require.NoError(t, err)

	first, err := domain.NewLocationReminder("badge in", loc, domain.PriorityNormal, "")
	require.NoError(t, err)

	second, err := domain.NewLocationReminder("badge out", loc, domain.PriorityNormal, "")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Register(context.Background(), first)
		done <- err
	}()

	<-service.entered

	// The in-flight registration reserves the only slot, so the second
	// caller is rejected instead of overshooting the cap.
	_, err = ctrl.Register(context.Background(), second)
	assert.ErrorIs(t, err, trigger.ErrRegionSlotsExhausted)

	close(service.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, ctrl.LiveCount())
	assert.Equal(t, 1, service.inner.RegionCount())
}

func TestRegisterFailureReleasesSlot(t *testing.T) {
	f := newSpatialFixture(t, 1)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)

	f.service.RegisterErr = errors.New("platform refused")

	_, err := f.ctrl.Register(context.Background(), reminder)
	require.Error(t, err)
	assert.Equal(t, 0, f.ctrl.LiveCount())

	// The reserved slot is rolled back, so a retry can claim it.
	f.service.RegisterErr = nil

	_, err = f.ctrl.Register(context.Background(), reminder)
	require.NoError(t, err)
	assert.Equal(t, 1, f.ctrl.LiveCount())
}

func TestUnregisterIdempotent(t *testing.T) {
	f := newSpatialFixture(t, 20)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)

	_, err := f.ctrl.Register(context.Background(), reminder)
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Unregister(context.Background(), reminder.ID()))
	assert.Equal(t, 0, f.ctrl.LiveCount())
	assert.Equal(t, 0, f.service.RegionCount())

	// No registration left; still not an error.
	require.NoError(t, f.ctrl.Unregister(context.Background(), reminder.ID()))
}

func TestOnTransitionForwardsMatchingEvents(t *testing.T) {
	f := newSpatialFixture(t, 20)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)
	handle := f.registerWithHandle(t, reminder)

	f.ctrl.OnTransition(context.Background(), handle, domain.TransitionEnter)

	got := f.drainOne(t)
	assert.Equal(t, handle, got.Handle)
	assert.Equal(t, domain.TransitionEnter, got.Transition)
}

func TestOnTransitionDirectionMismatchDiscarded(t *testing.T) {
	f := newSpatialFixture(t, 20)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)
	handle := f.registerWithHandle(t, reminder)

	f.ctrl.OnTransition(context.Background(), handle, domain.TransitionExit)

	f.assertQueueEmpty(t)
}

func TestOnTransitionUnknownHandleDiscarded(t *testing.T) {
	f := newSpatialFixture(t, 20)

	f.ctrl.OnTransition(context.Background(), "no-such-handle", domain.TransitionEnter)

	f.assertQueueEmpty(t)
}

func TestAwaitExitAbsorbsUntilLeave(t *testing.T) {
	f := newSpatialFixture(t, 20)
	reminder := f.saveLocationReminder(t, domain.DirectionEnter)
	handle := f.registerWithHandle(t, reminder)

	f.ctrl.AwaitExit(reminder.ID())

	// Enter events while still inside are absorbed.
	f.ctrl.OnTransition(context.Background(), handle, domain.TransitionEnter)
	f.assertQueueEmpty(t)

	// The exit re-arms without firing.
	f.ctrl.OnTransition(context.Background(), handle, domain.TransitionExit)
	f.assertQueueEmpty(t)

	// The next enter is live again.
	f.ctrl.OnTransition(context.Background(), handle, domain.TransitionEnter)
	got := f.drainOne(t)
	assert.Equal(t, domain.TransitionEnter, got.Transition)
}
