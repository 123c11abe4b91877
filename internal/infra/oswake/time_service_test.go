package oswake_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/oswake"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

func TestScheduleWakeDelivers(t *testing.T) {
	events := make(chan trigger.Event, 1)
	service := oswake.NewTimerWakeService(events)
	defer service.Close()

	key := trigger.WakeKey{Kind: trigger.SourceReminder, ID: "r1"}
	require.NoError(t, service.ScheduleWake(context.Background(), key, time.Now().Add(10*time.Millisecond)))

	select {
	case ev := <-events:
		fired, ok := ev.(trigger.TimeFired)
		require.True(t, ok)
		assert.Equal(t, key, fired.Key)
		assert.False(t, fired.FiredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("wake-up not delivered")
	}
}

func TestScheduleWakePastInstantFiresImmediately(t *testing.T) {
	events := make(chan trigger.Event, 1)
	service := oswake.NewTimerWakeService(events)
	defer service.Close()

	key := trigger.WakeKey{Kind: trigger.SourceAlarm, ID: "a1"}
	require.NoError(t, service.ScheduleWake(context.Background(), key, time.Now().Add(-time.Minute)))

	select {
	case ev := <-events:
		_, ok := ev.(trigger.TimeFired)
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("overdue wake-up not delivered")
	}
}

func TestScheduleWakeReplacesExistingTimer(t *testing.T) {
	events := make(chan trigger.Event, 2)
	service := oswake.NewTimerWakeService(events)
	defer service.Close()

	key := trigger.WakeKey{Kind: trigger.SourceReminder, ID: "r1"}
	ctx := context.Background()

	require.NoError(t, service.ScheduleWake(ctx, key, time.Now().Add(10*time.Millisecond)))
	require.NoError(t, service.ScheduleWake(ctx, key, time.Now().Add(30*time.Millisecond)))

	// Only the rescheduled timer fires.
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("wake-up not delivered")
	}

	select {
	case ev := <-events:
		t.Fatalf("duplicate delivery: %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelWakeStopsDelivery(t *testing.T) {
	events := make(chan trigger.Event, 1)
	service := oswake.NewTimerWakeService(events)
	defer service.Close()

	key := trigger.WakeKey{Kind: trigger.SourceReminder, ID: "r1"}
	ctx := context.Background()

	require.NoError(t, service.ScheduleWake(ctx, key, time.Now().Add(50*time.Millisecond)))
	require.NoError(t, service.CancelWake(ctx, key))

	select {
	case ev := <-events:
		t.Fatalf("cancelled wake delivered: %#v", ev)
	case <-time.After(150 * time.Millisecond):
	}

	// Cancelling an unknown key stays a no-op.
	require.NoError(t, service.CancelWake(ctx, trigger.WakeKey{Kind: trigger.SourceAlarm, ID: "missing"}))
}

func TestCloseStopsPendingTimers(t *testing.T) {
	events := make(chan trigger.Event, 1)
	service := oswake.NewTimerWakeService(events)

	key := trigger.WakeKey{Kind: trigger.SourceReminder, ID: "r1"}
	ctx := context.Background()

	require.NoError(t, service.ScheduleWake(ctx, key, time.Now().Add(50*time.Millisecond)))
	require.NoError(t, service.Close())

	select {
	case ev := <-events:
		t.Fatalf("wake delivered after close: %#v", ev)
	case <-time.After(150 * time.Millisecond):
	}

	// Scheduling after close is silently ignored.
	require.NoError(t, service.ScheduleWake(ctx, key, time.Now().Add(10*time.Millisecond)))
}

func TestManualSpatialServiceHandles(t *testing.T) {
	service := oswake.NewManualSpatialService()
	ctx := context.Background()

	region := trigger.Region{Key: "r1", Latitude: 35.6812, Longitude: 139.7671, RadiusMeters: 150}

	first, err := service.RegisterRegion(ctx, region)
	require.NoError(t, err)

	second, err := service.RegisterRegion(ctx, region)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, service.RegionCount())

	require.NoError(t, service.UnregisterRegion(ctx, first))
	assert.Equal(t, 1, service.RegionCount())

	// Unknown handles are ignored.
	require.NoError(t, service.UnregisterRegion(ctx, "missing"))
	assert.Equal(t, 1, service.RegionCount())
}
