package trigger

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=trigger

// TimeTriggerService abstracts the platform's exact wake-up facility. The
// platform delivers wake-ups at least once and possibly late; it never
// guarantees exactly-once.
type TimeTriggerService interface {
	ScheduleWake(ctx context.Context, key WakeKey, at time.Time) error
	// CancelWake is idempotent: cancelling an unknown key is not an error.
	CancelWake(ctx context.Context, key WakeKey) error
}

// Region is a monitored circular area handed to the spatial trigger service.
type Region struct {
	Key          string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// SpatialTriggerService abstracts the platform's geofencing facility.
type SpatialTriggerService interface {
	// RegisterRegion returns an opaque handle identifying the registration.
	RegisterRegion(ctx context.Context, region Region) (string, error)
	// UnregisterRegion is idempotent.
	UnregisterRegion(ctx context.Context, handle string) error
}

var (
	// ErrWakePermissionDenied is returned when the platform refuses exact
	// wake-up scheduling.
	ErrWakePermissionDenied = errors.New("exact wake-up permission denied")
	// ErrPastTriggerTime rejects arming a wake-up that is not strictly in
	// the future.
	ErrPastTriggerTime = errors.New("trigger time must be in the future")
	// ErrRegionSlotsExhausted is returned when the concurrent region limit
	// is reached. The newest registration is rejected; existing ones are
	// never evicted.
	ErrRegionSlotsExhausted = errors.New("spatial region slots exhausted")
)

// Config tunes snooze and cooldown behavior. Durations are configuration,
// not invariants.
type Config struct {
	// SnoozeActions are the durations offered on a fire payload.
	SnoozeActions []time.Duration
	// DefaultSnooze applies when a snooze command carries no duration.
	DefaultSnooze time.Duration
	// ReentryDebounce absorbs region-boundary jitter for every-time
	// location reminders.
	ReentryDebounce time.Duration
	// UntilLeaveCooldown backstops snooze-until-leave suppression.
	UntilLeaveCooldown time.Duration
	// MaxRegions caps concurrent spatial registrations.
	MaxRegions int
}

func DefaultConfig() Config {
	return Config{
		SnoozeActions:      []time.Duration{5 * time.Minute, 10 * time.Minute, 30 * time.Minute, time.Hour},
		DefaultSnooze:      10 * time.Minute,
		ReentryDebounce:    5 * time.Minute,
		UntilLeaveCooldown: 4 * time.Hour,
		MaxRegions:         20,
	}
}
