package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TimeTriggerScheduler arms and cancels exact wake-ups. It tracks live
// registrations so bulk re-arming after a restart never duplicates an
// already-armed trigger.
type TimeTriggerScheduler struct {
	service TimeTriggerService
	now     func() time.Time

	mu    sync.Mutex
	armed map[WakeKey]time.Time
}

func NewTimeTriggerScheduler(service TimeTriggerService) *TimeTriggerScheduler {
	return &TimeTriggerScheduler{
		service: service,
		now:     time.Now,
		armed:   make(map[WakeKey]time.Time),
	}
}

// WithClock substitutes the time source. Intended for tests.
func (s *TimeTriggerScheduler) WithClock(now func() time.Time) *TimeTriggerScheduler {
	s.now = now

	return s
}

// Arm schedules a wake-up for key at the given instant. The instant must be
// strictly in the future.
func (s *TimeTriggerScheduler) Arm(ctx context.Context, key WakeKey, at time.Time) error {
	if !at.After(s.now()) {
		return fmt.Errorf("%w: %s at %s", ErrPastTriggerTime, key, at)
	}

	if err := s.service.ScheduleWake(ctx, key, at); err != nil {
		slog.Error("failed to arm time trigger",
			"key", key.String(),
			"at", at,
			"error", err,
		)

		return fmt.Errorf("failed to arm time trigger: %w", err)
	}

	s.mu.Lock()
	s.armed[key] = at
	s.mu.Unlock()

	slog.Debug("time trigger armed",
		"key", key.String(),
		"at", at,
	)

	return nil
}

// Disarm cancels the wake-up for key. Safe to call on an already-disarmed
// key.
func (s *TimeTriggerScheduler) Disarm(ctx context.Context, key WakeKey) error {
	if err := s.service.CancelWake(ctx, key); err != nil {
		slog.Error("failed to disarm time trigger",
			"key", key.String(),
			"error", err,
		)

		return fmt.Errorf("failed to disarm time trigger: %w", err)
	}

	s.mu.Lock()
	delete(s.armed, key)
	s.mu.Unlock()

	slog.Debug("time trigger disarmed",
		"key", key.String(),
	)

	return nil
}

// IsArmed reports whether a live registration exists for key.
func (s *TimeTriggerScheduler) IsArmed(key WakeKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.armed[key]

	return ok
}

// ArmedCount returns the number of live registrations.
func (s *TimeTriggerScheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.armed)
}

// WakeEntry is one record to (re-)arm during bulk recovery.
type WakeEntry struct {
	Key WakeKey
	At  time.Time
}

// RearmAll arms every entry that has no live registration and a future
// trigger time. It is safe to run concurrently with individual dispatches
// and never creates duplicates; already-armed keys are skipped. Per-entry
// failures are logged and counted, not propagated, so one denied arm does
// not abort the rest of the recovery.
func (s *TimeTriggerScheduler) RearmAll(ctx context.Context, entries []WakeEntry) (armed int, failed int) {
	for _, e := range entries {
		s.mu.Lock()
		_, exists := s.armed[e.Key]
		s.mu.Unlock()

		if exists {
			continue
		}

		if err := s.Arm(ctx, e.Key, e.At); err != nil {
			slog.Warn("rearm skipped",
				"key", e.Key.String(),
				"at", e.At,
				"error", err,
			)

			failed++

			continue
		}

		armed++
	}

	slog.Info("bulk rearm completed",
		"requested", len(entries),
		"armed", armed,
		"failed", failed,
	)

	return armed, failed
}
