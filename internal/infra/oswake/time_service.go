package oswake

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

// TimerWakeService is a process-local TimeTriggerService backed by runtime
// timers. It stands in for the platform's exact-alarm facility when the
// engine runs as an ordinary server process.
type TimerWakeService struct {
	events chan<- trigger.Event
	now    func() time.Time

	mu     sync.Mutex
	timers map[trigger.WakeKey]*time.Timer
	closed bool
}

func NewTimerWakeService(events chan<- trigger.Event) *TimerWakeService {
	return &TimerWakeService{
		events: events,
		now:    time.Now,
		timers: make(map[trigger.WakeKey]*time.Timer),
	}
}

// WithClock substitutes the time source. Intended for tests.
func (s *TimerWakeService) WithClock(now func() time.Time) *TimerWakeService {
	s.now = now

	return s
}

func (s *TimerWakeService) ScheduleWake(_ context.Context, key trigger.WakeKey, at time.Time) error {
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	if existing, ok := s.timers[key]; ok {
		existing.Stop()
	}

	s.timers[key] = time.AfterFunc(delay, func() {
		s.fire(key)
	})

	slog.Debug("wake-up timer scheduled",
		"key", key.String(),
		"at", at,
	)

	return nil
}

func (s *TimerWakeService) CancelWake(_ context.Context, key trigger.WakeKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}

	return nil
}

func (s *TimerWakeService) fire(key trigger.WakeKey) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return
	}

	delete(s.timers, key)
	s.mu.Unlock()

	s.events <- trigger.TimeFired{
		Key:     key,
		FiredAt: s.now(),
	}
}

// Close stops all pending timers. Scheduling after Close is a no-op.
func (s *TimerWakeService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}

	return nil
}
