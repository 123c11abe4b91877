package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

// SpatialTriggerController owns every spatial registration. No other
// component talks to the spatial trigger service, which keeps the finite
// region slots accountable in one place.
type SpatialTriggerController struct {
	service    SpatialTriggerService
	repo       domain.ReminderRepository
	events     chan<- Event
	maxRegions int
	now        func() time.Time

	mu            sync.Mutex
	registrations map[string]string // reminder id -> handle
	pending       map[string]struct{}
	awaitingExit  map[string]struct{}
}

func NewSpatialTriggerController(
	service SpatialTriggerService,
	repo domain.ReminderRepository,
	events chan<- Event,
	maxRegions int,
) *SpatialTriggerController {
	return &SpatialTriggerController{
		service:       service,
		repo:          repo,
		events:        events,
		maxRegions:    maxRegions,
		now:           time.Now,
		registrations: make(map[string]string),
		pending:       make(map[string]struct{}),
		awaitingExit:  make(map[string]struct{}),
	}
}

// WithClock substitutes the time source. Intended for tests.
func (c *SpatialTriggerController) WithClock(now func() time.Time) *SpatialTriggerController {
	c.now = now

	return c
}

// Register creates a monitored region for the reminder and returns the
// registration handle. Registering an already-registered reminder returns
// the existing handle. When the slot limit is reached the newest
// registration is rejected with ErrRegionSlotsExhausted.
func (c *SpatialTriggerController) Register(ctx context.Context, reminder *domain.Reminder) (string, error) {
	loc := reminder.Location()
	if loc == nil {
		return "", fmt.Errorf("%w: reminder %s has no location", domain.ErrInvalidReminderKind, reminder.ID())
	}

	id := reminder.ID().String()

	// The slot is reserved before the service call so concurrent registers
	// cannot both pass the limit check and overshoot the OS cap.
	c.mu.Lock()
	if handle, ok := c.registrations[id]; ok {
		c.mu.Unlock()

		return handle, nil
	}

	if _, inFlight := c.pending[id]; inFlight {
		c.mu.Unlock()

		return "", fmt.Errorf("spatial registration already in progress for reminder %s", id)
	}

	if len(c.registrations)+len(c.pending) >= c.maxRegions {
		c.mu.Unlock()

		slog.Warn("spatial region slots exhausted",
			"reminder_id", id,
			"limit", c.maxRegions,
		)

		return "", ErrRegionSlotsExhausted
	}

	c.pending[id] = struct{}{}
	c.mu.Unlock()

	handle, err := c.service.RegisterRegion(ctx, Region{
		Key:          id,
		Latitude:     loc.Latitude(),
		Longitude:    loc.Longitude(),
		RadiusMeters: loc.RadiusMeters(),
	})

	c.mu.Lock()
	delete(c.pending, id)
	if err == nil {
		c.registrations[id] = handle
	}
	c.mu.Unlock()

	if err != nil {
		slog.Error("failed to register spatial region",
			"reminder_id", id,
			"error", err,
		)

		return "", fmt.Errorf("failed to register spatial region: %w", err)
	}

	slog.Debug("spatial region registered",
		"reminder_id", id,
		"handle", handle,
		"place", loc.Place(),
	)

	return handle, nil
}

// Unregister releases the reminder's region. Safe to call when no
// registration exists.
func (c *SpatialTriggerController) Unregister(ctx context.Context, id domain.ReminderID) error {
	c.mu.Lock()
	handle, ok := c.registrations[id.String()]
	c.mu.Unlock()

	if !ok {
		return nil
	}

	if err := c.service.UnregisterRegion(ctx, handle); err != nil {
		slog.Error("failed to unregister spatial region",
			"reminder_id", id.String(),
			"handle", handle,
			"error", err,
		)

		return fmt.Errorf("failed to unregister spatial region: %w", err)
	}

	c.mu.Lock()
	delete(c.registrations, id.String())
	delete(c.awaitingExit, id.String())
	c.mu.Unlock()

	slog.Debug("spatial region unregistered",
		"reminder_id", id.String(),
	)

	return nil
}

// LiveCount returns the number of live registrations.
func (c *SpatialTriggerController) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.registrations)
}

// IsRegistered reports whether a live registration exists for the reminder.
func (c *SpatialTriggerController) IsRegistered(id domain.ReminderID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.registrations[id.String()]

	return ok
}

// AwaitExit suppresses enter-side events for the reminder until the next
// exit is observed. The exit itself does not fire; it is only the re-arm
// point.
func (c *SpatialTriggerController) AwaitExit(id domain.ReminderID) {
	c.mu.Lock()
	c.awaitingExit[id.String()] = struct{}{}
	c.mu.Unlock()

	slog.Debug("awaiting exit before re-arming enter trigger",
		"reminder_id", id.String(),
	)
}

// OnTransition receives a raw region event from the spatial trigger
// service. Events whose transition does not match the record's configured
// direction are discarded here, before dispatch.
func (c *SpatialTriggerController) OnTransition(ctx context.Context, handle string, transition domain.Transition) {
	reminder, err := c.repo.FindBySpatialHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.Debug("transition for unknown handle discarded",
				"handle", handle,
				"transition", string(transition),
			)

			return
		}

		slog.Error("failed to resolve spatial handle",
			"handle", handle,
			"error", err,
		)

		return
	}

	id := reminder.ID().String()

	c.mu.Lock()
	_, waiting := c.awaitingExit[id]
	if waiting && transition == domain.TransitionExit {
		delete(c.awaitingExit, id)
	}
	c.mu.Unlock()

	if waiting {
		slog.Debug("transition absorbed by until-leave gate",
			"reminder_id", id,
			"transition", string(transition),
		)

		return
	}

	loc := reminder.Location()
	if loc == nil || !loc.Direction().Matches(transition) {
		slog.Debug("transition direction mismatch discarded",
			"reminder_id", id,
			"transition", string(transition),
		)

		return
	}

	c.events <- RegionTransition{
		Handle:     handle,
		Transition: transition,
		OccurredAt: c.now(),
	}
}
