package trigger

import (
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-trigger-engine/internal/domain"
)

// SourceKind identifies which record family a wake-up belongs to.
type SourceKind string

const (
	SourceReminder SourceKind = "reminder"
	SourceAlarm    SourceKind = "alarm"
)

// WakeKey identifies one armed time trigger. Exactly one live registration
// may exist per key.
type WakeKey struct {
	Kind SourceKind
	ID   string
}

func ReminderWakeKey(id domain.ReminderID) WakeKey {
	return WakeKey{Kind: SourceReminder, ID: id.String()}
}

func AlarmWakeKey(id domain.AlarmID) WakeKey {
	return WakeKey{Kind: SourceAlarm, ID: id.String()}
}

func (k WakeKey) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// Event is a trigger delivery crossing the message-passing boundary into the
// dispatcher. Deliveries are at-least-once and may be arbitrarily late.
type Event interface {
	event()
}

// TimeFired is an exact-wake delivery from the time trigger service.
type TimeFired struct {
	Key     WakeKey
	FiredAt time.Time
}

func (TimeFired) event() {}

// RegionTransition is an enter/exit/dwell delivery from the spatial trigger
// service, already direction-filtered by the controller.
type RegionTransition struct {
	Handle     string
	Transition domain.Transition
	OccurredAt time.Time
}

func (RegionTransition) event() {}
