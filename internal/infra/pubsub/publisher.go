package pubsub

import (
	"context"
	"io"
	"time"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

const TopicTriggerFired = "trigger.fired"

// FireEvent is the presentation payload emitted when a trigger fires. The
// notification presenter consumes it; this service never renders anything.
type FireEvent struct {
	ID            string          `json:"id"`
	Source        string          `json:"source"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Priority      string          `json:"priority,omitempty"`
	SoundRef      string          `json:"sound_ref,omitempty"`
	Vibrate       bool            `json:"vibrate,omitempty"`
	FiredAt       time.Time       `json:"fired_at"`
	SnoozeActions []time.Duration `json:"snooze_actions"`
}

type Publisher interface {
	PublishTriggerFired(ctx context.Context, event *FireEvent) error
	io.Closer
}
