//go:build gcloud

package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-googlecloud/pkg/googlecloud"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/KasumiMercury/primind-trigger-engine/internal/observability/tracing"
)

type GCloudPublisher struct {
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

type GCloudPublisherConfig struct {
	ProjectID string
}

func NewGCloudPublisher(ctx context.Context, cfg GCloudPublisherConfig) (*GCloudPublisher, error) {
	logger := watermill.NewSlogLogger(slog.Default())

	publisher, err := googlecloud.NewPublisher(
		googlecloud.PublisherConfig{
			ProjectID: cfg.ProjectID,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud publisher: %w", err)
	}

	return &GCloudPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *GCloudPublisher) PublishTriggerFired(ctx context.Context, event *FireEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", "trigger.fired")
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("record_id", event.ID)

	traceCarrier := map[string]string{}
	tracing.InjectToMap(ctx, traceCarrier)

	for k, v := range traceCarrier {
		msg.Metadata.Set(k, v)
	}

	if err := p.publisher.Publish(TopicTriggerFired, msg); err != nil {
		slog.Error("failed to publish trigger fired event",
			slog.String("record_id", event.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published trigger fired event",
		slog.String("record_id", event.ID),
		slog.String("message_id", msg.UUID),
	)
	return nil
}

func (p *GCloudPublisher) Close() error {
	return p.publisher.Close()
}
