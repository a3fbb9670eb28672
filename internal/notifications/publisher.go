package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// PubSubPublisher pushes events onto a Google Pub/Sub topic.
type PubSubPublisher struct {
	publisher *pubsub.Publisher
}

// NewPubSubPublisher builds the production publisher from a Pub/Sub client
// and topic id.
func NewPubSubPublisher(ctx context.Context, projectID, topicID string) (*PubSubPublisher, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("pubsub topic is required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	name := topicID
	if !strings.HasPrefix(name, "projects/") {
		name = fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	}
	return &PubSubPublisher{publisher: client.Publisher(name)}, nil
}

// Publish sends the event as a JSON message with the dedupe key attached as
// an attribute for idempotent consumers.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"eventType": string(event.Type),
			"dedupeKey": event.DedupeKey(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// LogPublisher is the development fallback; it just records the event.
type LogPublisher struct {
	Logger *logger.Logger
}

// Publish logs the event at info level.
func (p LogPublisher) Publish(ctx context.Context, event Event) error {
	if p.Logger == nil {
		return nil
	}
	logCtx := p.Logger.WithFields(ctx, map[string]any{
		"event_type": event.Type,
		"tenant_id":  event.TenantID.String(),
		"status":     event.Status,
	})
	p.Logger.Info(logCtx, "tenant event")
	return nil
}
