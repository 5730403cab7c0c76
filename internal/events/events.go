package events

import (
	"context"
	"encoding/json"
	"time"
)

// Channels carrying report lifecycle events.
const (
	ChannelItemCreated = "items.created"
	ChannelItemStatus  = "items.status"
)

// ItemEvent is the payload published when a report is created or changes
// status. Downstream notifiers use it to match lost and found reports.
type ItemEvent struct {
	ItemID     int       `json:"id"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	OwnerID    int       `json:"ownerId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Backend defines the broker-agnostic publish operation.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher marshals item events onto a backend.
type Publisher struct {
	backend Backend
}

// NewPublisher constructs a Publisher for the provided backend. A nil
// backend yields a publisher that drops every event.
func NewPublisher(backend Backend) *Publisher {
	return &Publisher{backend: backend}
}

// PublishItemEvent sends an event to the named channel. The type,
// category, and status ride along as attributes so consumers can filter
// without decoding the body.
func (p *Publisher) PublishItemEvent(ctx context.Context, channel string, event ItemEvent) (string, error) {
	if p == nil || p.backend == nil {
		return "", nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	attrs := map[string]string{
		"type":     event.Type,
		"category": event.Category,
		"status":   event.Status,
	}
	return p.backend.Publish(ctx, channel, data, attrs)
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
