package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBackend struct {
	channel string
	data    []byte
	attrs   map[string]string
	closed  bool
}

func (c *captureBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	c.channel = channel
	c.data = data
	c.attrs = attrs
	return "id-1", nil
}

func (c *captureBackend) Close() error {
	c.closed = true
	return nil
}

func TestPublisherMarshalsEvent(t *testing.T) {
	backend := &captureBackend{}
	publisher := NewPublisher(backend)

	event := ItemEvent{
		ItemID:     7,
		Type:       "found",
		Category:   "Keys",
		Status:     "open",
		OwnerID:    3,
		OccurredAt: time.Date(2025, 8, 17, 12, 0, 0, 0, time.UTC),
	}
	id, err := publisher.PublishItemEvent(context.Background(), ChannelItemCreated, event)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	assert.Equal(t, ChannelItemCreated, backend.channel)
	assert.Equal(t, "found", backend.attrs["type"])
	assert.Equal(t, "Keys", backend.attrs["category"])
	assert.Equal(t, "open", backend.attrs["status"])

	var decoded ItemEvent
	require.NoError(t, json.Unmarshal(backend.data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublisherWithoutBackendIsNoop(t *testing.T) {
	publisher := NewPublisher(nil)

	id, err := publisher.PublishItemEvent(context.Background(), ChannelItemStatus, ItemEvent{ItemID: 1})
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, publisher.Close())
}

func TestPublisherClose(t *testing.T) {
	backend := &captureBackend{}
	publisher := NewPublisher(backend)
	require.NoError(t, publisher.Close())
	assert.True(t, backend.closed)
}
