// Package events produces notifications on the real-time push channel.
// This layer is a producer only; delivery semantics belong to the channel.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel names.
const (
	ChannelOrders   = "tavola.orders"
	ChannelBusiness = "tavola.business"
)

// Event is one push-channel message.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Publisher sends events to the push channel. Publish failures are the
// implementation's to log; callers never handle them.
type Publisher interface {
	Publish(ctx context.Context, channel string, event Event)
}

// RedisPublisher publishes over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPublisher creates a publisher on an existing Redis client.
func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

// Publish sends one event, best-effort.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, event Event) {
	event.At = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("event encode failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Warn("event publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

// NopPublisher drops all events. Used when no push channel is configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, channel string, event Event) {}
