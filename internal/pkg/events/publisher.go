// internal/pkg/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DomainEvent is the uniform shape external collaborators consume on every
// committed state transition. The audit log, notification service and event
// fan-out all subscribe to this; they need no deeper knowledge of the core.
type DomainEvent struct {
	EntityType string    `json:"entity_type"` // purchase_order, goods_receipt_note, material_instance
	EntityID   uint      `json:"entity_id"`
	FromState  string    `json:"from_state"`
	ToState    string    `json:"to_state"`
	Actor      uint      `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers domain events to external consumers. Delivery is
// best-effort: it runs after the transition commits and its failure must never
// roll back the transition.
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent)
}

// RedisPublisher fans events out over a Redis pub/sub channel
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *logrus.Logger
}

// NewRedisPublisher creates a publisher on the given channel
func NewRedisPublisher(client *redis.Client, channel string, logger *logrus.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Publish serializes and publishes the event; errors are logged, never returned
func (p *RedisPublisher) Publish(ctx context.Context, event DomainEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("failed to marshal domain event")
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.client.Publish(publishCtx, p.channel, payload).Err(); err != nil {
		p.logger.WithFields(logrus.Fields{
			"entity_type": event.EntityType,
			"entity_id":   event.EntityID,
		}).WithError(err).Warn("failed to publish domain event")
	}
}

// NopPublisher discards all events; used in tests
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event DomainEvent) {}
