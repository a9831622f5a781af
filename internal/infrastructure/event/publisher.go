package event

import (
	"context"
	"fmt"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const streamPrefix = "events:"

// RedisStreamPublisher publishes domain events to Redis streams, one stream
// per event type. Consumers read with XREAD / consumer groups.
type RedisStreamPublisher struct {
	client     *redis.Client
	serializer Serializer
	logger     *zap.Logger
}

// NewRedisStreamPublisher creates a publisher on top of an existing client
func NewRedisStreamPublisher(client *redis.Client, serializer Serializer, logger *zap.Logger) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client:     client,
		serializer: serializer,
		logger:     logger,
	}
}

// Publish serializes and publishes the given domain events
func (p *RedisStreamPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		payload, err := p.serializer.Serialize(e)
		if err != nil {
			return fmt.Errorf("serialize event %s: %w", e.EventType(), err)
		}
		if err := p.PublishRaw(ctx, e.EventType(), e.AggregateID().String(), payload); err != nil {
			return err
		}
	}
	return nil
}

// PublishRaw appends an already-serialized payload to the event type's stream
func (p *RedisStreamPublisher) PublishRaw(ctx context.Context, eventType string, aggregateID string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamPrefix + eventType,
		Values: map[string]interface{}{
			"event_type":   eventType,
			"aggregate_id": aggregateID,
			"payload":      payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish %s to stream: %w", eventType, err)
	}
	p.logger.Debug("event published",
		zap.String("event_type", eventType),
		zap.String("aggregate_id", aggregateID))
	return nil
}

var (
	_ shared.EventPublisher = (*RedisStreamPublisher)(nil)
	_ shared.RawPublisher   = (*RedisStreamPublisher)(nil)
)
