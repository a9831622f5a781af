package shared

import "context"

// EventPublisher delivers domain events to the event stream broker.
// Two call sites exist: the best-effort synchronous publish right after a
// business transaction commits, and the outbox relay. Both tolerate broker
// unavailability; durability is owned by the outbox table, never by the
// publisher.
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// RawPublisher publishes an already-serialized event payload. The relay
// uses it so dead-lettered payloads can be replayed without knowing the
// concrete Go event type.
type RawPublisher interface {
	PublishRaw(ctx context.Context, eventType string, aggregateID string, payload []byte) error
}
