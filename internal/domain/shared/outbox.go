package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the status of an outbox event
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
)

// MaxPublishAttempts is the delivery retry ceiling. An event whose
// retry count reaches this value is escalated to the dead-letter store.
const MaxPublishAttempts = 3

// OutboxEvent is a domain event persisted in the same transaction as the
// business mutation that produced it, for reliable delivery by the relay.
type OutboxEvent struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	LastError     string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOutboxEvent creates a new pending outbox event for a domain event
func NewOutboxEvent(event DomainEvent, payload []byte) *OutboxEvent {
	now := time.Now()
	return &OutboxEvent{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		RetryCount:    0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkProcessed marks the event as successfully delivered
func (e *OutboxEvent) MarkProcessed() {
	now := time.Now()
	e.Status = OutboxStatusProcessed
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// RecordFailure increments the retry count and stores the delivery error.
// The event stays PENDING; escalation is the relay's decision.
func (e *OutboxEvent) RecordFailure(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = time.Now()
}

// Exhausted returns true once the retry ceiling has been reached
func (e *OutboxEvent) Exhausted() bool {
	return e.RetryCount >= MaxPublishAttempts
}

// OutboxDlqEntry is the terminal copy of an outbox event that failed
// delivery past the retry ceiling. The source outbox row is deleted once
// the entry is written; reprocessing is a manual operation.
type OutboxDlqEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	RetryCount    int
	LastError     string
	FailedAt      time.Time
}

// NewOutboxDlqEntry creates a dead-letter entry from an exhausted outbox event
func NewOutboxDlqEntry(e *OutboxEvent) *OutboxDlqEntry {
	return &OutboxDlqEntry{
		ID:            uuid.New(),
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		RetryCount:    e.RetryCount,
		LastError:     e.LastError,
		FailedAt:      time.Now(),
	}
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	// Save persists one or more outbox events
	Save(ctx context.Context, events ...*OutboxEvent) error
	// FindPending retrieves pending events ordered by creation time ascending
	FindPending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	// FindByID retrieves a single outbox event by ID
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEvent, error)
	// FindByAggregateID retrieves all events for an aggregate
	FindByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]*OutboxEvent, error)
	// Update updates an existing outbox event
	Update(ctx context.Context, event *OutboxEvent) error
	// MoveToDeadLetter atomically writes the DLQ entry and deletes the source row
	MoveToDeadLetter(ctx context.Context, event *OutboxEvent) error
	// DeleteProcessedBefore deletes processed events older than the given time
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	// CountByStatus returns count of events for each status
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}

// OutboxDlqRepository defines the interface for dead-letter persistence
type OutboxDlqRepository interface {
	// Save persists a dead-letter entry
	Save(ctx context.Context, entry *OutboxDlqEntry) error
	// FindByID retrieves a single dead-letter entry
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxDlqEntry, error)
	// List retrieves dead-letter entries with pagination, newest first
	List(ctx context.Context, page, pageSize int) ([]*OutboxDlqEntry, int64, error)
	// Delete removes a dead-letter entry (after manual reprocessing)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OutboxWriter appends domain events to the outbox within the transaction
// it is bound to. Repositories obtained from a transaction scope expose a
// writer bound to that same transaction, which is what guarantees that no
// business commit happens without its event and no event without a commit.
type OutboxWriter interface {
	Append(ctx context.Context, events ...DomainEvent) error
}
