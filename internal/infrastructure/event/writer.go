package event

import (
	"context"
	"fmt"

	"github.com/pharmacy/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TransactionalOutboxWriter appends domain events to the outbox through a
// repository bound to an open transaction. The caller's business writes and
// the outbox rows commit or roll back together.
type TransactionalOutboxWriter struct {
	repo       *GormOutboxRepository
	serializer Serializer
}

// NewTransactionalOutboxWriter creates a writer bound to the given transaction
func NewTransactionalOutboxWriter(tx *gorm.DB, serializer Serializer) *TransactionalOutboxWriter {
	return &TransactionalOutboxWriter{
		repo:       NewGormOutboxRepository(tx),
		serializer: serializer,
	}
}

// Append serializes the events and saves them as pending outbox rows
func (w *TransactionalOutboxWriter) Append(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]*shared.OutboxEvent, 0, len(events))
	for _, e := range events {
		payload, err := w.serializer.Serialize(e)
		if err != nil {
			return fmt.Errorf("serialize event %s: %w", e.EventType(), err)
		}
		rows = append(rows, shared.NewOutboxEvent(e, payload))
	}
	return w.repo.Save(ctx, rows...)
}

var _ shared.OutboxWriter = (*TransactionalOutboxWriter)(nil)
