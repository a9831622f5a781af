package event

import (
	"context"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DlqEntryResult is one dead-lettered event in ops responses
type DlqEntryResult struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"eventId"`
	EventType     string    `json:"eventType"`
	AggregateID   uuid.UUID `json:"aggregateId"`
	AggregateType string    `json:"aggregateType"`
	Payload       string    `json:"payload"`
	RetryCount    int       `json:"retryCount"`
	LastError     string    `json:"lastError"`
	FailedAt      time.Time `json:"failedAt"`
}

// StatusCounts reports outbox backlog per status
type StatusCounts struct {
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
}

// Service exposes the operational surface of the outbox: backlog counts,
// dead-letter inspection and manual requeue of dead-lettered events.
type Service struct {
	outbox    shared.OutboxRepository
	dlq       shared.OutboxDlqRepository
	publisher shared.RawPublisher
	logger    *zap.Logger
}

// NewService creates a new outbox ops service
func NewService(outbox shared.OutboxRepository, dlq shared.OutboxDlqRepository, publisher shared.RawPublisher, logger *zap.Logger) *Service {
	return &Service{outbox: outbox, dlq: dlq, publisher: publisher, logger: logger}
}

// Counts returns the outbox backlog per status
func (s *Service) Counts(ctx context.Context) (*StatusCounts, error) {
	counts, err := s.outbox.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusCounts{
		Pending:   counts[shared.OutboxStatusPending],
		Processed: counts[shared.OutboxStatusProcessed],
	}, nil
}

// ListDeadLetters retrieves dead-lettered events, newest first
func (s *Service) ListDeadLetters(ctx context.Context, page, pageSize int) (*shared.Paginated[DlqEntryResult], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	entries, total, err := s.dlq.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	results := make([]DlqEntryResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, toDlqResult(e))
	}
	out := shared.NewPaginated(results, total, page, pageSize)
	return &out, nil
}

// Requeue replays one dead-lettered event to the broker and removes the
// entry on success. The publish must succeed first; a broker failure
// leaves the entry in place for another attempt.
func (s *Service) Requeue(ctx context.Context, id uuid.UUID) error {
	entry, err := s.dlq.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.publisher.PublishRaw(ctx, entry.EventType, entry.AggregateID.String(), entry.Payload); err != nil {
		s.logger.Warn("dead letter requeue publish failed",
			zap.String("dlq_id", id.String()), zap.String("event_type", entry.EventType), zap.Error(err))
		return err
	}
	if err := s.dlq.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("dead letter requeued",
		zap.String("dlq_id", id.String()), zap.String("event_type", entry.EventType))
	return nil
}

// Discard removes a dead-lettered event without replaying it
func (s *Service) Discard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.dlq.FindByID(ctx, id); err != nil {
		return err
	}
	return s.dlq.Delete(ctx, id)
}

func toDlqResult(e *shared.OutboxDlqEntry) DlqEntryResult {
	return DlqEntryResult{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       string(e.Payload),
		RetryCount:    e.RetryCount,
		LastError:     e.LastError,
		FailedAt:      e.FailedAt,
	}
}
