package event

import (
	"context"
	"sync"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RelayConfig holds configuration for the outbox relay
type RelayConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultRelayConfig returns default configuration
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// Relay drains the outbox in the background. Each poll publishes pending
// events in creation order; an event that fails delivery stays pending with
// its retry count incremented, and is escalated to the dead-letter store
// once the retry ceiling is reached.
type Relay struct {
	repo      shared.OutboxRepository
	publisher shared.RawPublisher
	config    RelayConfig
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRelay creates a new outbox relay
func NewRelay(
	repo shared.OutboxRepository,
	publisher shared.RawPublisher,
	config RelayConfig,
	logger *zap.Logger,
) *Relay {
	return &Relay{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Start starts the background polling and, if enabled, the cleanup loop
func (r *Relay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.pollLoop(ctx)

	if r.config.CleanupEnabled {
		r.wg.Add(1)
		go r.cleanupLoop(ctx)
	}

	r.logger.Info("outbox relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)

	return nil
}

// Stop gracefully stops the relay
func (r *Relay) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) pollLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch publishes one batch of pending events. Exposed for tests and
// for triggering an immediate drain without waiting for the next tick.
func (r *Relay) ProcessBatch(ctx context.Context) {
	pending, err := r.repo.FindPending(ctx, r.config.BatchSize)
	if err != nil {
		r.logger.Error("failed to find pending events", zap.Error(err))
		return
	}

	for _, event := range pending {
		r.deliver(ctx, event)
	}
}

func (r *Relay) deliver(ctx context.Context, event *shared.OutboxEvent) {
	err := r.publisher.PublishRaw(ctx, event.EventType, event.AggregateID.String(), event.Payload)
	if err == nil {
		event.MarkProcessed()
		if updateErr := r.repo.Update(ctx, event); updateErr != nil {
			r.logger.Error("failed to mark event as processed",
				zap.String("event_id", event.EventID.String()),
				zap.Error(updateErr),
			)
			return
		}
		r.logger.Debug("event delivered",
			zap.String("event_id", event.EventID.String()),
			zap.String("event_type", event.EventType),
		)
		return
	}

	event.RecordFailure(err.Error())
	r.logger.Error("failed to publish event",
		zap.String("event_id", event.EventID.String()),
		zap.String("event_type", event.EventType),
		zap.Int("retry_count", event.RetryCount),
		zap.Error(err),
	)

	if event.Exhausted() {
		if dlqErr := r.repo.MoveToDeadLetter(ctx, event); dlqErr != nil {
			r.logger.Error("failed to move event to dead letter store",
				zap.String("event_id", event.EventID.String()),
				zap.Error(dlqErr),
			)
			return
		}
		r.logger.Warn("event moved to dead letter store",
			zap.String("event_id", event.EventID.String()),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_type", event.AggregateType),
			zap.String("aggregate_id", event.AggregateID.String()),
			zap.Int("retry_count", event.RetryCount),
			zap.String("last_error", event.LastError),
		)
		return
	}

	if updateErr := r.repo.Update(ctx, event); updateErr != nil {
		r.logger.Error("failed to record delivery failure",
			zap.String("event_id", event.EventID.String()),
			zap.Error(updateErr),
		)
	}
}

func (r *Relay) cleanupLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cleanup(ctx)
		}
	}
}

func (r *Relay) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-r.config.CleanupRetention)
	deleted, err := r.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		r.logger.Error("failed to clean up processed events", zap.Error(err))
		return
	}

	if deleted > 0 {
		r.logger.Info("cleaned up processed outbox events",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
