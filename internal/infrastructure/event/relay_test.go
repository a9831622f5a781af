package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository is an in-memory outbox for relay tests
type mockOutboxRepository struct {
	mu     sync.Mutex
	events map[uuid.UUID]*shared.OutboxEvent
	dead   map[uuid.UUID]*shared.OutboxDlqEntry

	findPendingErr error
	moveErr        error
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{
		events: make(map[uuid.UUID]*shared.OutboxEvent),
		dead:   make(map[uuid.UUID]*shared.OutboxDlqEntry),
	}
}

func (r *mockOutboxRepository) Save(ctx context.Context, events ...*shared.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range events {
		r.events[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEvent, error) {
	if r.findPendingErr != nil {
		return nil, r.findPendingErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEvent
	for _, e := range r.events {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *mockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *mockOutboxRepository) FindByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEvent
	for _, e := range r.events {
		if e.AggregateID == aggregateID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *mockOutboxRepository) Update(ctx context.Context, event *shared.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *mockOutboxRepository) MoveToDeadLetter(ctx context.Context, event *shared.OutboxEvent) error {
	if r.moveErr != nil {
		return r.moveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := shared.NewOutboxDlqEntry(event)
	r.dead[entry.ID] = entry
	delete(r.events, event.ID)
	return nil
}

func (r *mockOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.events {
		if e.Status == shared.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.events, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *mockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.events {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *mockOutboxRepository) deadEntries() []*shared.OutboxDlqEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxDlqEntry
	for _, e := range r.dead {
		result = append(result, e)
	}
	return result
}

// mockRawPublisher fails a configurable number of times before succeeding
type mockRawPublisher struct {
	mu        sync.Mutex
	failures  int
	calls     int
	published []string
}

func (p *mockRawPublisher) PublishRaw(ctx context.Context, eventType string, aggregateID string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, eventType)
	return nil
}

type stubEvent struct {
	shared.BaseDomainEvent
}

func pendingEvent(t *testing.T, eventType string) *shared.OutboxEvent {
	t.Helper()
	e := &stubEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New())}
	return shared.NewOutboxEvent(e, []byte(`{"test":true}`))
}

func newTestRelay(repo shared.OutboxRepository, pub shared.RawPublisher) *Relay {
	cfg := DefaultRelayConfig()
	cfg.PollInterval = 10 * time.Millisecond
	return NewRelay(repo, pub, cfg, zap.NewNop())
}

func TestRelayDeliversPendingEvent(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{}
	relay := newTestRelay(repo, pub)

	event := pendingEvent(t, "order.created")
	require.NoError(t, repo.Save(context.Background(), event))

	relay.ProcessBatch(context.Background())

	stored, err := repo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusProcessed, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Equal(t, []string{"order.created"}, pub.published)
}

func TestRelayRetriesFailedEvent(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{failures: 2}
	relay := newTestRelay(repo, pub)

	event := pendingEvent(t, "order.created")
	require.NoError(t, repo.Save(context.Background(), event))

	// Two failing polls, event stays pending with the attempts counted
	relay.ProcessBatch(context.Background())
	relay.ProcessBatch(context.Background())

	stored, err := repo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusPending, stored.Status)
	assert.Equal(t, 2, stored.RetryCount)
	assert.Equal(t, "broker unavailable", stored.LastError)

	// Third poll succeeds
	relay.ProcessBatch(context.Background())

	stored, err = repo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusProcessed, stored.Status)
	assert.Empty(t, repo.deadEntries())
}

func TestRelayMovesExhaustedEventToDeadLetter(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{failures: shared.MaxPublishAttempts}
	relay := newTestRelay(repo, pub)

	event := pendingEvent(t, "grn.created")
	require.NoError(t, repo.Save(context.Background(), event))

	for i := 0; i < shared.MaxPublishAttempts; i++ {
		relay.ProcessBatch(context.Background())
	}

	// Source row is gone
	_, err := repo.FindByID(context.Background(), event.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dead := repo.deadEntries()
	require.Len(t, dead, 1)
	assert.Equal(t, event.EventID, dead[0].EventID)
	assert.Equal(t, "grn.created", dead[0].EventType)
	assert.Equal(t, shared.MaxPublishAttempts, dead[0].RetryCount)
	assert.Equal(t, "broker unavailable", dead[0].LastError)

	// Nothing left to publish on the next poll
	pub.failures = 0
	relay.ProcessBatch(context.Background())
	assert.Empty(t, pub.published)
}

func TestRelayDeliversInCreationOrder(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{}
	relay := newTestRelay(repo, pub)

	first := pendingEvent(t, "order.created")
	first.CreatedAt = time.Now().Add(-2 * time.Minute)
	second := pendingEvent(t, "order.status_updated")
	second.CreatedAt = time.Now().Add(-1 * time.Minute)
	require.NoError(t, repo.Save(context.Background(), second, first))

	relay.ProcessBatch(context.Background())

	assert.Equal(t, []string{"order.created", "order.status_updated"}, pub.published)
}

func TestRelayStartStop(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{}
	relay := newTestRelay(repo, pub)

	event := pendingEvent(t, "purchase_order.created")
	require.NoError(t, repo.Save(context.Background(), event))

	require.NoError(t, relay.Start(context.Background()))

	assert.Eventually(t, func() bool {
		stored, err := repo.FindByID(context.Background(), event.ID)
		return err == nil && stored.Status == shared.OutboxStatusProcessed
	}, 2*time.Second, 20*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, relay.Stop(stopCtx))
}

func TestRelayCleanupDeletesOldProcessedEvents(t *testing.T) {
	repo := newMockOutboxRepository()
	pub := &mockRawPublisher{}
	relay := newTestRelay(repo, pub)

	old := pendingEvent(t, "order.created")
	old.MarkProcessed()
	past := time.Now().Add(-48 * time.Hour)
	old.ProcessedAt = &past
	recent := pendingEvent(t, "order.created")
	recent.MarkProcessed()
	require.NoError(t, repo.Save(context.Background(), old, recent))

	relay.config.CleanupRetention = 24 * time.Hour
	relay.cleanup(context.Background())

	_, err := repo.FindByID(context.Background(), old.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(context.Background(), recent.ID)
	assert.NoError(t, err)
}
