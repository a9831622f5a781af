package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	eventapp "github.com/pharmacy/backend/internal/application/event"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOutboxRepository implements shared.OutboxRepository for testing
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Save(ctx context.Context, events ...*shared.OutboxEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) FindByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEvent, error) {
	args := m.Called(ctx, aggregateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shared.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, event *shared.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepository) MoveToDeadLetter(ctx context.Context, event *shared.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

// MockOutboxDlqRepository implements shared.OutboxDlqRepository for testing
type MockOutboxDlqRepository struct {
	mock.Mock
}

func (m *MockOutboxDlqRepository) Save(ctx context.Context, entry *shared.OutboxDlqEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOutboxDlqRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxDlqEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.OutboxDlqEntry), args.Error(1)
}

func (m *MockOutboxDlqRepository) List(ctx context.Context, page, pageSize int) ([]*shared.OutboxDlqEntry, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*shared.OutboxDlqEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockOutboxDlqRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRawPublisher implements shared.RawPublisher for testing
type MockRawPublisher struct {
	mock.Mock
}

func (m *MockRawPublisher) PublishRaw(ctx context.Context, eventType string, aggregateID string, payload []byte) error {
	args := m.Called(ctx, eventType, aggregateID, payload)
	return args.Error(0)
}

func setupOutboxEngine(outbox *MockOutboxRepository, dlq *MockOutboxDlqRepository, publisher *MockRawPublisher) *gin.Engine {
	h := NewOutboxHandler(eventapp.NewService(outbox, dlq, publisher, zap.NewNop()))
	engine := gin.New()
	group := engine.Group("/api/v1/outbox")
	group.GET("/counts", h.Counts)
	group.GET("/dead-letters", h.ListDeadLetters)
	group.POST("/dead-letters/:id/requeue", h.Requeue)
	group.DELETE("/dead-letters/:id", h.Discard)
	return engine
}

func dlqEntry(id uuid.UUID) *shared.OutboxDlqEntry {
	return &shared.OutboxDlqEntry{
		ID:            id,
		EventID:       uuid.New(),
		EventType:     "order.created",
		AggregateID:   uuid.New(),
		AggregateType: "Order",
		Payload:       []byte(`{"orderId":"abc"}`),
		RetryCount:    3,
		LastError:     "broker unavailable",
		FailedAt:      time.Now(),
	}
}

func TestOutboxHandlerCounts(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	outbox.On("CountByStatus", mock.Anything).Return(map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending:   4,
		shared.OutboxStatusProcessed: 120,
	}, nil)

	req := httptest.NewRequest("GET", "/api/v1/outbox/counts", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data eventapp.StatusCounts `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Data.Pending)
	assert.Equal(t, int64(120), resp.Data.Processed)
}

func TestOutboxHandlerListDeadLetters(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	entries := []*shared.OutboxDlqEntry{dlqEntry(uuid.New())}
	dlq.On("List", mock.Anything, 1, 20).Return(entries, int64(1), nil)

	req := httptest.NewRequest("GET", "/api/v1/outbox/dead-letters", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []eventapp.DlqEntryResult `json:"data"`
		Meta *struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "order.created", resp.Data[0].EventType)
	assert.Equal(t, "broker unavailable", resp.Data[0].LastError)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestOutboxHandlerRequeue(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	id := uuid.New()
	entry := dlqEntry(id)
	dlq.On("FindByID", mock.Anything, id).Return(entry, nil)
	publisher.On("PublishRaw", mock.Anything, entry.EventType, entry.AggregateID.String(), entry.Payload).Return(nil)
	dlq.On("Delete", mock.Anything, id).Return(nil)

	req := httptest.NewRequest("POST", "/api/v1/outbox/dead-letters/"+id.String()+"/requeue", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	dlq.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxHandlerRequeueKeepsEntryOnPublishFailure(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	id := uuid.New()
	entry := dlqEntry(id)
	dlq.On("FindByID", mock.Anything, id).Return(entry, nil)
	publisher.On("PublishRaw", mock.Anything, entry.EventType, entry.AggregateID.String(), entry.Payload).
		Return(errors.New("broker down"))

	req := httptest.NewRequest("POST", "/api/v1/outbox/dead-letters/"+id.String()+"/requeue", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	dlq.AssertNotCalled(t, "Delete", mock.Anything, id)
}

func TestOutboxHandlerDiscard(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	id := uuid.New()
	dlq.On("FindByID", mock.Anything, id).Return(dlqEntry(id), nil)
	dlq.On("Delete", mock.Anything, id).Return(nil)

	req := httptest.NewRequest("DELETE", "/api/v1/outbox/dead-letters/"+id.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	dlq.AssertExpectations(t)
}

func TestOutboxHandlerDiscardNotFound(t *testing.T) {
	outbox := new(MockOutboxRepository)
	dlq := new(MockOutboxDlqRepository)
	publisher := new(MockRawPublisher)
	engine := setupOutboxEngine(outbox, dlq, publisher)

	id := uuid.New()
	dlq.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest("DELETE", "/api/v1/outbox/dead-letters/"+id.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
