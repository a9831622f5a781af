package models

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxEventModel is the persistence model for outbox events
type OutboxEventModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string              `gorm:"type:varchar(128);not null;index"`
	AggregateID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	AggregateType string              `gorm:"type:varchar(64);not null"`
	Payload       []byte              `gorm:"type:jsonb;not null"`
	Status        shared.OutboxStatus `gorm:"type:varchar(16);not null;index:idx_outbox_status_created"`
	RetryCount    int                 `gorm:"not null;default:0"`
	LastError     string              `gorm:"type:text"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;index:idx_outbox_status_created"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OutboxEventModel) TableName() string {
	return "outbox_events"
}

// ToDomain converts the persistence model to a domain OutboxEvent
func (m *OutboxEventModel) ToDomain() *shared.OutboxEvent {
	return &shared.OutboxEvent{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		LastError:     m.LastError,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OutboxEvent
func (m *OutboxEventModel) FromDomain(e *shared.OutboxEvent) {
	m.ID = e.ID
	m.EventID = e.EventID
	m.EventType = e.EventType
	m.AggregateID = e.AggregateID
	m.AggregateType = e.AggregateType
	m.Payload = e.Payload
	m.Status = e.Status
	m.RetryCount = e.RetryCount
	m.LastError = e.LastError
	m.ProcessedAt = e.ProcessedAt
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OutboxDlqModel is the persistence model for dead-lettered outbox events
type OutboxDlqModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType     string    `gorm:"type:varchar(128);not null;index"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AggregateType string    `gorm:"type:varchar(64);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	RetryCount    int       `gorm:"not null"`
	LastError     string    `gorm:"type:text"`
	FailedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (OutboxDlqModel) TableName() string {
	return "outbox_dlq"
}

// ToDomain converts the persistence model to a domain OutboxDlqEntry
func (m *OutboxDlqModel) ToDomain() *shared.OutboxDlqEntry {
	return &shared.OutboxDlqEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		RetryCount:    m.RetryCount,
		LastError:     m.LastError,
		FailedAt:      m.FailedAt,
	}
}

// FromDomain populates the persistence model from a domain OutboxDlqEntry
func (m *OutboxDlqModel) FromDomain(e *shared.OutboxDlqEntry) {
	m.ID = e.ID
	m.EventID = e.EventID
	m.EventType = e.EventType
	m.AggregateID = e.AggregateID
	m.AggregateType = e.AggregateType
	m.Payload = e.Payload
	m.RetryCount = e.RetryCount
	m.LastError = e.LastError
	m.FailedAt = e.FailedAt
}
