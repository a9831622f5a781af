package event

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOutboxRepository implements shared.OutboxRepository using GORM
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new GORM-based outbox repository
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx returns a repository instance bound to the given transaction
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

// Save persists one or more outbox events
func (r *GormOutboxRepository) Save(ctx context.Context, events ...*shared.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]models.OutboxEventModel, len(events))
	for i, e := range events {
		rows[i].FromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindPending retrieves pending events, oldest first
func (r *GormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEvent, error) {
	var rows []models.OutboxEventModel
	err := r.db.WithContext(ctx).
		Where("status = ?", shared.OutboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainEvents(rows), nil
}

// FindByID retrieves a single outbox event
func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEvent, error) {
	var model models.OutboxEventModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAggregateID retrieves all events for an aggregate, oldest first
func (r *GormOutboxRepository) FindByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEvent, error) {
	var rows []models.OutboxEventModel
	err := r.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainEvents(rows), nil
}

// Update persists status, retry count and error of an event
func (r *GormOutboxRepository) Update(ctx context.Context, event *shared.OutboxEvent) error {
	var model models.OutboxEventModel
	model.FromDomain(event)
	return r.db.WithContext(ctx).Save(&model).Error
}

// MoveToDeadLetter writes the dead-letter copy and deletes the source row
// in one transaction. After this the event is only reachable through the
// dead-letter store.
func (r *GormOutboxRepository) MoveToDeadLetter(ctx context.Context, event *shared.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dlqModel models.OutboxDlqModel
		dlqModel.FromDomain(shared.NewOutboxDlqEntry(event))
		if err := tx.Create(&dlqModel).Error; err != nil {
			return err
		}
		return tx.Delete(&models.OutboxEventModel{}, "id = ?", event.ID).Error
	})
}

// DeleteProcessedBefore deletes processed events older than the given time
func (r *GormOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusProcessed, before).
		Delete(&models.OutboxEventModel{})
	return result.RowsAffected, result.Error
}

// CountByStatus returns count of events per status
func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	type statusCount struct {
		Status shared.OutboxStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEventModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func toDomainEvents(rows []models.OutboxEventModel) []*shared.OutboxEvent {
	events := make([]*shared.OutboxEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events
}

// GormOutboxDlqRepository implements shared.OutboxDlqRepository using GORM
type GormOutboxDlqRepository struct {
	db *gorm.DB
}

// NewGormOutboxDlqRepository creates a new GORM-based dead-letter repository
func NewGormOutboxDlqRepository(db *gorm.DB) *GormOutboxDlqRepository {
	return &GormOutboxDlqRepository{db: db}
}

// Save persists a dead-letter entry
func (r *GormOutboxDlqRepository) Save(ctx context.Context, entry *shared.OutboxDlqEntry) error {
	var model models.OutboxDlqModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID retrieves a single dead-letter entry
func (r *GormOutboxDlqRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxDlqEntry, error) {
	var model models.OutboxDlqModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List retrieves dead-letter entries with pagination, newest first
func (r *GormOutboxDlqRepository) List(ctx context.Context, page, pageSize int) ([]*shared.OutboxDlqEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.OutboxDlqModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OutboxDlqModel
	err := r.db.WithContext(ctx).
		Order("failed_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*shared.OutboxDlqEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

// Delete removes a dead-letter entry
func (r *GormOutboxDlqRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OutboxDlqModel{}, "id = ?", id).Error
}

var (
	_ shared.OutboxRepository    = (*GormOutboxRepository)(nil)
	_ shared.OutboxDlqRepository = (*GormOutboxDlqRepository)(nil)
)
