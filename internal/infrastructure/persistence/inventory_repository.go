package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements inventory.Repository using GORM.
// The ForUpdate methods rely on row-level locks, so they are only
// meaningful on a repository bound to an open transaction.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GORM-based inventory repository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindAllocatableForUpdate fetches all non-empty batches for the product at
// the shop, row-locked, ordered soonest expiry first with undated batches
// last. Two concurrent orders for the same product serialize here.
func (r *GormInventoryRepository) FindAllocatableForUpdate(ctx context.Context, productID, shopID uuid.UUID) ([]*inventory.InventoryRecord, error) {
	var rows []models.InventoryRecordModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND shop_id = ? AND quantity > 0", productID, shopID).
		Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRecords(rows), nil
}

// FindBatchForUpdate fetches the record for one batch, row-locked
func (r *GormInventoryRepository) FindBatchForUpdate(ctx context.Context, productID, shopID uuid.UUID, batchNo string) (*inventory.InventoryRecord, error) {
	var model models.InventoryRecordModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND shop_id = ? AND batch_no = ?", productID, shopID, batchNo).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new or updated record
func (r *GormInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	var model models.InventoryRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveAll persists multiple records
func (r *GormInventoryRepository) SaveAll(ctx context.Context, records []*inventory.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.InventoryRecordModel, len(records))
	for i, rec := range records {
		rows[i].FromDomain(rec)
	}
	return r.db.WithContext(ctx).Save(&rows).Error
}

// TotalOnHand returns the summed quantity across all batches
func (r *GormInventoryRepository) TotalOnHand(ctx context.Context, productID, shopID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryRecordModel{}).
		Where("product_id = ? AND shop_id = ?", productID, shopID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// FindByShop lists records for a shop, optionally filtered by product
func (r *GormInventoryRepository) FindByShop(ctx context.Context, shopID uuid.UUID, productID *uuid.UUID) ([]*inventory.InventoryRecord, error) {
	query := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	var rows []models.InventoryRecordModel
	err := query.
		Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRecords(rows), nil
}

// FindExpiringSoon lists non-empty batches expiring within the given days
func (r *GormInventoryRepository) FindExpiringSoon(ctx context.Context, shopID uuid.UUID, withinDays int) ([]*inventory.InventoryRecord, error) {
	cutoff := time.Now().AddDate(0, 0, withinDays)
	var rows []models.InventoryRecordModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND quantity > 0 AND expiry_date IS NOT NULL AND expiry_date <= ?", shopID, cutoff).
		Order("expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRecords(rows), nil
}

func toDomainRecords(rows []models.InventoryRecordModel) []*inventory.InventoryRecord {
	records := make([]*inventory.InventoryRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
