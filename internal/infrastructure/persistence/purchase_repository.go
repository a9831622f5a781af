package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements purchase.Repository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GORM-based purchase order repository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// Create inserts a new purchase order together with its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *purchase.PurchaseOrder) error {
	var model models.PurchaseOrderModel
	model.FromDomain(po)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists the purchase order with an optimistic version check
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, po *purchase.PurchaseOrder) error {
	currentVersion := po.Version
	po.IncrementVersion()
	po.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", po.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":       po.Status,
			"total_amount": po.TotalAmount,
			"version":      po.Version,
			"updated_at":   po.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		po.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID retrieves a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List retrieves purchase orders with pagination and optional filters
func (r *GormPurchaseOrderRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[purchase.PurchaseOrder], error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if vendorID, ok := filter.Filters["vendor_id"]; ok {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if shopID, ok := filter.Filters["shop_id"]; ok {
		query = query.Where("shop_id = ?", shopID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.PurchaseOrderModel
	err := query.
		Preload("Items").
		Order(orderClause(filter)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]purchase.PurchaseOrder, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// NextOrderNumber generates a unique purchase order number.
// Format: PO-YYYY-NNNNN
func (r *GormPurchaseOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &models.PurchaseOrderModel{}, "order_number", prefix)
}

// GormGoodsReceiptRepository implements purchase.GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GORM-based goods receipt repository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// Create inserts a goods receipt note together with its items
func (r *GormGoodsReceiptRepository) Create(ctx context.Context, note *purchase.GoodsReceiptNote) error {
	var model models.GoodsReceiptNoteModel
	model.FromDomain(note)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByID retrieves a goods receipt note with its items
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.GoodsReceiptNote, error) {
	var model models.GoodsReceiptNoteModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPurchaseOrderID retrieves all receipt notes for a purchase order
func (r *GormGoodsReceiptRepository) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) ([]*purchase.GoodsReceiptNote, error) {
	var rows []models.GoodsReceiptNoteModel
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("received_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	notes := make([]*purchase.GoodsReceiptNote, len(rows))
	for i := range rows {
		notes[i] = rows[i].ToDomain()
	}
	return notes, nil
}

// NextNoteNumber generates a unique goods receipt note number.
// Format: GRN-YYYY-NNNNN
func (r *GormGoodsReceiptRepository) NextNoteNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("GRN-%d-", time.Now().Year())
	return nextDocumentNumber(ctx, r.db, &models.GoodsReceiptNoteModel{}, "note_number", prefix)
}

var (
	_ purchase.Repository             = (*GormPurchaseOrderRepository)(nil)
	_ purchase.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
)
