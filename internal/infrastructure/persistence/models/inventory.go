package models

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// InventoryRecordModel is the persistence model for batch-level stock.
// One row per (product, shop, batch); the unique index is what keeps a
// replenished batch from forking into parallel rows.
type InventoryRecordModel struct {
	BaseModel
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_shop_batch,priority:1;index:idx_inventory_product_shop"`
	ShopID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_shop_batch,priority:2;index:idx_inventory_product_shop"`
	BatchNo    string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_inventory_product_shop_batch,priority:3"`
	Quantity   int64      `gorm:"not null;default:0"`
	ExpiryDate *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (InventoryRecordModel) TableName() string {
	return "inventory_records"
}

// ToDomain converts the persistence model to a domain InventoryRecord
func (m *InventoryRecordModel) ToDomain() *inventory.InventoryRecord {
	return &inventory.InventoryRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		ShopID:     m.ShopID,
		BatchNo:    m.BatchNo,
		Quantity:   m.Quantity,
		ExpiryDate: m.ExpiryDate,
	}
}

// FromDomain populates the persistence model from a domain InventoryRecord
func (m *InventoryRecordModel) FromDomain(r *inventory.InventoryRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ProductID = r.ProductID
	m.ShopID = r.ShopID
	m.BatchNo = r.BatchNo
	m.Quantity = r.Quantity
	m.ExpiryDate = r.ExpiryDate
}
