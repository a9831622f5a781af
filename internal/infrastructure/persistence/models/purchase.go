package models

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root
type PurchaseOrderModel struct {
	AggregateModel
	OrderNumber string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	VendorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorName  string          `gorm:"type:varchar(255);not null"`
	ShopID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status      string          `gorm:"type:varchar(32);not null;index"`
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel is the persistence model for a purchase order line item
type PurchaseOrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *purchase.PurchaseOrder {
	po := &purchase.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		VendorID:          m.VendorID,
		VendorName:        m.VendorName,
		ShopID:            m.ShopID,
		TotalAmount:       m.TotalAmount,
		Status:            m.Status,
		Items:             make([]purchase.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		po.Items[i] = purchase.PurchaseOrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			Amount:      item.Amount,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		}
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder
func (m *PurchaseOrderModel) FromDomain(po *purchase.PurchaseOrder) {
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	m.OrderNumber = po.OrderNumber
	m.VendorID = po.VendorID
	m.VendorName = po.VendorName
	m.ShopID = po.ShopID
	m.TotalAmount = po.TotalAmount
	m.Status = po.Status
	m.Items = make([]PurchaseOrderItemModel, len(po.Items))
	for i, item := range po.Items {
		m.Items[i] = PurchaseOrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			Amount:      item.Amount,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		}
	}
}

// GoodsReceiptNoteModel is the persistence model for a goods receipt note
type GoodsReceiptNoteModel struct {
	AggregateModel
	NoteNumber      string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	ShopID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceivedAt      time.Time `gorm:"not null"`
	Items           []GoodsReceiptNoteItemModel `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (GoodsReceiptNoteModel) TableName() string {
	return "goods_receipt_notes"
}

// GoodsReceiptNoteItemModel is the persistence model for a received batch line
type GoodsReceiptNoteItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	NoteID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	BatchNo     string          `gorm:"type:varchar(64);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpiryDate  *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GoodsReceiptNoteItemModel) TableName() string {
	return "goods_receipt_note_items"
}

// ToDomain converts the persistence model to a domain GoodsReceiptNote
func (m *GoodsReceiptNoteModel) ToDomain() *purchase.GoodsReceiptNote {
	note := &purchase.GoodsReceiptNote{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		NoteNumber:        m.NoteNumber,
		PurchaseOrderID:   m.PurchaseOrderID,
		ShopID:            m.ShopID,
		ReceivedAt:        m.ReceivedAt,
		Items:             make([]purchase.GoodsReceiptNoteItem, len(m.Items)),
	}
	for i, item := range m.Items {
		note.Items[i] = purchase.GoodsReceiptNoteItem{
			ID:          item.ID,
			NoteID:      item.NoteID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			BatchNo:     item.BatchNo,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			ExpiryDate:  item.ExpiryDate,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		}
	}
	return note
}

// FromDomain populates the persistence model from a domain GoodsReceiptNote
func (m *GoodsReceiptNoteModel) FromDomain(note *purchase.GoodsReceiptNote) {
	m.FromDomainAggregateRoot(note.BaseAggregateRoot)
	m.NoteNumber = note.NoteNumber
	m.PurchaseOrderID = note.PurchaseOrderID
	m.ShopID = note.ShopID
	m.ReceivedAt = note.ReceivedAt
	m.Items = make([]GoodsReceiptNoteItemModel, len(note.Items))
	for i, item := range note.Items {
		m.Items[i] = GoodsReceiptNoteItemModel{
			ID:          item.ID,
			NoteID:      item.NoteID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			BatchNo:     item.BatchNo,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			ExpiryDate:  item.ExpiryDate,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		}
	}
}
