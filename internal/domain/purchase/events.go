package purchase

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventPurchaseOrderCreated       = "purchase_order.created"
	EventPurchaseOrderStatusUpdated = "purchase_order.status_updated"
	EventGoodsReceiptCreated        = "grn.created"

	purchaseOrderAggregate = "PurchaseOrder"
	goodsReceiptAggregate  = "GoodsReceiptNote"
)

// PurchaseOrderItemPayload is the denormalized line carried by purchase
// order events.
type PurchaseOrderItemPayload struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	UnitCost    string    `json:"unitCost"`
	Amount      string    `json:"amount"`
}

// PurchaseOrderCreatedEvent is raised when a purchase order is placed
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string                     `json:"orderNumber"`
	VendorID    uuid.UUID                  `json:"vendorId"`
	VendorName  string                     `json:"vendorName"`
	ShopID      uuid.UUID                  `json:"shopId"`
	Items       []PurchaseOrderItemPayload `json:"items"`
	TotalAmount string                     `json:"totalAmount"`
	Status      string                     `json:"status"`
}

func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	items := make([]PurchaseOrderItemPayload, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, PurchaseOrderItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.String(),
			Amount:      item.Amount.String(),
		})
	}
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderCreated, purchaseOrderAggregate, po.ID),
		OrderNumber:     po.OrderNumber,
		VendorID:        po.VendorID,
		VendorName:      po.VendorName,
		ShopID:          po.ShopID,
		Items:           items,
		TotalAmount:     po.TotalAmount.String(),
		Status:          po.Status,
	}
}

// PurchaseOrderStatusUpdatedEvent is raised on every status transition,
// including the RECEIVED transition driven by goods receipt.
type PurchaseOrderStatusUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string `json:"orderNumber"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
}

func NewPurchaseOrderStatusUpdatedEvent(po *PurchaseOrder, previous string) *PurchaseOrderStatusUpdatedEvent {
	return &PurchaseOrderStatusUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderStatusUpdated, purchaseOrderAggregate, po.ID),
		OrderNumber:     po.OrderNumber,
		PreviousStatus:  previous,
		Status:          po.Status,
	}
}

// GoodsReceiptItemPayload is the denormalized batch line carried by the
// receipt event so downstream consumers see exactly what entered stock.
type GoodsReceiptItemPayload struct {
	ProductID   uuid.UUID  `json:"productId"`
	ProductName string     `json:"productName"`
	BatchNo     string     `json:"batchNo"`
	Quantity    int64      `json:"quantity"`
	UnitCost    string     `json:"unitCost"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
}

// GoodsReceiptCreatedEvent is raised when goods are received into stock
type GoodsReceiptCreatedEvent struct {
	shared.BaseDomainEvent
	NoteNumber      string                    `json:"noteNumber"`
	PurchaseOrderID uuid.UUID                 `json:"purchaseOrderId"`
	ShopID          uuid.UUID                 `json:"shopId"`
	Items           []GoodsReceiptItemPayload `json:"items"`
	ReceivedAt      time.Time                 `json:"receivedAt"`
}

func NewGoodsReceiptCreatedEvent(g *GoodsReceiptNote) *GoodsReceiptCreatedEvent {
	items := make([]GoodsReceiptItemPayload, 0, len(g.Items))
	for _, item := range g.Items {
		items = append(items, GoodsReceiptItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			BatchNo:     item.BatchNo,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.String(),
			ExpiryDate:  item.ExpiryDate,
		})
	}
	return &GoodsReceiptCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventGoodsReceiptCreated, goodsReceiptAggregate, g.ID),
		NoteNumber:      g.NoteNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		ShopID:          g.ShopID,
		Items:           items,
		ReceivedAt:      g.ReceivedAt,
	}
}
