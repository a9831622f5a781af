package purchase

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemCommand is one requested line of a new purchase order
type CreateItemCommand struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
}

// CreateCommand carries everything needed to place a purchase order
type CreateCommand struct {
	IdempotencyKey string
	VendorID       uuid.UUID
	ShopID         uuid.UUID
	Items          []CreateItemCommand
}

// ReceiveItemCommand is one received batch line of a goods receipt
type ReceiveItemCommand struct {
	ProductID  uuid.UUID
	BatchNo    string
	Quantity   int64
	UnitCost   decimal.Decimal
	ExpiryDate *time.Time
}

// ReceiveCommand records goods arriving against a purchase order
type ReceiveCommand struct {
	IdempotencyKey  string
	PurchaseOrderID uuid.UUID
	Items           []ReceiveItemCommand
}

// ItemResult is a line item in a purchase order response
type ItemResult struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	UnitCost    string    `json:"unitCost"`
	Amount      string    `json:"amount"`
}

// PurchaseOrderResult is the response of purchase order reads and
// mutations; it is the value cached under the idempotency key.
type PurchaseOrderResult struct {
	ID          uuid.UUID    `json:"id"`
	OrderNumber string       `json:"orderNumber"`
	VendorID    uuid.UUID    `json:"vendorId"`
	VendorName  string       `json:"vendorName"`
	ShopID      uuid.UUID    `json:"shopId"`
	Items       []ItemResult `json:"items"`
	TotalAmount string       `json:"totalAmount"`
	Status      string       `json:"status"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ReceiptItemResult is one received batch line in a receipt response
type ReceiptItemResult struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"productId"`
	ProductName string     `json:"productName"`
	BatchNo     string     `json:"batchNo"`
	Quantity    int64      `json:"quantity"`
	UnitCost    string     `json:"unitCost"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
}

// GoodsReceiptResult is the response of the receive operation
type GoodsReceiptResult struct {
	ID              uuid.UUID           `json:"id"`
	NoteNumber      string              `json:"noteNumber"`
	PurchaseOrderID uuid.UUID           `json:"purchaseOrderId"`
	ShopID          uuid.UUID           `json:"shopId"`
	Items           []ReceiptItemResult `json:"items"`
	ReceivedAt      time.Time           `json:"receivedAt"`
}

func toPurchaseOrderResult(po *purchase.PurchaseOrder) *PurchaseOrderResult {
	items := make([]ItemResult, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, ItemResult{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.String(),
			Amount:      item.Amount.String(),
		})
	}
	return &PurchaseOrderResult{
		ID:          po.ID,
		OrderNumber: po.OrderNumber,
		VendorID:    po.VendorID,
		VendorName:  po.VendorName,
		ShopID:      po.ShopID,
		Items:       items,
		TotalAmount: po.TotalAmount.String(),
		Status:      po.Status,
		Version:     po.Version,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

func toGoodsReceiptResult(note *purchase.GoodsReceiptNote) *GoodsReceiptResult {
	items := make([]ReceiptItemResult, 0, len(note.Items))
	for _, item := range note.Items {
		items = append(items, ReceiptItemResult{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			BatchNo:     item.BatchNo,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost.String(),
			ExpiryDate:  item.ExpiryDate,
		})
	}
	return &GoodsReceiptResult{
		ID:              note.ID,
		NoteNumber:      note.NoteNumber,
		PurchaseOrderID: note.PurchaseOrderID,
		ShopID:          note.ShopID,
		Items:           items,
		ReceivedAt:      note.ReceivedAt,
	}
}
