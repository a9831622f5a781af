package purchase

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceiptNoteItem records a received batch: which product arrived,
// under which batch number, how many units, and when the batch expires.
type GoodsReceiptNoteItem struct {
	ID          uuid.UUID
	NoteID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	BatchNo     string
	Quantity    int64
	UnitCost    decimal.Decimal
	ExpiryDate  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewGoodsReceiptNoteItem creates a new receipt line. An empty batch
// number means the delivery is unbatched; it lands on the '' batch row
// for the product and shop.
func NewGoodsReceiptNoteItem(noteID, productID uuid.UUID, productName, batchNo string, quantity int64, unitCost decimal.Decimal, expiryDate *time.Time) (*GoodsReceiptNoteItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	now := time.Now()
	return &GoodsReceiptNoteItem{
		ID:          uuid.New(),
		NoteID:      noteID,
		ProductID:   productID,
		ProductName: productName,
		BatchNo:     batchNo,
		Quantity:    quantity,
		UnitCost:    unitCost,
		ExpiryDate:  expiryDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GoodsReceiptNote is the receiving document for a purchase order. It is
// the inbound mirror of a sales order: its lines replenish batch-level
// stock in the same transaction that persists the note.
type GoodsReceiptNote struct {
	shared.BaseAggregateRoot
	NoteNumber      string
	PurchaseOrderID uuid.UUID
	ShopID          uuid.UUID
	Items           []GoodsReceiptNoteItem
	ReceivedAt      time.Time
}

// NewGoodsReceiptNote creates a new goods receipt note
func NewGoodsReceiptNote(noteNumber string, purchaseOrderID, shopID uuid.UUID) (*GoodsReceiptNote, error) {
	if noteNumber == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_NUMBER", "Note number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order ID cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}

	return &GoodsReceiptNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		NoteNumber:        noteNumber,
		PurchaseOrderID:   purchaseOrderID,
		ShopID:            shopID,
		Items:             make([]GoodsReceiptNoteItem, 0),
		ReceivedAt:        time.Now(),
	}, nil
}

// AddItem adds a received batch line
func (g *GoodsReceiptNote) AddItem(productID uuid.UUID, productName, batchNo string, quantity int64, unitCost decimal.Decimal, expiryDate *time.Time) (*GoodsReceiptNoteItem, error) {
	item, err := NewGoodsReceiptNoteItem(g.ID, productID, productName, batchNo, quantity, unitCost, expiryDate)
	if err != nil {
		return nil, err
	}
	g.Items = append(g.Items, *item)
	g.UpdatedAt = time.Now()
	return item, nil
}

// Finalize raises the created event once all lines are in place
func (g *GoodsReceiptNote) Finalize() error {
	if len(g.Items) == 0 {
		return shared.NewDomainError("INVALID_RECEIPT", "Goods receipt note must contain at least one item")
	}
	g.AddDomainEvent(NewGoodsReceiptCreatedEvent(g))
	return nil
}
