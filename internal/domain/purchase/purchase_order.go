package purchase

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusCreated  = "CREATED"
	StatusReceived = "RECEIVED"
)

// PurchaseOrderItem represents a line item on a purchase order
type PurchaseOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitCost    decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName string, quantity int64, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
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
	return &PurchaseOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitCost:    unitCost,
		Amount:      unitCost.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// PurchaseOrder is the inbound procurement aggregate root. Unlike sales
// orders it never touches stock on creation; stock moves only when goods
// are actually received against it.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string
	VendorID    uuid.UUID
	VendorName  string
	ShopID      uuid.UUID
	Items       []PurchaseOrderItem
	TotalAmount decimal.Decimal
	Status      string
}

// NewPurchaseOrder creates a new purchase order in CREATED status
func NewPurchaseOrder(orderNumber string, vendorID uuid.UUID, vendorName string, shopID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		VendorID:          vendorID,
		VendorName:        vendorName,
		ShopID:            shopID,
		Items:             make([]PurchaseOrderItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            StatusCreated,
	}, nil
}

// AddItem adds a line item and recalculates the total
func (po *PurchaseOrder) AddItem(productID uuid.UUID, productName string, quantity int64, unitCost decimal.Decimal) (*PurchaseOrderItem, error) {
	item, err := NewPurchaseOrderItem(po.ID, productID, productName, quantity, unitCost)
	if err != nil {
		return nil, err
	}
	po.Items = append(po.Items, *item)
	po.recalculateTotal()
	po.UpdatedAt = time.Now()
	return item, nil
}

// Finalize raises the created event once all items are in place
func (po *PurchaseOrder) Finalize() error {
	if len(po.Items) == 0 {
		return shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order must contain at least one item")
	}
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return nil
}

// UpdateStatus records a caller-supplied status transition
func (po *PurchaseOrder) UpdateStatus(status string) error {
	if status == "" {
		return shared.NewDomainError("INVALID_STATUS", "Status cannot be empty")
	}
	previous := po.Status
	po.Status = status
	po.UpdatedAt = time.Now()
	po.AddDomainEvent(NewPurchaseOrderStatusUpdatedEvent(po, previous))
	return nil
}

// MarkReceived transitions the purchase order to RECEIVED. Receiving an
// already received order is rejected so a GRN cannot replenish twice.
func (po *PurchaseOrder) MarkReceived() error {
	if po.Status == StatusReceived {
		return shared.NewDomainError("ALREADY_RECEIVED", "Purchase order has already been received")
	}
	previous := po.Status
	po.Status = StatusReceived
	po.UpdatedAt = time.Now()
	po.AddDomainEvent(NewPurchaseOrderStatusUpdatedEvent(po, previous))
	return nil
}

func (po *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.Amount)
	}
	po.TotalAmount = total
}
