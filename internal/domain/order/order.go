package order

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusCreated is the status of a freshly orchestrated order. Later
// transitions carry whatever string the caller supplies; the core records
// the transition and emits the event without guarding the state machine.
const StatusCreated = "CREATED"

// OrderItem represents a line item in an order
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderItem creates a new order item
func NewOrderItem(orderID, productID uuid.UUID, productName string, quantity int64, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Order is the sales order aggregate root. It is created exactly once per
// successful orchestration and never deleted; only its status mutates.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	CustomerID   uuid.UUID
	CustomerName string
	ShopID       uuid.UUID
	Items        []OrderItem
	TotalAmount  decimal.Decimal
	Status       string
}

// NewOrder creates a new order in CREATED status
func NewOrder(orderNumber string, customerID uuid.UUID, customerName string, shopID uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		ShopID:            shopID,
		Items:             make([]OrderItem, 0),
		TotalAmount:       decimal.Zero,
		Status:            StatusCreated,
	}, nil
}

// AddItem adds a line item and recalculates the total
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity int64, unitPrice decimal.Decimal) (*OrderItem, error) {
	item, err := NewOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return item, nil
}

// Finalize raises the created event once all items are in place
func (o *Order) Finalize() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_ORDER", "Order must contain at least one item")
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// UpdateStatus records a caller-supplied status transition. Any non-empty
// string is accepted; the previous status travels with the event.
func (o *Order) UpdateStatus(status string) error {
	if status == "" {
		return shared.NewDomainError("INVALID_STATUS", "Status cannot be empty")
	}
	previous := o.Status
	o.Status = status
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusUpdatedEvent(o, previous))
	return nil
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}
