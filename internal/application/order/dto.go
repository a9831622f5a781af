package order

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderItemCommand is one requested line of a new order
type CreateOrderItemCommand struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateOrderCommand carries everything needed to place an order. The
// idempotency key is optional; without one every call executes.
type CreateOrderCommand struct {
	IdempotencyKey string
	CustomerID     uuid.UUID
	ShopID         uuid.UUID
	Items          []CreateOrderItemCommand
}

// UpdateStatusCommand carries a status transition request
type UpdateStatusCommand struct {
	IdempotencyKey string
	OrderID        uuid.UUID
	Status         string
}

// OrderItemResult is a line item in an order response
type OrderItemResult struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Amount      string    `json:"amount"`
}

// OrderResult is the response of order reads and mutations. It is the
// exact value cached under the idempotency key, so it must stay
// JSON-round-trippable.
type OrderResult struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  string            `json:"orderNumber"`
	CustomerID   uuid.UUID         `json:"customerId"`
	CustomerName string            `json:"customerName"`
	ShopID       uuid.UUID         `json:"shopId"`
	Items        []OrderItemResult `json:"items"`
	TotalAmount  string            `json:"totalAmount"`
	Status       string            `json:"status"`
	Version      int               `json:"version"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func toOrderResult(o *order.Order) *OrderResult {
	items := make([]OrderItemResult, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResult{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Amount:      item.Amount.String(),
		})
	}
	return &OrderResult{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		CustomerName: o.CustomerName,
		ShopID:       o.ShopID,
		Items:        items,
		TotalAmount:  o.TotalAmount.String(),
		Status:       o.Status,
		Version:      o.Version,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
