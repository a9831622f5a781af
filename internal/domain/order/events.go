package order

import (
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"

	aggregateType = "Order"
)

// OrderItemPayload is the denormalized item line carried by order events so
// consumers never need to call back into the order service.
type OrderItemPayload struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Amount      string    `json:"amount"`
}

// OrderCreatedEvent is raised when an order is successfully placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber  string             `json:"orderNumber"`
	CustomerID   uuid.UUID          `json:"customerId"`
	CustomerName string             `json:"customerName"`
	ShopID       uuid.UUID          `json:"shopId"`
	Items        []OrderItemPayload `json:"items"`
	TotalAmount  string             `json:"totalAmount"`
	Status       string             `json:"status"`
}

func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, aggregateType, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		ShopID:          o.ShopID,
		Items:           itemPayloads(o.Items),
		TotalAmount:     o.TotalAmount.String(),
		Status:          o.Status,
	}
}

// OrderStatusUpdatedEvent is raised on every status transition
type OrderStatusUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string `json:"orderNumber"`
	PreviousStatus string `json:"previousStatus"`
	Status         string `json:"status"`
}

func NewOrderStatusUpdatedEvent(o *Order, previous string) *OrderStatusUpdatedEvent {
	return &OrderStatusUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderStatusUpdated, aggregateType, o.ID),
		OrderNumber:     o.OrderNumber,
		PreviousStatus:  previous,
		Status:          o.Status,
	}
}

func itemPayloads(items []OrderItem) []OrderItemPayload {
	payloads := make([]OrderItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, OrderItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			Amount:      item.Amount.String(),
		})
	}
	return payloads
}
