package handler

import (
	orderapp "github.com/pharmacy/backend/internal/application/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHandler handles sales order endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrderItemRequest is one requested line of a new order
type CreateOrderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gte=0"`
}

// CreateOrderRequest is the request body for placing an order
type CreateOrderRequest struct {
	CustomerID string                   `json:"customer_id" binding:"required,uuid"`
	ShopID     string                   `json:"shop_id" binding:"required,uuid"`
	Items      []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the request body for a status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,min=1,max=32"`
}

// Create places a new order, deducting stock FEFO across batches.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	cmd := orderapp.CreateOrderCommand{
		IdempotencyKey: idempotencyKey(c),
		CustomerID:     uuid.MustParse(req.CustomerID),
		ShopID:         uuid.MustParse(req.ShopID),
		Items:          make([]orderapp.CreateOrderItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = orderapp.CreateOrderItemCommand{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
		}
	}

	result, err := h.orders.Create(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UpdateStatus transitions an order to a new status.
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.orders.UpdateStatus(c.Request.Context(), orderapp.UpdateStatusCommand{
		IdempotencyKey: idempotencyKey(c),
		OrderID:        uuid.MustParse(idReq.ID),
		Status:         req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get retrieves a single order with its items.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.orders.GetByID(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List retrieves orders with pagination and optional filters.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	req.Normalize()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if shopID := c.Query("shop_id"); shopID != "" {
		filter.Filters["shop_id"] = shopID
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.Filters["customer_id"] = customerID
	}

	page, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
