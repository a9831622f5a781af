package handler

import (
	"time"

	purchaseapp "github.com/pharmacy/backend/internal/application/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseHandler handles purchase order and goods receipt endpoints
type PurchaseHandler struct {
	BaseHandler
	purchasing *purchaseapp.Service
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchasing *purchaseapp.Service) *PurchaseHandler {
	return &PurchaseHandler{purchasing: purchasing}
}

// CreatePurchaseItemRequest is one requested line of a new purchase order
type CreatePurchaseItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" binding:"required,gte=0"`
}

// CreatePurchaseOrderRequest is the request body for placing a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID string                      `json:"vendor_id" binding:"required,uuid"`
	ShopID   string                      `json:"shop_id" binding:"required,uuid"`
	Items    []CreatePurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItemRequest is one received batch line. An absent or empty
// batch_no records the stock as unbatched.
type ReceiveItemRequest struct {
	ProductID  string  `json:"product_id" binding:"required,uuid"`
	BatchNo    string  `json:"batch_no" binding:"omitempty,max=64"`
	Quantity   int64   `json:"quantity" binding:"required,gt=0"`
	UnitCost   float64 `json:"unit_cost" binding:"required,gte=0"`
	ExpiryDate string  `json:"expiry_date" binding:"omitempty"`
}

// ReceiveRequest is the request body for recording a goods receipt
type ReceiveRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Create places a new purchase order. No stock moves until goods arrive.
// POST /api/v1/purchase-orders
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	cmd := purchaseapp.CreateCommand{
		IdempotencyKey: idempotencyKey(c),
		VendorID:       uuid.MustParse(req.VendorID),
		ShopID:         uuid.MustParse(req.ShopID),
		Items:          make([]purchaseapp.CreateItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		cmd.Items[i] = purchaseapp.CreateItemCommand{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			UnitCost:  decimal.NewFromFloat(item.UnitCost),
		}
	}

	result, err := h.purchasing.Create(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Receive records a goods receipt note against a purchase order, adding
// the received batches to stock.
// POST /api/v1/purchase-orders/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}
	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	cmd := purchaseapp.ReceiveCommand{
		IdempotencyKey:  idempotencyKey(c),
		PurchaseOrderID: uuid.MustParse(idReq.ID),
		Items:           make([]purchaseapp.ReceiveItemCommand, len(req.Items)),
	}
	for i, item := range req.Items {
		var expiry *time.Time
		if item.ExpiryDate != "" {
			parsed, err := parseDate(item.ExpiryDate)
			if err != nil {
				h.BadRequest(c, "invalid expiry_date: "+item.ExpiryDate)
				return
			}
			expiry = &parsed
		}
		cmd.Items[i] = purchaseapp.ReceiveItemCommand{
			ProductID:  uuid.MustParse(item.ProductID),
			BatchNo:    item.BatchNo,
			Quantity:   item.Quantity,
			UnitCost:   decimal.NewFromFloat(item.UnitCost),
			ExpiryDate: expiry,
		}
	}

	result, err := h.purchasing.Receive(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get retrieves a single purchase order with its items.
// GET /api/v1/purchase-orders/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.purchasing.GetByID(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List retrieves purchase orders with pagination and optional filters.
// GET /api/v1/purchase-orders
func (h *PurchaseHandler) List(c *gin.Context) {
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
	if vendorID := c.Query("vendor_id"); vendorID != "" {
		filter.Filters["vendor_id"] = vendorID
	}

	page, err := h.purchasing.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListReceipts retrieves the goods receipt notes of a purchase order.
// GET /api/v1/purchase-orders/:id/receipts
func (h *PurchaseHandler) ListReceipts(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	receipts, err := h.purchasing.ListReceipts(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipts)
}

// parseDate parses a date in RFC3339 or plain date form
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
