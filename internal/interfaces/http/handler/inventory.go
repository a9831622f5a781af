package handler

import (
	"strconv"

	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles stock query endpoints
type InventoryHandler struct {
	BaseHandler
	stock *inventoryapp.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stock *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

// StockLevel returns the on-hand quantity and batch breakdown of a
// product at a shop.
// GET /api/v1/shops/:id/products/:product_id/stock
func (h *InventoryHandler) StockLevel(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid shop id")
		return
	}
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	level, err := h.stock.StockLevel(c.Request.Context(), productID, shopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// ShopStock lists every batch held at a shop, soonest expiry first.
// GET /api/v1/shops/:id/stock
func (h *InventoryHandler) ShopStock(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	batches, err := h.stock.ShopStock(c.Request.Context(), uuid.MustParse(idReq.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ExpiringSoon lists batches at a shop that expire within the given
// window (default 30 days).
// GET /api/v1/shops/:id/stock/expiring
func (h *InventoryHandler) ExpiringSoon(c *gin.Context) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BindingError(c, err)
		return
	}

	withinDays := 0
	if raw := c.Query("within_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "within_days must be a positive integer")
			return
		}
		withinDays = parsed
	}

	batches, err := h.stock.ExpiringSoon(c.Request.Context(), uuid.MustParse(idReq.ID), withinDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}
