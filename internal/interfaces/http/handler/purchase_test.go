package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupPurchaseEngine() *gin.Engine {
	h := NewPurchaseHandler(nil)
	engine := gin.New()
	group := engine.Group("/api/v1/purchase-orders")
	group.POST("", h.Create)
	group.POST("/:id/receive", h.Receive)
	group.GET("/:id/receipts", h.ListReceipts)
	return engine
}

func TestPurchaseHandlerReceiveRejectsBadExpiryDate(t *testing.T) {
	engine := setupPurchaseEngine()

	w := postJSON(t, engine, "/api/v1/purchase-orders/"+uuid.NewString()+"/receive", gin.H{
		"items": []gin.H{
			{
				"product_id":  uuid.NewString(),
				"batch_no":    "B-2026-001",
				"quantity":    10,
				"unit_cost":   1.2,
				"expiry_date": "31/12/2026",
			},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "expiry_date")
}

func TestPurchaseHandlerReceiveRejectsNonPositiveQuantity(t *testing.T) {
	engine := setupPurchaseEngine()

	w := postJSON(t, engine, "/api/v1/purchase-orders/"+uuid.NewString()+"/receive", gin.H{
		"items": []gin.H{
			{"product_id": uuid.NewString(), "batch_no": "B2026-09", "quantity": 0, "unit_cost": 1.2},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseHandlerListReceiptsRejectsBadID(t *testing.T) {
	engine := setupPurchaseEngine()

	req := httptest.NewRequest("GET", "/api/v1/purchase-orders/not-a-uuid/receipts", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
