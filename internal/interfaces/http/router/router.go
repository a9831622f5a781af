package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pharmacy/backend/internal/interfaces/http/handler"
	"github.com/pharmacy/backend/internal/interfaces/http/middleware"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries the handlers and cross-cutting dependencies the
// HTTP layer needs.
type Config struct {
	Logger     *zap.Logger
	Orders     *handler.OrderHandler
	Purchasing *handler.PurchaseHandler
	Inventory  *handler.InventoryHandler
	Outbox     *handler.OutboxHandler

	// Named dependency checks surfaced through /health.
	// Each entry maps a dependency name (e.g. "database") to its probe.
	HealthChecks map[string]HealthCheck
}

// New builds the gin engine with the full middleware stack and all
// API routes registered.
func New(cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(cfg.Logger))
	engine.Use(middleware.Logging(cfg.Logger))

	engine.GET("/health", healthHandler(cfg.HealthChecks))

	api := engine.Group("/api/v1")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	orders := api.Group("/orders")
	orders.POST("", cfg.Orders.Create)
	orders.GET("", cfg.Orders.List)
	orders.GET("/:id", cfg.Orders.Get)
	orders.PUT("/:id/status", cfg.Orders.UpdateStatus)

	purchaseOrders := api.Group("/purchase-orders")
	purchaseOrders.POST("", cfg.Purchasing.Create)
	purchaseOrders.GET("", cfg.Purchasing.List)
	purchaseOrders.GET("/:id", cfg.Purchasing.Get)
	purchaseOrders.POST("/:id/receive", cfg.Purchasing.Receive)
	purchaseOrders.GET("/:id/receipts", cfg.Purchasing.ListReceipts)

	shops := api.Group("/shops/:id")
	shops.GET("/stock", cfg.Inventory.ShopStock)
	shops.GET("/stock/expiring", cfg.Inventory.ExpiringSoon)
	shops.GET("/products/:product_id/stock", cfg.Inventory.StockLevel)

	outbox := api.Group("/outbox")
	outbox.GET("/counts", cfg.Outbox.Counts)
	outbox.GET("/dead-letters", cfg.Outbox.ListDeadLetters)
	outbox.POST("/dead-letters/:id/requeue", cfg.Outbox.Requeue)
	outbox.DELETE("/dead-letters/:id", cfg.Outbox.Discard)

	return engine
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body[name] = "error"
			} else {
				body[name] = "ok"
			}
		}
		c.JSON(status, body)
	}
}
