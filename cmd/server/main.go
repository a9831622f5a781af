package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	eventapp "github.com/pharmacy/backend/internal/application/event"
	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
	orderapp "github.com/pharmacy/backend/internal/application/order"
	purchaseapp "github.com/pharmacy/backend/internal/application/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/cache"
	"github.com/pharmacy/backend/internal/infrastructure/config"
	"github.com/pharmacy/backend/internal/infrastructure/event"
	"github.com/pharmacy/backend/internal/infrastructure/logger"
	"github.com/pharmacy/backend/internal/infrastructure/persistence"
	"github.com/pharmacy/backend/internal/interfaces/http/handler"
	"github.com/pharmacy/backend/internal/interfaces/http/middleware"
	"github.com/pharmacy/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	goodsReceiptRepo := persistence.NewGormGoodsReceiptRepository(db.DB)

	// Outbox plumbing: events written in the same transaction as the
	// mutation, relayed to Redis streams in the background.
	serializer := event.NewJSONSerializer()
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	dlqRepo := event.NewGormOutboxDlqRepository(db.DB)
	publisher := event.NewRedisStreamPublisher(redisClient, serializer, log)

	if cfg.Outbox.RelayEnabled {
		relay := event.NewRelay(outboxRepo, publisher, event.RelayConfig{
			BatchSize:        cfg.Outbox.BatchSize,
			PollInterval:     cfg.Outbox.PollInterval,
			CleanupEnabled:   cfg.Outbox.CleanupEnabled,
			CleanupInterval:  cfg.Outbox.CleanupInterval,
			CleanupRetention: cfg.Outbox.CleanupRetention,
		}, log)
		if err := relay.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox relay", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := relay.Stop(ctx); err != nil {
				log.Error("Error stopping outbox relay", zap.Error(err))
			}
		}()
		log.Info("Outbox relay started",
			zap.Int("batch_size", cfg.Outbox.BatchSize),
			zap.Duration("poll_interval", cfg.Outbox.PollInterval),
		)
	}

	idemCache := cache.NewRedisIdempotencyCacheWithClient(redisClient, cfg.Idempotency.KeyPrefix)
	idemCfg := shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL}

	orderScope := persistence.NewGormOrderTransactionScope(db.DB, serializer)
	purchaseScope := persistence.NewGormPurchaseTransactionScope(db.DB, serializer)

	// Application services
	orderService := orderapp.NewService(
		orderScope, orderRepo, productRepo, customerRepo, shopRepo,
		idemCache, publisher, idemCfg, log,
	)
	purchaseService := purchaseapp.NewService(
		purchaseScope, purchaseOrderRepo, goodsReceiptRepo, productRepo,
		vendorRepo, shopRepo, idemCache, publisher, idemCfg, log,
	)
	inventoryService := inventoryapp.NewService(inventoryRepo)
	eventService := eventapp.NewService(outboxRepo, dlqRepo, publisher, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.New(router.Config{
		Logger:     log,
		Orders:     handler.NewOrderHandler(orderService),
		Purchasing: handler.NewPurchaseHandler(purchaseService),
		Inventory:  handler.NewInventoryHandler(inventoryService),
		Outbox:     handler.NewOutboxHandler(eventService),
		HealthChecks: map[string]router.HealthCheck{
			"database": func(context.Context) error { return db.Ping() },
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
