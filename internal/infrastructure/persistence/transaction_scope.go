package persistence

import (
	"context"

	apporder "github.com/pharmacy/backend/internal/application/order"
	apppurchase "github.com/pharmacy/backend/internal/application/purchase"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// gormTxRepositories exposes repositories bound to one open transaction.
// It satisfies both application-layer TxRepositories views.
type gormTxRepositories struct {
	tx         *gorm.DB
	serializer event.Serializer
}

func (r *gormTxRepositories) Orders() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTxRepositories) PurchaseOrders() purchase.Repository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTxRepositories) GoodsReceipts() purchase.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormTxRepositories) Inventory() inventory.Repository {
	return NewGormInventoryRepository(r.tx)
}

func (r *gormTxRepositories) Events() shared.OutboxWriter {
	return event.NewTransactionalOutboxWriter(r.tx, r.serializer)
}

// GormOrderTransactionScope runs order use cases in a database transaction
type GormOrderTransactionScope struct {
	db         *gorm.DB
	serializer event.Serializer
}

// NewGormOrderTransactionScope creates a transaction scope for order use cases
func NewGormOrderTransactionScope(db *gorm.DB, serializer event.Serializer) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db, serializer: serializer}
}

// Execute runs fn inside a transaction; an error rolls everything back
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TxRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxRepositories{tx: tx, serializer: s.serializer})
	})
}

// GormPurchaseTransactionScope runs purchasing use cases in a database transaction
type GormPurchaseTransactionScope struct {
	db         *gorm.DB
	serializer event.Serializer
}

// NewGormPurchaseTransactionScope creates a transaction scope for purchasing use cases
func NewGormPurchaseTransactionScope(db *gorm.DB, serializer event.Serializer) *GormPurchaseTransactionScope {
	return &GormPurchaseTransactionScope{db: db, serializer: serializer}
}

// Execute runs fn inside a transaction; an error rolls everything back
func (s *GormPurchaseTransactionScope) Execute(ctx context.Context, fn func(repos apppurchase.TxRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxRepositories{tx: tx, serializer: s.serializer})
	})
}

var (
	_ apporder.TransactionScope    = (*GormOrderTransactionScope)(nil)
	_ apppurchase.TransactionScope = (*GormPurchaseTransactionScope)(nil)
	_ apporder.TxRepositories      = (*gormTxRepositories)(nil)
	_ apppurchase.TxRepositories   = (*gormTxRepositories)(nil)
)
