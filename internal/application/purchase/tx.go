package purchase

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
)

// TxRepositories is the repository view available inside one transaction
type TxRepositories interface {
	PurchaseOrders() purchase.Repository
	GoodsReceipts() purchase.GoodsReceiptRepository
	Inventory() inventory.Repository
	Events() shared.OutboxWriter
}

// TransactionScope runs a function inside a single database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}
