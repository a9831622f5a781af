package order

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
)

// TxRepositories is the repository view available inside one transaction.
// Everything obtained from it, including the outbox writer, runs against
// the same database transaction.
type TxRepositories interface {
	Orders() order.Repository
	Inventory() inventory.Repository
	Events() shared.OutboxWriter
}

// TransactionScope runs a function inside a single database transaction.
// A nil return commits; any error rolls everything back, stock deductions
// and outbox rows included.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TxRepositories) error) error
}
