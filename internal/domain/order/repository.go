package order

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists order aggregates
type Repository interface {
	// Create inserts a new order together with its items.
	Create(ctx context.Context, o *Order) error
	// Update persists status and total changes with an optimistic version
	// check; returns shared.ErrConcurrencyConflict on a stale version.
	Update(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[Order], error)
	// NextOrderNumber returns a new unique SO-prefixed number.
	NextOrderNumber(ctx context.Context) (string, error)
}
