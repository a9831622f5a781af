package purchase

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists purchase order aggregates
type Repository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	// Update persists status changes with an optimistic version check;
	// returns shared.ErrConcurrencyConflict on a stale version.
	Update(ctx context.Context, po *PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	// NextOrderNumber returns a new unique PO-prefixed number.
	NextOrderNumber(ctx context.Context) (string, error)
}

// GoodsReceiptRepository persists goods receipt notes
type GoodsReceiptRepository interface {
	Create(ctx context.Context, note *GoodsReceiptNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceiptNote, error)
	FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) ([]*GoodsReceiptNote, error)
	// NextNoteNumber returns a new unique GRN-prefixed number.
	NextNoteNumber(ctx context.Context) (string, error)
}
