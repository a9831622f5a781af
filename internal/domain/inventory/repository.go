package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for inventory records.
//
// FindAllocatableForUpdate and FindBatchForUpdate must be called on a
// repository bound to an open transaction; they take row-level locks that
// hold until that transaction commits or rolls back. This is the locking
// discipline that prevents two concurrent orders from both reading the same
// batch quantity before either decrements it.
type Repository interface {
	// FindAllocatableForUpdate fetches all records with quantity > 0 for the
	// product and shop, row-locked, in FEFO order (undated batches last).
	FindAllocatableForUpdate(ctx context.Context, productID, shopID uuid.UUID) ([]*InventoryRecord, error)

	// FindBatchForUpdate fetches the record for one batch, row-locked.
	// Returns shared.ErrNotFound when the batch does not exist yet.
	FindBatchForUpdate(ctx context.Context, productID, shopID uuid.UUID, batchNo string) (*InventoryRecord, error)

	// Save persists a new or updated record
	Save(ctx context.Context, record *InventoryRecord) error

	// SaveAll persists multiple records
	SaveAll(ctx context.Context, records []*InventoryRecord) error

	// TotalOnHand returns the summed quantity across all batches
	TotalOnHand(ctx context.Context, productID, shopID uuid.UUID) (int64, error)

	// FindByShop lists records for a shop, optionally filtered by product
	FindByShop(ctx context.Context, shopID uuid.UUID, productID *uuid.UUID) ([]*InventoryRecord, error)

	// FindExpiringSoon lists non-empty batches expiring within the given days
	FindExpiringSoon(ctx context.Context, shopID uuid.UUID, withinDays int) ([]*InventoryRecord, error)
}
