package inventory

import (
	"sort"

	"github.com/pharmacy/backend/internal/domain/shared"
)

// Allocation records how much was taken from one batch during an allocation
type Allocation struct {
	Record   *InventoryRecord
	Quantity int64
}

// Allocator deducts stock from batches in FEFO order (first expiring, first
// out). It is a pure domain service: the caller fetches the candidate
// records under row locks inside an open transaction, the allocator mutates
// their quantities in memory, and the caller persists them, rolling the
// whole transaction back if any item cannot be fully satisfied.
type Allocator struct{}

// NewAllocator creates a new FEFO allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate greedily deducts quantity from the records in FEFO order.
// Records without an expiry date sort after all dated records and are
// consumed last. Returns one Allocation per touched batch, or
// ErrInsufficientStock if the records cannot cover the requested quantity;
// on error the records are left unmodified.
func (a *Allocator) Allocate(records []*InventoryRecord, quantity int64) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	sorted := make([]*InventoryRecord, 0, len(records))
	for _, r := range records {
		if r.HasStock() {
			sorted = append(sorted, r)
		}
	}
	SortFEFO(sorted)

	var available int64
	for _, r := range sorted {
		available += r.Quantity
	}
	if available < quantity {
		return nil, shared.ErrInsufficientStock
	}

	allocations := make([]Allocation, 0, len(sorted))
	remaining := quantity
	for _, r := range sorted {
		if remaining == 0 {
			break
		}
		take := r.Deduct(remaining)
		if take == 0 {
			continue
		}
		remaining -= take
		allocations = append(allocations, Allocation{Record: r, Quantity: take})
	}

	return allocations, nil
}

// SortFEFO sorts records by expiry date ascending, undated batches last.
// Ties fall back to creation time so allocation order is deterministic.
func SortFEFO(records []*InventoryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		iExp, jExp := records[i].ExpiryDate, records[j].ExpiryDate
		if iExp == nil && jExp == nil {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		if iExp == nil {
			return false
		}
		if jExp == nil {
			return true
		}
		if iExp.Equal(*jExp) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return iExp.Before(*jExp)
	})
}
