package inventory

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InventoryRecord is the on-hand quantity of one batch of a product in one
// shop. A record is keyed by (product, shop, batch number); the batch number
// is the empty string for unbatched stock. Quantity never goes negative.
type InventoryRecord struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	ShopID     uuid.UUID
	BatchNo    string
	Quantity   int64
	ExpiryDate *time.Time
}

// NewInventoryRecord creates a record for the first receipt of a batch
func NewInventoryRecord(productID, shopID uuid.UUID, batchNo string, quantity int64, expiryDate *time.Time) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHOP", "Shop ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return &InventoryRecord{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		ShopID:     shopID,
		BatchNo:    batchNo,
		Quantity:   quantity,
		ExpiryDate: expiryDate,
	}, nil
}

// Deduct removes up to quantity units from the batch and returns the amount
// actually taken (min of requested and available).
func (r *InventoryRecord) Deduct(quantity int64) int64 {
	take := quantity
	if take > r.Quantity {
		take = r.Quantity
	}
	r.Quantity -= take
	r.UpdatedAt = time.Now()
	return take
}

// Add increases the batch quantity (goods receipt or return)
func (r *InventoryRecord) Add(quantity int64) {
	r.Quantity += quantity
	r.UpdatedAt = time.Now()
}

// IsExpired returns true if the batch has expired
func (r *InventoryRecord) IsExpired() bool {
	if r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.Before(time.Now())
}

// WillExpireWithin returns true if the batch expires within the duration
func (r *InventoryRecord) WillExpireWithin(d time.Duration) bool {
	if r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.Before(time.Now().Add(d))
}

// HasStock returns true if the batch has available quantity
func (r *InventoryRecord) HasStock() bool {
	return r.Quantity > 0
}
