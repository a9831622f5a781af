package partner

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Vendor is a supplier purchase orders are placed against
type Vendor struct {
	shared.BaseAggregateRoot
	Name   string
	Phone  string
	Active bool
}

// NewVendor creates a new active vendor
func NewVendor(name, phone string) (*Vendor, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Active:            true,
	}, nil
}

// VendorRepository defines persistence for vendors
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}
