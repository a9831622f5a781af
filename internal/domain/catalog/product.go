package catalog

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Product represents a sellable pharmacy product. The fulfillment core only
// needs identity and the active flag; full master-data CRUD lives outside it.
type Product struct {
	shared.BaseAggregateRoot
	SKU    string
	Name   string
	Active bool
}

// NewProduct creates a new active product
func NewProduct(sku, name string) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Active:            true,
	}, nil
}

// Deactivate marks the product as no longer sellable
func (p *Product) Deactivate() {
	p.Active = false
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
