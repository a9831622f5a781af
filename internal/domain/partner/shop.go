package partner

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Shop is a pharmacy branch. Inventory is held per shop; every order and
// goods receipt is scoped to exactly one shop.
type Shop struct {
	shared.BaseAggregateRoot
	Name    string
	Address string
	Active  bool
}

// NewShop creates a new active shop
func NewShop(name, address string) (*Shop, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SHOP_NAME", "Shop name cannot be empty")
	}
	return &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		Active:            true,
	}, nil
}

// ShopRepository defines persistence for shops
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	Save(ctx context.Context, shop *Shop) error
}
