package partner

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer is a retail or wholesale buyer
type Customer struct {
	shared.BaseAggregateRoot
	Name   string
	Phone  string
	Active bool
}

// NewCustomer creates a new active customer
func NewCustomer(name, phone string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Active:            true,
	}, nil
}

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
