package order

import (
	"context"
	"encoding/json"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/partner"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates order placement and status transitions. Placement is
// the hot path: idempotency check, existence validation, then a single
// transaction covering FEFO stock deduction, order insert and outbox append.
type Service struct {
	scope     TransactionScope
	orders    order.Repository
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	shops     partner.ShopRepository
	allocator *inventory.Allocator
	cache     shared.IdempotencyCache
	publisher shared.EventPublisher
	idemCfg   shared.IdempotencyConfig
	logger    *zap.Logger
}

// NewService creates a new order service
func NewService(
	scope TransactionScope,
	orders order.Repository,
	products catalog.ProductRepository,
	customers partner.CustomerRepository,
	shops partner.ShopRepository,
	cache shared.IdempotencyCache,
	publisher shared.EventPublisher,
	idemCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:     scope,
		orders:    orders,
		products:  products,
		customers: customers,
		shops:     shops,
		allocator: inventory.NewAllocator(),
		cache:     cache,
		publisher: publisher,
		idemCfg:   idemCfg,
		logger:    logger,
	}
}

// Create places an order. With an idempotency key, a repeated call within
// the cache TTL returns the original response without touching stock.
func (s *Service) Create(ctx context.Context, cmd CreateOrderCommand) (*OrderResult, error) {
	if cached, ok := s.lookupCached(ctx, cmd.IdempotencyKey); ok {
		return cached, nil
	}

	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order must contain at least one item")
	}

	customer, err := s.customers.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Customer not found")
	}
	if !customer.Active {
		return nil, shared.NewDomainError("BAD_REQUEST", "Customer is inactive")
	}
	shop, err := s.shops.FindByID(ctx, cmd.ShopID)
	if err != nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Shop not found")
	}
	if !shop.Active {
		return nil, shared.NewDomainError("BAD_REQUEST", "Shop is inactive")
	}
	productNames := make(map[uuid.UUID]string, len(cmd.Items))
	for _, item := range cmd.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("BAD_REQUEST", "Product not found")
		}
		if !product.Active {
			return nil, shared.NewDomainError("BAD_REQUEST", "Product is inactive")
		}
		productNames[item.ProductID] = product.Name
	}

	var placed *order.Order
	err = s.scope.Execute(ctx, func(repos TxRepositories) error {
		orderNumber, err := repos.Orders().NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		o, err := order.NewOrder(orderNumber, cmd.CustomerID, customer.Name, cmd.ShopID)
		if err != nil {
			return err
		}

		for _, item := range cmd.Items {
			records, err := repos.Inventory().FindAllocatableForUpdate(ctx, item.ProductID, cmd.ShopID)
			if err != nil {
				return err
			}
			allocations, err := s.allocator.Allocate(records, item.Quantity)
			if err != nil {
				return err
			}
			touched := make([]*inventory.InventoryRecord, 0, len(allocations))
			for _, alloc := range allocations {
				touched = append(touched, alloc.Record)
			}
			if err := repos.Inventory().SaveAll(ctx, touched); err != nil {
				return err
			}
			if _, err := o.AddItem(item.ProductID, productNames[item.ProductID], item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}

		if err := o.Finalize(); err != nil {
			return err
		}
		if err := repos.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := repos.Events().Append(ctx, o.GetDomainEvents()...); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBestEffort(ctx, placed.GetDomainEvents())
	placed.ClearDomainEvents()

	result := toOrderResult(placed)
	s.cacheResult(ctx, cmd.IdempotencyKey, result)
	return result, nil
}

// UpdateStatus records a status transition. Any non-empty status string is
// accepted; the transition and its event commit atomically.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*OrderResult, error) {
	if cached, ok := s.lookupCached(ctx, cmd.IdempotencyKey); ok {
		return cached, nil
	}

	var updated *order.Order
	err := s.scope.Execute(ctx, func(repos TxRepositories) error {
		o, err := repos.Orders().FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if err := o.UpdateStatus(cmd.Status); err != nil {
			return err
		}
		if err := repos.Orders().Update(ctx, o); err != nil {
			return err
		}
		if err := repos.Events().Append(ctx, o.GetDomainEvents()...); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBestEffort(ctx, updated.GetDomainEvents())
	updated.ClearDomainEvents()

	result := toOrderResult(updated)
	s.cacheResult(ctx, cmd.IdempotencyKey, result)
	return result, nil
}

// GetByID retrieves an order
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*OrderResult, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResult(o), nil
}

// List retrieves orders with pagination
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderResult], error) {
	page, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]OrderResult, 0, len(page.Items))
	for i := range page.Items {
		results = append(results, *toOrderResult(&page.Items[i]))
	}
	out := shared.NewPaginated(results, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// lookupCached returns the cached response for the key if one exists.
// Cache failures are logged and treated as a miss.
func (s *Service) lookupCached(ctx context.Context, key string) (*OrderResult, bool) {
	if key == "" || s.cache == nil {
		return nil, false
	}
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency cache lookup failed, proceeding without replay protection",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	var result OrderResult
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("cached response is not decodable, re-executing",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	s.logger.Info("idempotent replay served from cache",
		zap.String("key", key), zap.String("order_number", result.OrderNumber))
	return &result, true
}

func (s *Service) cacheResult(ctx context.Context, key string, result *OrderResult) {
	if key == "" || s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to encode response for idempotency cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.idemCfg.TTL); err != nil {
		s.logger.Warn("failed to cache idempotent response",
			zap.String("key", key), zap.Error(err))
	}
}

// publishBestEffort pushes events to the broker right after commit. Failures
// are only logged; the outbox relay owns delivery.
func (s *Service) publishBestEffort(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("post-commit event publish failed, relay will retry",
			zap.Int("events", len(events)), zap.Error(err))
	}
}
