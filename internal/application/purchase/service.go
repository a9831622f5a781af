package purchase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/partner"
	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates procurement: placing purchase orders and receiving
// goods against them. Receiving is the inbound mirror of order placement:
// the receipt note, the batch-level stock increments, the RECEIVED
// transition and the outbox rows all commit in one transaction.
type Service struct {
	scope     TransactionScope
	orders    purchase.Repository
	receipts  purchase.GoodsReceiptRepository
	products  catalog.ProductRepository
	vendors   partner.VendorRepository
	shops     partner.ShopRepository
	cache     shared.IdempotencyCache
	publisher shared.EventPublisher
	idemCfg   shared.IdempotencyConfig
	logger    *zap.Logger
}

// NewService creates a new purchase service
func NewService(
	scope TransactionScope,
	orders purchase.Repository,
	receipts purchase.GoodsReceiptRepository,
	products catalog.ProductRepository,
	vendors partner.VendorRepository,
	shops partner.ShopRepository,
	cache shared.IdempotencyCache,
	publisher shared.EventPublisher,
	idemCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:     scope,
		orders:    orders,
		receipts:  receipts,
		products:  products,
		vendors:   vendors,
		shops:     shops,
		cache:     cache,
		publisher: publisher,
		idemCfg:   idemCfg,
		logger:    logger,
	}
}

// Create places a purchase order. No stock moves here; stock only changes
// when goods are received.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*PurchaseOrderResult, error) {
	if cached, ok := lookupCached[PurchaseOrderResult](ctx, s, cmd.IdempotencyKey); ok {
		return cached, nil
	}

	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_PURCHASE_ORDER", "Purchase order must contain at least one item")
	}

	vendor, err := s.vendors.FindByID(ctx, cmd.VendorID)
	if err != nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Vendor not found")
	}
	if !vendor.Active {
		return nil, shared.NewDomainError("BAD_REQUEST", "Vendor is inactive")
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

	var placed *purchase.PurchaseOrder
	err = s.scope.Execute(ctx, func(repos TxRepositories) error {
		orderNumber, err := repos.PurchaseOrders().NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		po, err := purchase.NewPurchaseOrder(orderNumber, cmd.VendorID, vendor.Name, cmd.ShopID)
		if err != nil {
			return err
		}
		for _, item := range cmd.Items {
			if _, err := po.AddItem(item.ProductID, productNames[item.ProductID], item.Quantity, item.UnitCost); err != nil {
				return err
			}
		}
		if err := po.Finalize(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}
		if err := repos.Events().Append(ctx, po.GetDomainEvents()...); err != nil {
			return err
		}
		placed = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBestEffort(ctx, placed.GetDomainEvents())
	placed.ClearDomainEvents()

	result := toPurchaseOrderResult(placed)
	s.cacheResult(ctx, cmd.IdempotencyKey, result)
	return result, nil
}

// Receive books goods into stock against a purchase order. Each line
// replenishes its batch: an existing (product, shop, batch) record is
// incremented under a row lock, a new batch gets a fresh record.
func (s *Service) Receive(ctx context.Context, cmd ReceiveCommand) (*GoodsReceiptResult, error) {
	if cached, ok := lookupCached[GoodsReceiptResult](ctx, s, cmd.IdempotencyKey); ok {
		return cached, nil
	}

	if len(cmd.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Goods receipt must contain at least one item")
	}

	productNames := make(map[uuid.UUID]string, len(cmd.Items))
	for _, item := range cmd.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("BAD_REQUEST", "Product not found")
		}
		productNames[item.ProductID] = product.Name
	}

	var received *purchase.GoodsReceiptNote
	var po *purchase.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos TxRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByID(ctx, cmd.PurchaseOrderID)
		if err != nil {
			return err
		}

		noteNumber, err := repos.GoodsReceipts().NextNoteNumber(ctx)
		if err != nil {
			return err
		}
		note, err := purchase.NewGoodsReceiptNote(noteNumber, po.ID, po.ShopID)
		if err != nil {
			return err
		}

		for _, item := range cmd.Items {
			if _, err := note.AddItem(item.ProductID, productNames[item.ProductID], item.BatchNo, item.Quantity, item.UnitCost, item.ExpiryDate); err != nil {
				return err
			}
			if err := s.replenishBatch(ctx, repos.Inventory(), po.ShopID, item); err != nil {
				return err
			}
		}

		if err := note.Finalize(); err != nil {
			return err
		}
		if err := repos.GoodsReceipts().Create(ctx, note); err != nil {
			return err
		}
		if err := po.MarkReceived(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Update(ctx, po); err != nil {
			return err
		}

		events := append(note.GetDomainEvents(), po.GetDomainEvents()...)
		if err := repos.Events().Append(ctx, events...); err != nil {
			return err
		}
		received = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := append(received.GetDomainEvents(), po.GetDomainEvents()...)
	s.publishBestEffort(ctx, events)
	received.ClearDomainEvents()
	po.ClearDomainEvents()

	result := toGoodsReceiptResult(received)
	s.cacheResult(ctx, cmd.IdempotencyKey, result)
	return result, nil
}

// replenishBatch increments an existing batch record or creates a new one
func (s *Service) replenishBatch(ctx context.Context, repo inventory.Repository, shopID uuid.UUID, item ReceiveItemCommand) error {
	rec, err := repo.FindBatchForUpdate(ctx, item.ProductID, shopID, item.BatchNo)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		fresh, err := inventory.NewInventoryRecord(item.ProductID, shopID, item.BatchNo, item.Quantity, item.ExpiryDate)
		if err != nil {
			return err
		}
		return repo.Save(ctx, fresh)
	}
	rec.Add(item.Quantity)
	return repo.Save(ctx, rec)
}

// GetByID retrieves a purchase order
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResult, error) {
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResult(po), nil
}

// List retrieves purchase orders with pagination
func (s *Service) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseOrderResult], error) {
	page, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]PurchaseOrderResult, 0, len(page.Items))
	for i := range page.Items {
		results = append(results, *toPurchaseOrderResult(&page.Items[i]))
	}
	out := shared.NewPaginated(results, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// GetReceipt retrieves a goods receipt note
func (s *Service) GetReceipt(ctx context.Context, id uuid.UUID) (*GoodsReceiptResult, error) {
	note, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGoodsReceiptResult(note), nil
}

// ListReceipts retrieves all receipts booked against a purchase order
func (s *Service) ListReceipts(ctx context.Context, purchaseOrderID uuid.UUID) ([]*GoodsReceiptResult, error) {
	notes, err := s.receipts.FindByPurchaseOrderID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	results := make([]*GoodsReceiptResult, 0, len(notes))
	for _, note := range notes {
		results = append(results, toGoodsReceiptResult(note))
	}
	return results, nil
}

func lookupCached[T any](ctx context.Context, s *Service, key string) (*T, bool) {
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
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("cached response is not decodable, re-executing",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	s.logger.Info("idempotent replay served from cache", zap.String("key", key))
	return &result, true
}

func (s *Service) cacheResult(ctx context.Context, key string, result any) {
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

func (s *Service) publishBestEffort(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("post-commit event publish failed, relay will retry",
			zap.Int("events", len(events)), zap.Error(err))
	}
}
