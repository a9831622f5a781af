package purchase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/partner"
	"github.com/pharmacy/backend/internal/domain/purchase"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	orders   map[uuid.UUID]*purchase.PurchaseOrder
	receipts map[uuid.UUID]*purchase.GoodsReceiptNote
	records  map[string]*inventory.InventoryRecord
	events   []shared.DomainEvent
	poSeq    int
	grnSeq   int
}

func batchKey(productID, shopID uuid.UUID, batchNo string) string {
	return productID.String() + "|" + shopID.String() + "|" + batchNo
}

type memPurchaseOrders struct{ store *memStore }

func (r *memPurchaseOrders) Create(_ context.Context, po *purchase.PurchaseOrder) error {
	r.store.orders[po.ID] = po
	return nil
}

func (r *memPurchaseOrders) Update(_ context.Context, po *purchase.PurchaseOrder) error {
	if _, ok := r.store.orders[po.ID]; !ok {
		return shared.ErrNotFound
	}
	po.IncrementVersion()
	r.store.orders[po.ID] = po
	return nil
}

func (r *memPurchaseOrders) FindByID(_ context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	po, ok := r.store.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return po, nil
}

func (r *memPurchaseOrders) List(_ context.Context, _ shared.Filter) (*shared.Paginated[purchase.PurchaseOrder], error) {
	items := make([]purchase.PurchaseOrder, 0, len(r.store.orders))
	for _, po := range r.store.orders {
		items = append(items, *po)
	}
	page := shared.NewPaginated(items, int64(len(items)), 1, 20)
	return &page, nil
}

func (r *memPurchaseOrders) NextOrderNumber(_ context.Context) (string, error) {
	r.store.poSeq++
	return fmt.Sprintf("PO-%04d", r.store.poSeq), nil
}

type memReceipts struct{ store *memStore }

func (r *memReceipts) Create(_ context.Context, note *purchase.GoodsReceiptNote) error {
	r.store.receipts[note.ID] = note
	return nil
}

func (r *memReceipts) FindByID(_ context.Context, id uuid.UUID) (*purchase.GoodsReceiptNote, error) {
	note, ok := r.store.receipts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return note, nil
}

func (r *memReceipts) FindByPurchaseOrderID(_ context.Context, poID uuid.UUID) ([]*purchase.GoodsReceiptNote, error) {
	var out []*purchase.GoodsReceiptNote
	for _, note := range r.store.receipts {
		if note.PurchaseOrderID == poID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (r *memReceipts) NextNoteNumber(_ context.Context) (string, error) {
	r.store.grnSeq++
	return fmt.Sprintf("GRN-%04d", r.store.grnSeq), nil
}

type memInventory struct{ store *memStore }

func (r *memInventory) FindAllocatableForUpdate(_ context.Context, productID, shopID uuid.UUID) ([]*inventory.InventoryRecord, error) {
	var out []*inventory.InventoryRecord
	for _, rec := range r.store.records {
		if rec.ProductID == productID && rec.ShopID == shopID && rec.HasStock() {
			out = append(out, rec)
		}
	}
	inventory.SortFEFO(out)
	return out, nil
}

func (r *memInventory) FindBatchForUpdate(_ context.Context, productID, shopID uuid.UUID, batchNo string) (*inventory.InventoryRecord, error) {
	rec, ok := r.store.records[batchKey(productID, shopID, batchNo)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

func (r *memInventory) Save(_ context.Context, rec *inventory.InventoryRecord) error {
	r.store.records[batchKey(rec.ProductID, rec.ShopID, rec.BatchNo)] = rec
	return nil
}

func (r *memInventory) SaveAll(ctx context.Context, recs []*inventory.InventoryRecord) error {
	for _, rec := range recs {
		if err := r.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *memInventory) TotalOnHand(_ context.Context, productID, shopID uuid.UUID) (int64, error) {
	var total int64
	for _, rec := range r.store.records {
		if rec.ProductID == productID && rec.ShopID == shopID {
			total += rec.Quantity
		}
	}
	return total, nil
}

func (r *memInventory) FindByShop(_ context.Context, shopID uuid.UUID, productID *uuid.UUID) ([]*inventory.InventoryRecord, error) {
	var out []*inventory.InventoryRecord
	for _, rec := range r.store.records {
		if rec.ShopID != shopID {
			continue
		}
		if productID != nil && rec.ProductID != *productID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memInventory) FindExpiringSoon(_ context.Context, shopID uuid.UUID, withinDays int) ([]*inventory.InventoryRecord, error) {
	var out []*inventory.InventoryRecord
	for _, rec := range r.store.records {
		if rec.ShopID == shopID && rec.HasStock() && rec.WillExpireWithin(time.Duration(withinDays)*24*time.Hour) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memOutbox struct{ store *memStore }

func (w *memOutbox) Append(_ context.Context, events ...shared.DomainEvent) error {
	w.store.events = append(w.store.events, events...)
	return nil
}

type memScope struct{ store *memStore }

func (s *memScope) Execute(_ context.Context, fn func(repos TxRepositories) error) error {
	recSnap := make(map[string]inventory.InventoryRecord, len(s.store.records))
	for k, v := range s.store.records {
		recSnap[k] = *v
	}
	poIDs := make(map[uuid.UUID]struct{}, len(s.store.orders))
	for id := range s.store.orders {
		poIDs[id] = struct{}{}
	}
	grnIDs := make(map[uuid.UUID]struct{}, len(s.store.receipts))
	for id := range s.store.receipts {
		grnIDs[id] = struct{}{}
	}
	eventCount := len(s.store.events)

	err := fn(&memTxRepos{store: s.store})
	if err != nil {
		for k := range s.store.records {
			if snap, ok := recSnap[k]; ok {
				restored := snap
				s.store.records[k] = &restored
			} else {
				delete(s.store.records, k)
			}
		}
		for id := range s.store.orders {
			if _, ok := poIDs[id]; !ok {
				delete(s.store.orders, id)
			}
		}
		for id := range s.store.receipts {
			if _, ok := grnIDs[id]; !ok {
				delete(s.store.receipts, id)
			}
		}
		s.store.events = s.store.events[:eventCount]
	}
	return err
}

type memTxRepos struct{ store *memStore }

func (r *memTxRepos) PurchaseOrders() purchase.Repository             { return &memPurchaseOrders{store: r.store} }
func (r *memTxRepos) GoodsReceipts() purchase.GoodsReceiptRepository { return &memReceipts{store: r.store} }
func (r *memTxRepos) Inventory() inventory.Repository                { return &memInventory{store: r.store} }
func (r *memTxRepos) Events() shared.OutboxWriter                    { return &memOutbox{store: r.store} }

type memProducts struct{ items map[uuid.UUID]*catalog.Product }

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}
func (r *memProducts) Save(_ context.Context, p *catalog.Product) error {
	r.items[p.ID] = p
	return nil
}

type memVendors struct{ items map[uuid.UUID]*partner.Vendor }

func (r *memVendors) FindByID(_ context.Context, id uuid.UUID) (*partner.Vendor, error) {
	v, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return v, nil
}
func (r *memVendors) Save(_ context.Context, v *partner.Vendor) error {
	r.items[v.ID] = v
	return nil
}

type memShops struct{ items map[uuid.UUID]*partner.Shop }

func (r *memShops) FindByID(_ context.Context, id uuid.UUID) (*partner.Shop, error) {
	sh, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return sh, nil
}
func (r *memShops) Save(_ context.Context, sh *partner.Shop) error {
	r.items[sh.ID] = sh
	return nil
}

type memCache struct {
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.data[key]
	return data, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, response []byte, _ time.Duration) error {
	c.data[key] = response
	return nil
}

func (c *memCache) Close() error { return nil }

type capturePublisher struct{ published []shared.DomainEvent }

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.published = append(p.published, events...)
	return nil
}

type fixture struct {
	service *Service
	store   *memStore
	cache   *memCache
	vendor  *partner.Vendor
	shop    *partner.Shop
	product *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &memStore{
		orders:   make(map[uuid.UUID]*purchase.PurchaseOrder),
		receipts: make(map[uuid.UUID]*purchase.GoodsReceiptNote),
		records:  make(map[string]*inventory.InventoryRecord),
	}
	vendor, err := partner.NewVendor("MediSupply Ltd", "555-0200")
	require.NoError(t, err)
	shop, err := partner.NewShop("Main Branch", "1 High St")
	require.NoError(t, err)
	product, err := catalog.NewProduct("AMOX-500", "Amoxicillin 500mg")
	require.NoError(t, err)

	cache := &memCache{data: make(map[string][]byte)}

	svc := NewService(
		&memScope{store: store},
		&memPurchaseOrders{store: store},
		&memReceipts{store: store},
		&memProducts{items: map[uuid.UUID]*catalog.Product{product.ID: product}},
		&memVendors{items: map[uuid.UUID]*partner.Vendor{vendor.ID: vendor}},
		&memShops{items: map[uuid.UUID]*partner.Shop{shop.ID: shop}},
		cache,
		&capturePublisher{},
		shared.DefaultIdempotencyConfig(),
		zap.NewNop(),
	)

	return &fixture{service: svc, store: store, cache: cache, vendor: vendor, shop: shop, product: product}
}

func (f *fixture) createPO(t *testing.T) *PurchaseOrderResult {
	t.Helper()
	result, err := f.service.Create(context.Background(), CreateCommand{
		VendorID: f.vendor.ID,
		ShopID:   f.shop.ID,
		Items: []CreateItemCommand{
			{ProductID: f.product.ID, Quantity: 100, UnitCost: decimal.NewFromFloat(6.80)},
		},
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) batchQuantity(batchNo string) int64 {
	rec, ok := f.store.records[batchKey(f.product.ID, f.shop.ID, batchNo)]
	if !ok {
		return -1
	}
	return rec.Quantity
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("places order without touching stock", func(t *testing.T) {
		f := newFixture(t)
		result := f.createPO(t)

		assert.Equal(t, "PO-0001", result.OrderNumber)
		assert.Equal(t, purchase.StatusCreated, result.Status)
		assert.Equal(t, "680", result.TotalAmount)
		assert.Empty(t, f.store.records)

		require.Len(t, f.store.events, 1)
		assert.Equal(t, purchase.EventPurchaseOrderCreated, f.store.events[0].EventType())
	})

	t.Run("idempotent replay", func(t *testing.T) {
		f := newFixture(t)
		cmd := CreateCommand{
			IdempotencyKey: "po-key-1",
			VendorID:       f.vendor.ID,
			ShopID:         f.shop.ID,
			Items: []CreateItemCommand{
				{ProductID: f.product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(5)},
			},
		}
		first, err := f.service.Create(ctx, cmd)
		require.NoError(t, err)
		second, err := f.service.Create(ctx, cmd)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, f.store.orders, 1)
	})

	t.Run("inactive product is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.product.Deactivate()

		_, err := f.service.Create(ctx, CreateCommand{
			VendorID: f.vendor.ID,
			ShopID:   f.shop.ID,
			Items: []CreateItemCommand{
				{ProductID: f.product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(5)},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "BAD_REQUEST", domainErr.Code)
		assert.Empty(t, f.store.orders)
	})

	t.Run("inactive shop is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.shop.Active = false

		_, err := f.service.Create(ctx, CreateCommand{
			VendorID: f.vendor.ID,
			ShopID:   f.shop.ID,
			Items: []CreateItemCommand{
				{ProductID: f.product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(5)},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "BAD_REQUEST", domainErr.Code)
		assert.Empty(t, f.store.orders)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, CreateCommand{
			VendorID: uuid.New(),
			ShopID:   f.shop.ID,
			Items: []CreateItemCommand{
				{ProductID: f.product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(5)},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "BAD_REQUEST", domainErr.Code)
	})
}

func TestServiceReceive(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().AddDate(1, 0, 0)

	receiveCmd := func(f *fixture, poID uuid.UUID, key string) ReceiveCommand {
		return ReceiveCommand{
			IdempotencyKey:  key,
			PurchaseOrderID: poID,
			Items: []ReceiveItemCommand{
				{ProductID: f.product.ID, BatchNo: "B2026-09", Quantity: 100, UnitCost: decimal.NewFromFloat(6.80), ExpiryDate: &expiry},
			},
		}
	}

	t.Run("creates batch stock and marks the order received", func(t *testing.T) {
		f := newFixture(t)
		po := f.createPO(t)

		result, err := f.service.Receive(ctx, receiveCmd(f, po.ID, ""))
		require.NoError(t, err)

		assert.Equal(t, "GRN-0001", result.NoteNumber)
		assert.Equal(t, int64(100), f.batchQuantity("B2026-09"))

		stored := f.store.orders[po.ID]
		assert.Equal(t, purchase.StatusReceived, stored.Status)

		types := make([]string, 0, len(f.store.events))
		for _, e := range f.store.events {
			types = append(types, e.EventType())
		}
		assert.Contains(t, types, purchase.EventGoodsReceiptCreated)
		assert.Contains(t, types, purchase.EventPurchaseOrderStatusUpdated)
	})

	t.Run("receiving an existing batch increments it", func(t *testing.T) {
		f := newFixture(t)
		rec, err := inventory.NewInventoryRecord(f.product.ID, f.shop.ID, "B2026-09", 40, &expiry)
		require.NoError(t, err)
		f.store.records[batchKey(f.product.ID, f.shop.ID, "B2026-09")] = rec

		po := f.createPO(t)
		_, err = f.service.Receive(ctx, receiveCmd(f, po.ID, ""))
		require.NoError(t, err)

		assert.Equal(t, int64(140), f.batchQuantity("B2026-09"))
		assert.Len(t, f.store.records, 1, "same batch must not fork a second record")
	})

	t.Run("receipt without a batch number lands on the unbatched row", func(t *testing.T) {
		f := newFixture(t)
		po := f.createPO(t)

		result, err := f.service.Receive(ctx, ReceiveCommand{
			PurchaseOrderID: po.ID,
			Items: []ReceiveItemCommand{
				{ProductID: f.product.ID, BatchNo: "", Quantity: 100, UnitCost: decimal.NewFromFloat(6.80)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "GRN-0001", result.NoteNumber)
		assert.Equal(t, int64(100), f.batchQuantity(""))
	})

	t.Run("unbatched receipt increments the existing unbatched row", func(t *testing.T) {
		f := newFixture(t)
		rec, err := inventory.NewInventoryRecord(f.product.ID, f.shop.ID, "", 40, nil)
		require.NoError(t, err)
		f.store.records[batchKey(f.product.ID, f.shop.ID, "")] = rec

		po := f.createPO(t)
		_, err = f.service.Receive(ctx, ReceiveCommand{
			PurchaseOrderID: po.ID,
			Items: []ReceiveItemCommand{
				{ProductID: f.product.ID, BatchNo: "", Quantity: 100, UnitCost: decimal.NewFromFloat(6.80)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(140), f.batchQuantity(""))
		assert.Len(t, f.store.records, 1, "unbatched stock must stay on a single row")
	})

	t.Run("idempotent replay does not double stock", func(t *testing.T) {
		f := newFixture(t)
		po := f.createPO(t)

		first, err := f.service.Receive(ctx, receiveCmd(f, po.ID, "grn-key-1"))
		require.NoError(t, err)
		second, err := f.service.Receive(ctx, receiveCmd(f, po.ID, "grn-key-1"))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(100), f.batchQuantity("B2026-09"))
		assert.Len(t, f.store.receipts, 1)
	})

	t.Run("already received order is rejected and rolled back", func(t *testing.T) {
		f := newFixture(t)
		po := f.createPO(t)
		_, err := f.service.Receive(ctx, receiveCmd(f, po.ID, ""))
		require.NoError(t, err)

		_, err = f.service.Receive(ctx, receiveCmd(f, po.ID, ""))
		require.Error(t, err)
		assert.Equal(t, int64(100), f.batchQuantity("B2026-09"), "second receipt must not replenish")
		assert.Len(t, f.store.receipts, 1)
	})

	t.Run("unknown purchase order", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Receive(ctx, receiveCmd(f, uuid.New(), ""))
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("empty receipt", func(t *testing.T) {
		f := newFixture(t)
		po := f.createPO(t)
		_, err := f.service.Receive(ctx, ReceiveCommand{PurchaseOrderID: po.ID})
		assert.Error(t, err)
	})
}
