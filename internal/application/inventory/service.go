package inventory

import (
	"context"
	"time"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockBatch is one batch-level stock line in query responses
type StockBatch struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"productId"`
	ShopID     uuid.UUID  `json:"shopId"`
	BatchNo    string     `json:"batchNo"`
	Quantity   int64      `json:"quantity"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// StockLevel is the summed availability of a product at a shop
type StockLevel struct {
	ProductID uuid.UUID    `json:"productId"`
	ShopID    uuid.UUID    `json:"shopId"`
	OnHand    int64        `json:"onHand"`
	Batches   []StockBatch `json:"batches"`
}

// Service answers stock queries. It is read-only; all stock movement goes
// through the order and purchase services.
type Service struct {
	records inventory.Repository
}

// NewService creates a new inventory query service
func NewService(records inventory.Repository) *Service {
	return &Service{records: records}
}

// StockLevel returns the total on-hand quantity and batch breakdown for a
// product at a shop, batches in FEFO order.
func (s *Service) StockLevel(ctx context.Context, productID, shopID uuid.UUID) (*StockLevel, error) {
	records, err := s.records.FindByShop(ctx, shopID, &productID)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(records)

	level := &StockLevel{ProductID: productID, ShopID: shopID, Batches: make([]StockBatch, 0, len(records))}
	for _, rec := range records {
		level.OnHand += rec.Quantity
		level.Batches = append(level.Batches, toStockBatch(rec))
	}
	return level, nil
}

// ShopStock lists every batch held at a shop
func (s *Service) ShopStock(ctx context.Context, shopID uuid.UUID) ([]StockBatch, error) {
	records, err := s.records.FindByShop(ctx, shopID, nil)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(records)
	return toStockBatches(records), nil
}

// ExpiringSoon lists non-empty batches at a shop expiring within the given
// number of days, soonest first.
func (s *Service) ExpiringSoon(ctx context.Context, shopID uuid.UUID, withinDays int) ([]StockBatch, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	records, err := s.records.FindExpiringSoon(ctx, shopID, withinDays)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(records)
	return toStockBatches(records), nil
}

func toStockBatch(rec *inventory.InventoryRecord) StockBatch {
	return StockBatch{
		ID:         rec.ID,
		ProductID:  rec.ProductID,
		ShopID:     rec.ShopID,
		BatchNo:    rec.BatchNo,
		Quantity:   rec.Quantity,
		ExpiryDate: rec.ExpiryDate,
	}
}

func toStockBatches(records []*inventory.InventoryRecord) []StockBatch {
	out := make([]StockBatch, 0, len(records))
	for _, rec := range records {
		out = append(out, toStockBatch(rec))
	}
	return out
}
