package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderLifecycle(t *testing.T) {
	po, err := NewPurchaseOrder("PO-20260831-0001", uuid.New(), "MediSupply Ltd", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, po.Status)

	_, err = po.AddItem(uuid.New(), "Amoxicillin 500mg", 100, decimal.NewFromFloat(6.80))
	require.NoError(t, err)
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromFloat(680.00)), "got %s", po.TotalAmount)

	require.NoError(t, po.Finalize())
	events := po.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventPurchaseOrderCreated, events[0].EventType())

	po.ClearDomainEvents()
	require.NoError(t, po.MarkReceived())
	assert.Equal(t, StatusReceived, po.Status)

	events = po.GetDomainEvents()
	require.Len(t, events, 1)
	updated, ok := events[0].(*PurchaseOrderStatusUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusCreated, updated.PreviousStatus)
	assert.Equal(t, StatusReceived, updated.Status)

	t.Run("cannot be received twice", func(t *testing.T) {
		assert.Error(t, po.MarkReceived())
	})
}

func TestNewPurchaseOrderValidation(t *testing.T) {
	t.Run("missing vendor", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-20260831-0001", uuid.Nil, "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("finalize rejects empty order", func(t *testing.T) {
		po, err := NewPurchaseOrder("PO-20260831-0002", uuid.New(), "", uuid.New())
		require.NoError(t, err)
		assert.Error(t, po.Finalize())
	})
}

func TestGoodsReceiptNote(t *testing.T) {
	expiry := time.Now().AddDate(1, 0, 0)

	t.Run("valid receipt raises created event", func(t *testing.T) {
		note, err := NewGoodsReceiptNote("GRN-20260831-0001", uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = note.AddItem(uuid.New(), "Amoxicillin 500mg", "B2026-09", 100, decimal.NewFromFloat(6.80), &expiry)
		require.NoError(t, err)
		_, err = note.AddItem(uuid.New(), "Saline 0.9%", "B2027-01", 40, decimal.NewFromFloat(1.10), nil)
		require.NoError(t, err)

		require.NoError(t, note.Finalize())

		events := note.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*GoodsReceiptCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, EventGoodsReceiptCreated, created.EventType())
		require.Len(t, created.Items, 2)
		assert.Equal(t, "B2026-09", created.Items[0].BatchNo)
		assert.NotNil(t, created.Items[0].ExpiryDate)
		assert.Nil(t, created.Items[1].ExpiryDate)
	})

	t.Run("accepts an unbatched line", func(t *testing.T) {
		note, err := NewGoodsReceiptNote("GRN-20260831-0002", uuid.New(), uuid.New())
		require.NoError(t, err)
		item, err := note.AddItem(uuid.New(), "Saline 0.9%", "", 40, decimal.NewFromFloat(1.10), nil)
		require.NoError(t, err)
		assert.Equal(t, "", item.BatchNo)
	})

	t.Run("finalize rejects empty note", func(t *testing.T) {
		note, err := NewGoodsReceiptNote("GRN-20260831-0003", uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Error(t, note.Finalize())
	})
}
