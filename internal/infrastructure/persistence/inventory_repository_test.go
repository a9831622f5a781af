package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/pharmacy/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T, testModels ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(testModels...)
	require.NoError(t, err)

	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newRecord(t *testing.T, productID, shopID uuid.UUID, batchNo string, quantity int64, expiry *time.Time) *inventory.InventoryRecord {
	t.Helper()
	rec, err := inventory.NewInventoryRecord(productID, shopID, batchNo, quantity, expiry)
	require.NoError(t, err)
	return rec
}

func TestGormInventoryRepository_SaveAndTotalOnHand(t *testing.T) {
	db := setupTestDB(t, &models.InventoryRecordModel{})
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	shopID := uuid.New()
	expiry := time.Now().AddDate(0, 6, 0)

	require.NoError(t, repo.Save(ctx, newRecord(t, productID, shopID, "B-001", 30, &expiry)))
	require.NoError(t, repo.Save(ctx, newRecord(t, productID, shopID, "B-002", 20, nil)))
	require.NoError(t, repo.Save(ctx, newRecord(t, uuid.New(), shopID, "B-003", 99, nil)))

	total, err := repo.TotalOnHand(ctx, productID, shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
}

func TestGormInventoryRepository_SaveUpdatesExistingBatch(t *testing.T) {
	db := setupTestDB(t, &models.InventoryRecordModel{})
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	rec := newRecord(t, uuid.New(), uuid.New(), "B-001", 40, nil)
	require.NoError(t, repo.Save(ctx, rec))

	rec.Add(100)
	require.NoError(t, repo.Save(ctx, rec))

	total, err := repo.TotalOnHand(ctx, rec.ProductID, rec.ShopID)
	require.NoError(t, err)
	assert.Equal(t, int64(140), total)

	records, err := repo.FindByShop(ctx, rec.ShopID, &rec.ProductID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(140), records[0].Quantity)
}

func TestGormInventoryRepository_SaveAll(t *testing.T) {
	db := setupTestDB(t, &models.InventoryRecordModel{})
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	shopID := uuid.New()
	records := []*inventory.InventoryRecord{
		newRecord(t, productID, shopID, "B-001", 10, nil),
		newRecord(t, productID, shopID, "B-002", 20, nil),
	}
	require.NoError(t, repo.SaveAll(ctx, records))
	require.NoError(t, repo.SaveAll(ctx, nil))

	total, err := repo.TotalOnHand(ctx, productID, shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
}

func TestGormInventoryRepository_FindByShopOrdersByExpiry(t *testing.T) {
	db := setupTestDB(t, &models.InventoryRecordModel{})
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	shopID := uuid.New()
	near := time.Now().AddDate(0, 1, 0)
	far := time.Now().AddDate(1, 0, 0)

	require.NoError(t, repo.Save(ctx, newRecord(t, productID, shopID, "B-UNDATED", 5, nil)))
	require.NoError(t, repo.Save(ctx, newRecord(t, productID, shopID, "B-FAR", 5, &far)))
	require.NoError(t, repo.Save(ctx, newRecord(t, productID, shopID, "B-NEAR", 5, &near)))

	records, err := repo.FindByShop(ctx, shopID, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "B-NEAR", records[0].BatchNo)
	assert.Equal(t, "B-FAR", records[1].BatchNo)
	assert.Equal(t, "B-UNDATED", records[2].BatchNo)
}

func TestGormInventoryRepository_FindExpiringSoon(t *testing.T) {
	db := setupTestDB(t, &models.InventoryRecordModel{})
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	shopID := uuid.New()
	soon := time.Now().AddDate(0, 0, 10)
	later := time.Now().AddDate(0, 6, 0)

	require.NoError(t, repo.Save(ctx, newRecord(t, uuid.New(), shopID, "B-SOON", 5, &soon)))
	require.NoError(t, repo.Save(ctx, newRecord(t, uuid.New(), shopID, "B-LATER", 5, &later)))
	require.NoError(t, repo.Save(ctx, newRecord(t, uuid.New(), shopID, "B-UNDATED", 5, nil)))

	empty := newRecord(t, uuid.New(), shopID, "B-EMPTY", 5, &soon)
	empty.Deduct(5)
	require.NoError(t, repo.Save(ctx, empty))

	records, err := repo.FindExpiringSoon(ctx, shopID, 30)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B-SOON", records[0].BatchNo)
}

func TestGormInventoryRepository_FindAllocatableForUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	shopID := uuid.New()
	now := time.Now()
	nearExpiry := now.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "product_id", "shop_id", "batch_no", "quantity", "expiry_date",
	}).
		AddRow(uuid.New().String(), now, now, productID.String(), shopID.String(), "B-NEAR", int64(10), nearExpiry).
		AddRow(uuid.New().String(), now, now, productID.String(), shopID.String(), "B-UNDATED", int64(20), nil)

	mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND shop_id = \$2 AND quantity > 0 ORDER BY COALESCE\(expiry_date, '9999-12-31'\) ASC, created_at ASC FOR UPDATE`).
		WithArgs(productID, shopID).
		WillReturnRows(rows)

	records, err := repo.FindAllocatableForUpdate(ctx, productID, shopID)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "B-NEAR", records[0].BatchNo)
	assert.Equal(t, "B-UNDATED", records[1].BatchNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInventoryRepository_FindBatchForUpdate_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInventoryRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	shopID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "inventory_records" WHERE product_id = \$1 AND shop_id = \$2 AND batch_no = \$3 ORDER BY "inventory_records"\."id" LIMIT \$4 FOR UPDATE`).
		WithArgs(productID, shopID, "B-404", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindBatchForUpdate(ctx, productID, shopID, "B-404")

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
