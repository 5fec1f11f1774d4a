package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductOption{}, &models.Warehouse{}))
	return db
}

func seedWarehouse(t *testing.T, db *gorm.DB, quantity int) uint {
	prod := models.Product{Name: "test cake"}
	require.NoError(t, db.Create(&prod).Error)
	opt := models.ProductOption{ProductID: prod.ID, Flavor: "vanilla", Weight: "250g", Price: decimal.NewFromInt(1000)}
	require.NoError(t, db.Create(&opt).Error)
	require.NoError(t, db.Create(&models.Warehouse{ProductOptionID: opt.ID, Quantity: quantity}).Error)
	return opt.ID
}

func quantityOf(t *testing.T, db *gorm.DB, optionID uint) int {
	var w models.Warehouse
	require.NoError(t, db.Where("product_option_id = ?", optionID).First(&w).Error)
	return w.Quantity
}

func TestDecrease(t *testing.T) {
	db := newTestDB(t)
	optionID := seedWarehouse(t, db, 10)
	ctx := context.Background()

	require.NoError(t, Decrease(ctx, db, optionID, 4))
	require.Equal(t, 6, quantityOf(t, db, optionID))

	require.NoError(t, Decrease(ctx, db, optionID, 6))
	require.Equal(t, 0, quantityOf(t, db, optionID))
}

func TestDecrease_RefusesGoingNegative(t *testing.T) {
	db := newTestDB(t)
	optionID := seedWarehouse(t, db, 3)
	ctx := context.Background()

	err := Decrease(ctx, db, optionID, 4)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, quantityOf(t, db, optionID))
}

func TestDecrease_UnknownOption(t *testing.T) {
	db := newTestDB(t)
	err := Decrease(context.Background(), db, 999, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestDecrease_RejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	optionID := seedWarehouse(t, db, 3)

	require.Error(t, Decrease(context.Background(), db, optionID, 0))
	require.Error(t, Decrease(context.Background(), db, optionID, -1))
	require.Equal(t, 3, quantityOf(t, db, optionID))
}

// Two buyers racing for the last unit: exactly one decrement may win.
func TestDecrease_ConcurrentSingleUnit(t *testing.T) {
	db := newTestDB(t)
	optionID := seedWarehouse(t, db, 1)
	ctx := context.Background()

	const buyers = 8
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = Decrease(ctx, db, optionID, 1)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 0, quantityOf(t, db, optionID))
}

func TestIncrease(t *testing.T) {
	db := newTestDB(t)
	optionID := seedWarehouse(t, db, 2)
	ctx := context.Background()

	require.NoError(t, Increase(ctx, db, optionID, 5))
	require.Equal(t, 7, quantityOf(t, db, optionID))

	require.ErrorIs(t, Increase(ctx, db, 999, 1), ErrWarehouseNotFound)
	require.Error(t, Increase(ctx, db, optionID, 0))
}
