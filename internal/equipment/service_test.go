package equipment

import (
	"context"
	"sync"
	"testing"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	require.NoError(t, db.Model(&farm).Updates(map[string]any{"current_month": 3, "current_day": 7}).Error)
	viewer := testutil.CreateUser(t, db, "viewer")
	testutil.AddMember(t, db, farm, viewer, models.FarmRoleViewer)

	svc := NewService(db, auth.NewFarmAccess(db), activity.NewLog(db, logging.Discard()))

	_, err := svc.Create(ctx, owner.ID, farm.ID, CreateRequest{Model: "T6.180", Brand: "New Holland"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	price := decimal.NewFromInt(145000)
	tractor, err := svc.Create(ctx, owner.ID, farm.ID, CreateRequest{
		Model:         "T6.180",
		Category:      "Tractors",
		Brand:         "New Holland",
		UserID:        &owner.ID,
		PurchasePrice: &price,
	})
	require.NoError(t, err)
	assert.True(t, tractor.Owned)
	assert.Equal(t, 100, tractor.Condition)
	require.NotNil(t, tractor.OwnerName)
	assert.Equal(t, "owner", *tractor.OwnerName)
	require.NotNil(t, tractor.PurchaseDate)
	assert.Equal(t, "Year 1, Month 3, Day 7", *tractor.PurchaseDate)

	_, err = svc.Create(ctx, owner.ID, farm.ID, CreateRequest{Model: "Rotex", Category: "Cultivators", Brand: "Amazone"})
	require.NoError(t, err)

	var purchase models.Finance
	require.NoError(t, db.Where("farm_id = ?", farm.ID).First(&purchase).Error)
	assert.Equal(t, models.FinanceExpense, purchase.Type)
	assert.Equal(t, "Equipment Purchase", purchase.Category)
	assert.Equal(t, "Purchased New Holland T6.180", purchase.Description)
	assert.Equal(t, [3]int{1, 3, 7}, [3]int{purchase.GameYear, purchase.GameMonth, purchase.GameDay})

	list, err := svc.List(ctx, farm.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cultivators", list[0].Category)
	assert.Nil(t, list[0].OwnerName)

	brands, err := svc.Brands(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amazone", "New Holland"}, brands)

	t.Run("update", func(t *testing.T) {
		_, err := svc.Update(ctx, owner.ID, tractor.ID, UpdateRequest{})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.Update(ctx, owner.ID, tractor.ID, UpdateRequest{Condition: httpx.Some(101)})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.Update(ctx, viewer.ID, tractor.ID, UpdateRequest{Condition: httpx.Some(80)})
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied))

		updated, err := svc.Update(ctx, owner.ID, tractor.ID, UpdateRequest{
			Condition: httpx.Some(80),
			UserID:    httpx.Null[uint](),
			Notes:     httpx.Some("front loader fitted"),
		})
		require.NoError(t, err)
		assert.Equal(t, 80, updated.Condition)
		assert.Nil(t, updated.UserID)
		assert.Nil(t, updated.OwnerName)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "T6.180", updated.Model)
	})

	t.Run("sell", func(t *testing.T) {
		_, err := svc.Sell(ctx, owner.ID, tractor.ID, SellRequest{})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.Sell(ctx, owner.ID, tractor.ID+100, SellRequest{SalePrice: &price})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		salePrice := decimal.RequireFromString("98000.50")
		sold, err := svc.Sell(ctx, owner.ID, tractor.ID, SellRequest{SalePrice: &salePrice})
		require.NoError(t, err)
		assert.True(t, sold.Sold)
		assert.True(t, salePrice.Equal(sold.SalePrice))
		require.NotNil(t, sold.SaleDate)
		assert.Equal(t, "Year 1, Month 3, Day 7", *sold.SaleDate)

		var income models.Finance
		require.NoError(t, db.Where("farm_id = ? AND type = ?", farm.ID, models.FinanceIncome).First(&income).Error)
		assert.Equal(t, "Equipment Sale", income.Category)
		assert.True(t, salePrice.Equal(income.Amount))

		_, err = svc.Sell(ctx, owner.ID, tractor.ID, SellRequest{SalePrice: &salePrice})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestSellConcurrent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	svc := NewService(db, auth.NewFarmAccess(db), activity.NewLog(db, logging.Discard()))

	combine, err := svc.Create(ctx, owner.ID, farm.ID, CreateRequest{Model: "CR10.90", Category: "Harvesters", Brand: "New Holland"})
	require.NoError(t, err)

	price := decimal.NewFromInt(250000)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Sell(ctx, owner.ID, combine.ID, SellRequest{SalePrice: &price})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var sold int
	for err := range errs {
		if err == nil {
			sold++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindValidation), err.Error())
	}
	assert.Equal(t, 1, sold)

	var incomes int64
	require.NoError(t, db.Model(&models.Finance{}).
		Where("farm_id = ? AND category = ?", farm.ID, "Equipment Sale").
		Count(&incomes).Error)
	assert.Equal(t, int64(1), incomes)
}
