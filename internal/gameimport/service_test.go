package gameimport

import (
	"context"
	"testing"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/equipment"
	"farmsim-backend/internal/field"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/storage"
	"farmsim-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	farm  models.Farm
	owner models.User
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	log := logging.Discard()
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)

	access := auth.NewFarmAccess(db)
	act := activity.NewLog(db, log)
	fields := field.NewService(db, access, storage.NewLedger(db, log), act, log)
	eq := equipment.NewService(db, access, act)
	return fixture{db: db, svc: NewService(db, fields, eq, act, log), farm: farm, owner: owner}
}

func balance(t *testing.T, db *gorm.DB, farmID uint) decimal.Decimal {
	t.Helper()
	b, err := finance.Balance(db, farmID)
	require.NoError(t, err)
	return b
}

func TestImport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateField(t, f.db, f.farm, 2, "barley")

	payload := Payload{
		Farms: []GameFarm{
			{ID: "2", Money: decimal.NewFromInt(1)},
			{ID: "1", Money: decimal.NewFromInt(85000)},
		},
		Fields: []GameField{
			{ID: "1", Name: "Top Meadow", AreaHectares: 4.2, FruitType: "wheat", GrowthState: 6, MaxGrowthState: 8, WeedState: 150, FertilizerLevel: 20},
			{ID: "2", Name: "Long Acre", AreaHectares: 7.8, FruitType: "None", GrowthState: 4, MaxGrowthState: 8},
			{ID: "x", Name: "Broken"},
		},
		Vehicles: []Vehicle{
			{Name: "Fendt 942 Vario", Type: "tractor", FarmID: "1", DamageAmount: 0.1},
			{Name: "Neighbour Truck", Type: "car", FarmID: "2"},
		},
	}

	res, err := f.svc.Import(ctx, f.owner.ID, f.farm.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FieldsCreated)
	assert.Equal(t, 1, res.FieldsUpdated)
	assert.Equal(t, 1, res.EquipmentUpdated)
	assert.True(t, res.MoneyUpdated)
	assert.Equal(t, []string{"Failed to process field Broken"}, res.Errors)

	var created models.Field
	require.NoError(t, f.db.Where("farm_id = ? AND field_number = ?", f.farm.ID, 1).First(&created).Error)
	assert.Equal(t, "Top Meadow", created.Name)
	assert.Equal(t, "wheat", *created.CurrentCrop)
	assert.Equal(t, "75", *created.GrowthStage)
	assert.Equal(t, "Medium", *created.WeedsState)
	assert.Equal(t, "Stage 1", *created.FertiliserState)

	var cleared models.Field
	require.NoError(t, f.db.Where("farm_id = ? AND field_number = ?", f.farm.ID, 2).First(&cleared).Error)
	assert.Equal(t, "Long Acre", cleared.Name)
	assert.Nil(t, cleared.CurrentCrop)
	assert.Nil(t, cleared.GrowthStage)

	var machines []models.Equipment
	require.NoError(t, f.db.Where("farm_id = ?", f.farm.ID).Find(&machines).Error)
	require.Len(t, machines, 1)
	assert.Equal(t, "Tractors", machines[0].Category)
	assert.Equal(t, "Unknown", machines[0].Brand)
	assert.Equal(t, 90, machines[0].Condition)
	assert.True(t, machines[0].Owned)

	assert.True(t, decimal.NewFromInt(85000).Equal(balance(t, f.db, f.farm.ID)))

	t.Run("second import updates in place", func(t *testing.T) {
		payload.Farms = []GameFarm{{ID: "1", Money: decimal.NewFromInt(80000)}}
		payload.Fields = payload.Fields[:1]
		payload.Vehicles[0].DamageAmount = 0.4

		res, err := f.svc.Import(ctx, f.owner.ID, f.farm.ID, payload)
		require.NoError(t, err)
		assert.Equal(t, 0, res.FieldsCreated)
		assert.Equal(t, 1, res.FieldsUpdated)
		assert.Empty(t, res.Errors)

		var count int64
		f.db.Model(&models.Equipment{}).Where("farm_id = ?", f.farm.ID).Count(&count)
		assert.Equal(t, int64(1), count)
		var tractor models.Equipment
		require.NoError(t, f.db.Where("farm_id = ?", f.farm.ID).First(&tractor).Error)
		assert.Equal(t, 60, tractor.Condition)

		assert.True(t, decimal.NewFromInt(80000).Equal(balance(t, f.db, f.farm.ID)))
		var sync models.Finance
		require.NoError(t, f.db.Where("farm_id = ? AND category = ?", f.farm.ID, "Game Sync").Order("id DESC").First(&sync).Error)
		assert.Equal(t, models.FinanceExpense, sync.Type)
		assert.True(t, decimal.NewFromInt(5000).Equal(sync.Amount))
		assert.Equal(t, "Money synced from game: £80000.00", sync.Description)
	})

	t.Run("unchanged money posts nothing", func(t *testing.T) {
		var before int64
		f.db.Model(&models.Finance{}).Where("farm_id = ?", f.farm.ID).Count(&before)

		res, err := f.svc.Import(ctx, f.owner.ID, f.farm.ID, Payload{Farms: []GameFarm{{ID: "1", Money: decimal.NewFromInt(80000)}}})
		require.NoError(t, err)
		assert.True(t, res.MoneyUpdated)

		var after int64
		f.db.Model(&models.Finance{}).Where("farm_id = ?", f.farm.ID).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("status", func(t *testing.T) {
		st, err := f.svc.Status(ctx, f.farm.ID)
		require.NoError(t, err)
		assert.NotNil(t, st.LastSyncAt)
		assert.True(t, decimal.NewFromInt(80000).Equal(st.Balance))
		assert.Equal(t, int64(2), st.TotalFields)
		assert.Equal(t, int64(1), st.TotalEquipment)
	})
}

func TestImportSkipsFieldsViewerCannotEdit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	viewer := testutil.CreateUser(t, f.db, "viewer")
	testutil.AddMember(t, f.db, f.farm, viewer, models.FarmRoleViewer)
	testutil.CreateField(t, f.db, f.farm, 1, "wheat")

	res, err := f.svc.Import(ctx, viewer.ID, f.farm.ID, Payload{
		Fields: []GameField{{ID: "1", Name: "Renamed", AreaHectares: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.FieldsUpdated)
	assert.Equal(t, []string{"Failed to process field Renamed"}, res.Errors)

	var row models.Field
	require.NoError(t, f.db.Where("farm_id = ?", f.farm.ID).First(&row).Error)
	assert.Equal(t, "Field 1", row.Name)
}

func TestStatusEmpty(t *testing.T) {
	f := setup(t)
	st, err := f.svc.Status(context.Background(), f.farm.ID)
	require.NoError(t, err)
	assert.Nil(t, st.LastSyncAt)
	assert.True(t, st.Balance.IsZero())
	assert.Zero(t, st.TotalFields)
}

func TestImportReportsMoneyFailure(t *testing.T) {
	f := setup(t)
	res, err := f.svc.Import(context.Background(), f.owner.ID, f.farm.ID+1, Payload{
		Farms: []GameFarm{{ID: "1", Money: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.False(t, res.MoneyUpdated)
	assert.Equal(t, []string{"Failed to update farm money"}, res.Errors)
}
