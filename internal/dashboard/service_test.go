package dashboard

import (
	"context"
	"testing"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	testutil.CreateField(t, db, farm, 1, "wheat")
	testutil.CreateField(t, db, farm, 2, "")
	require.NoError(t, db.Create(&models.Animal{FarmID: farm.ID, Type: "Cows", Count: 12}).Error)
	require.NoError(t, db.Create(&models.Animal{FarmID: farm.ID, Type: "Sheep", Count: 30}).Error)
	require.NoError(t, db.Create(&models.Equipment{FarmID: farm.ID, Model: "T6.180", Category: "Tractors", Brand: "New Holland", Owned: true}).Error)
	require.NoError(t, db.Create(&models.Equipment{FarmID: farm.ID, Model: "Old", Category: "Tractors", Brand: "Fendt", Sold: true}).Error)
	_, err := finance.PostAt(db, finance.Entry{FarmID: farm.ID, Type: models.FinanceIncome, Category: "x", Description: "x", Amount: decimal.NewFromInt(1000)}, calendar.Epoch)
	require.NoError(t, err)
	_, err = finance.PostAt(db, finance.Entry{FarmID: farm.ID, Type: models.FinanceExpense, Category: "x", Description: "x", Amount: decimal.NewFromInt(400)}, calendar.Epoch)
	require.NoError(t, err)

	out, err := NewService(db).Overview(context.Background(), farm.ID)
	require.NoError(t, err)
	assert.Equal(t, calendar.Epoch, out.Date)
	assert.Equal(t, int64(2), out.Fields)
	assert.Equal(t, int64(1), out.Planted)
	assert.InDelta(t, 9.0, out.Hectares, 1e-9)
	assert.Equal(t, int64(1), out.Equipment)
	assert.Equal(t, int64(42), out.Animals)
	assert.True(t, decimal.NewFromInt(600).Equal(out.Balance))

	_, err = NewService(db).Overview(context.Background(), farm.ID+1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestFinanceChart(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	require.NoError(t, db.Model(&farm).Updates(map[string]any{"current_year": 2, "current_month": 2}).Error)

	post := func(year, month int, typ models.FinanceType, amount int64) {
		_, err := finance.PostAt(db, finance.Entry{FarmID: farm.ID, Type: typ, Category: "x", Description: "x", Amount: decimal.NewFromInt(amount)},
			calendar.GameDate{Year: year, Month: month, Day: 1})
		require.NoError(t, err)
	}
	post(1, 1, models.FinanceIncome, 5000)
	post(1, 12, models.FinanceIncome, 300)
	post(1, 12, models.FinanceExpense, 100)
	post(2, 2, models.FinanceExpense, 50)

	svc := NewService(db)

	chart, err := svc.FinanceChart(ctx, farm.ID, PeriodMonthly, 3)
	require.NoError(t, err)
	require.Len(t, chart.Points, 3)
	assert.Equal(t, "Year 1, Month 12", chart.From)
	assert.Equal(t, "Year 2, Month 2", chart.To)
	assert.True(t, decimal.NewFromInt(200).Equal(chart.Points[0].Net))
	assert.True(t, chart.Points[1].Net.IsZero())
	assert.True(t, decimal.NewFromInt(-50).Equal(chart.Points[2].Net))
	assert.True(t, decimal.NewFromInt(150).Equal(chart.Totals.Net))

	chart, err = svc.FinanceChart(ctx, farm.ID, PeriodMonthly, 0)
	require.NoError(t, err)
	assert.Len(t, chart.Points, 12)

	chart, err = svc.FinanceChart(ctx, farm.ID, PeriodMonthly, 60)
	require.NoError(t, err)
	assert.Len(t, chart.Points, 14)
	assert.Equal(t, "Year 1, Month 1", chart.From)

	chart, err = svc.FinanceChart(ctx, farm.ID, PeriodYearly, 0)
	require.NoError(t, err)
	require.Len(t, chart.Points, 2)
	assert.Equal(t, "Year 1", chart.Points[0].Label)
	assert.True(t, decimal.NewFromInt(5200).Equal(chart.Points[0].Net))
	assert.True(t, decimal.NewFromInt(5150).Equal(chart.Totals.Net))

	_, err = svc.FinanceChart(ctx, farm.ID, "weekly", 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.FinanceChart(ctx, farm.ID, PeriodMonthly, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
