package calendar

import (
	"context"
	"testing"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceRollover(t *testing.T) {
	cases := []struct {
		name string
		from GameDate
		want GameDate
	}{
		{"same month", GameDate{1, 1, 1}, GameDate{1, 1, 2}},
		{"month end", GameDate{1, 1, 28}, GameDate{1, 2, 1}},
		{"year end", GameDate{1, 12, 28}, GameDate{2, 1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Advance(tc.from, 28))
		})
	}
}

func TestRetreatInvertsAdvance(t *testing.T) {
	for _, dpm := range []int{1, 28, 31} {
		for year := 1; year <= 2; year++ {
			for month := 1; month <= MonthsPerYear; month++ {
				for day := 1; day <= dpm; day++ {
					d := GameDate{year, month, day}
					back, err := Retreat(Advance(d, dpm), dpm)
					require.NoError(t, err)
					require.Equal(t, d, back, "dpm=%d", dpm)
				}
			}
		}
	}
}

func TestRetreatWraps(t *testing.T) {
	got, err := Retreat(GameDate{2, 1, 1}, 28)
	require.NoError(t, err)
	assert.Equal(t, GameDate{1, 12, 28}, got)

	got, err = Retreat(GameDate{1, 3, 1}, 28)
	require.NoError(t, err)
	assert.Equal(t, GameDate{1, 2, 28}, got)
}

func TestRetreatFloor(t *testing.T) {
	got, err := Retreat(Epoch, 28)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindOutOfRange))
	assert.Equal(t, "Cannot go before Year 1, Month 1, Day 1", err.Error())
	assert.Equal(t, Epoch, got)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(GameDate{0, 1, 1}, 28))
	assert.Error(t, Validate(GameDate{1, 13, 1}, 28))
	assert.Error(t, Validate(GameDate{1, 0, 1}, 28))
	assert.Error(t, Validate(GameDate{1, 1, 29}, 28))
	assert.Error(t, Validate(GameDate{1, 1, 0}, 28))
	assert.NoError(t, Validate(GameDate{5, 12, 28}, 28))
	assert.NoError(t, Validate(GameDate{1, 1, 29}, 30))
}

func TestServiceSteps(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	farm := testutil.CreateFarm(t, db, owner)
	svc := NewService(db)
	ctx := context.Background()

	t.Run("retreat at epoch persists nothing", func(t *testing.T) {
		_, err := svc.Retreat(ctx, farm.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindOutOfRange))

		d, err := svc.Current(ctx, farm.ID)
		require.NoError(t, err)
		assert.Equal(t, Epoch, d)
	})

	t.Run("advance across month", func(t *testing.T) {
		_, err := svc.JumpTo(ctx, farm.ID, GameDate{1, 1, 28})
		require.NoError(t, err)

		updated, err := svc.Advance(ctx, farm.ID)
		require.NoError(t, err)
		assert.Equal(t, GameDate{1, 2, 1}, Of(updated))

		var stored models.Farm
		require.NoError(t, db.First(&stored, farm.ID).Error)
		assert.Equal(t, GameDate{1, 2, 1}, Of(&stored))
	})

	t.Run("jump validation", func(t *testing.T) {
		for _, bad := range []GameDate{{0, 1, 1}, {1, 13, 1}, {1, 1, 29}} {
			_, err := svc.JumpTo(ctx, farm.ID, bad)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", bad)
		}
		d, err := svc.Current(ctx, farm.ID)
		require.NoError(t, err)
		assert.Equal(t, GameDate{1, 2, 1}, d)
	})

	t.Run("jump backwards is allowed", func(t *testing.T) {
		updated, err := svc.JumpTo(ctx, farm.ID, Epoch)
		require.NoError(t, err)
		assert.Equal(t, Epoch, Of(updated))
	})

	t.Run("unknown farm", func(t *testing.T) {
		_, err := svc.Advance(ctx, 9999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}
