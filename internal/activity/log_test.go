package activity

import (
	"context"
	"fmt"
	"testing"

	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	log := NewLog(db, logging.Discard())

	owner := testutil.CreateUser(t, db, "ann")
	farm := testutil.CreateFarm(t, db, owner)

	for i := 1; i <= 3; i++ {
		log.Record(ctx, Entry{
			FarmID:      farm.ID,
			UserID:      owner.ID,
			EntityType:  "field",
			Action:      models.ActivityUpdate,
			Description: fmt.Sprintf("update %d", i),
		})
	}
	log.Record(ctx, Entry{FarmID: farm.ID, UserID: owner.ID, EntityType: "storage", Action: models.ActivitySell, Description: "sold"})

	rows, err := log.List(ctx, farm.ID, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "sold", rows[0].Description)
	assert.Equal(t, "ann", rows[0].UserName)

	rows, err = log.List(ctx, farm.ID, ListOptions{EntityType: "field", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "update 2", rows[0].Description)
	assert.Equal(t, "update 1", rows[1].Description)
}

func TestRecordSwallowsErrors(t *testing.T) {
	db := testutil.NewDB(t)
	log := NewLog(db, logging.Discard())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, func() {
		log.Record(context.Background(), Entry{FarmID: 1, UserID: 1, Action: models.ActivityCreate})
	})
}
