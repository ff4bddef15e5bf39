// Package testutil builds throwaway SQLite stores and fixtures for package
// tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"farmsim-backend/internal/database"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "farmsim_test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, logging.Discard()))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@farm.local", name),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateFarm makes a farm at 1/1/1 with a 28 day month and the given owner.
func CreateFarm(t *testing.T, db *gorm.DB, owner models.User) models.Farm {
	t.Helper()

	farm := models.Farm{
		Name:            "Elm Farm",
		MapName:         "Suffolk",
		Currency:        models.DefaultCurrency,
		CreatedByUserID: owner.ID,
		CurrentYear:     1,
		CurrentMonth:    1,
		CurrentDay:      1,
		DaysPerMonth:    models.DefaultDaysPerMonth,
	}
	require.NoError(t, db.Create(&farm).Error)
	AddMember(t, db, farm, owner, models.FarmRoleOwner)
	return farm
}

func AddMember(t *testing.T, db *gorm.DB, farm models.Farm, user models.User, role models.FarmRole) {
	t.Helper()
	require.NoError(t, db.Create(&models.FarmMember{FarmID: farm.ID, UserID: user.ID, Role: role}).Error)
}

func CreateField(t *testing.T, db *gorm.DB, farm models.Farm, number int, crop string) models.Field {
	t.Helper()

	field := models.Field{
		FarmID:       farm.ID,
		FieldNumber:  number,
		Name:         fmt.Sprintf("Field %d", number),
		SizeHectares: 4.5,
	}
	if crop != "" {
		field.CurrentCrop = &crop
	}
	require.NoError(t, db.Create(&field).Error)
	return field
}

func Ptr[T any](v T) *T { return &v }
