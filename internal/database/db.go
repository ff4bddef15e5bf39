package database

import (
	"fmt"
	"strings"

	"farmsim-backend/internal/config"
	"farmsim-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store selected by DB_DRIVER. The handle is passed
// explicitly to every service; there is no package-level DB.
func Open(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.WithField("driver", config.DriverPostgres).Info("database connected")
		return db, nil
	default:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{"driver": config.DriverSQLite, "path": cfg.SQLitePath}).Info("database connected")
		return db, nil
	}
}

// OpenSQLite opens a SQLite file with foreign keys enforced, so cascade
// deletes behave the same as on Postgres.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writers queued
	// in the pool instead of failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Farm{},
		&models.FarmMember{},
		&models.JoinCode{},
		&models.Field{},
		&models.FieldHistory{},
		&models.CropStorage{},
		&models.Finance{},
		&models.Equipment{},
		&models.Animal{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if err := backfillStorageUnits(db, log); err != nil {
		return err
	}

	log.Info("migration complete")
	return nil
}

// backfillStorageUnits fills storage_unit on rows imported before the column
// was mandatory. The rule matches storage.ClassifyUnit.
func backfillStorageUnits(db *gorm.DB, log logrus.FieldLogger) error {
	bales := db.Model(&models.CropStorage{}).
		Where("storage_unit IS NULL OR storage_unit = ''").
		Where("LOWER(crop_name) LIKE ? OR LOWER(crop_name) LIKE ? OR LOWER(crop_name) LIKE ? OR LOWER(crop_name) LIKE ?",
			"%grass%", "%straw%", "%hay%", "%silage%").
		Update("storage_unit", models.UnitBales)
	if bales.Error != nil {
		return fmt.Errorf("backfill bale units: %w", bales.Error)
	}

	liters := db.Model(&models.CropStorage{}).
		Where("storage_unit IS NULL OR storage_unit = ''").
		Update("storage_unit", models.UnitLiters)
	if liters.Error != nil {
		return fmt.Errorf("backfill liter units: %w", liters.Error)
	}

	if n := bales.RowsAffected + liters.RowsAffected; n > 0 {
		log.WithField("rows", n).Info("storage units backfilled")
	}
	return nil
}
