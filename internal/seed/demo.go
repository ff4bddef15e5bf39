// Package seed loads a demo account with one populated farm.
package seed

import (
	"context"

	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/equipment"
	"farmsim-backend/internal/farm"
	"farmsim-backend/internal/field"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DemoEmail    = "demo@farm.local"
	DemoPassword = "Demo1234!"
)

type Seeder struct {
	db        *gorm.DB
	accounts  *auth.Accounts
	farms     *farm.Service
	fields    *field.Service
	equipment *equipment.Service
	storage   *storage.Ledger
	log       logrus.FieldLogger
}

func NewSeeder(db *gorm.DB, accounts *auth.Accounts, farms *farm.Service, fields *field.Service,
	eq *equipment.Service, ledger *storage.Ledger, log logrus.FieldLogger) *Seeder {
	return &Seeder{
		db:        db,
		accounts:  accounts,
		farms:     farms,
		fields:    fields,
		equipment: eq,
		storage:   ledger,
		log:       log.WithField("module", "seed"),
	}
}

// Demo creates the demo user and farm through the same services the API
// uses. It does nothing when the demo user already exists.
func (s *Seeder) Demo(ctx context.Context) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", DemoEmail).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		s.log.Info("demo data already present")
		return nil
	}

	user, err := s.accounts.Register(ctx, "Demo Farmer", DemoEmail, DemoPassword)
	if err != nil {
		return err
	}

	funds := decimal.NewFromInt(100000)
	f, err := s.farms.Create(ctx, user.ID, farm.CreateRequest{Name: "Elm Farm", MapName: "Suffolk", StartingFunds: &funds})
	if err != nil {
		return err
	}

	fields := []field.CreateRequest{
		{FieldNumber: 1, Name: "Top Meadow", SizeHectares: ptr(4.2), CurrentCrop: ptr("grass"), GrowthStage: ptr("Growing")},
		{FieldNumber: 2, Name: "Long Acre", SizeHectares: ptr(7.8), CurrentCrop: ptr("wheat"), GrowthStage: ptr(models.StageSeeded)},
		{FieldNumber: 3, Name: "Brook Field", SizeHectares: ptr(3.1)},
	}
	for _, req := range fields {
		if _, err := s.fields.Create(ctx, user.ID, f.ID, req); err != nil {
			return err
		}
	}

	if _, err := s.equipment.Create(ctx, user.ID, f.ID, equipment.CreateRequest{
		Model:    "T6.180",
		Category: "Tractors",
		Brand:    "New Holland",
		UserID:   &user.ID,
	}); err != nil {
		return err
	}

	if _, err := s.storage.Add(ctx, f.ID, storage.AddRequest{CropName: "Wheat", QuantityStored: ptr(12000.0)}); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "farm_id": f.ID}).Info("demo data seeded")
	return nil
}

func ptr[T any](v T) *T { return &v }
