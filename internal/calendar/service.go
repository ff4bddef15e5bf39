package calendar

import (
	"context"
	"errors"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Current reads the farm's date through tx, so callers inside a
// transaction see a consistent value.
func Current(tx *gorm.DB, farmID uint) (GameDate, error) {
	var farm models.Farm
	err := tx.Select("id", "current_year", "current_month", "current_day").First(&farm, farmID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GameDate{}, apperr.NotFound("Farm not found")
	}
	if err != nil {
		return GameDate{}, apperr.Internal(err, "Failed to read farm date")
	}
	return Of(&farm), nil
}

func (s *Service) Current(ctx context.Context, farmID uint) (GameDate, error) {
	return Current(s.db.WithContext(ctx), farmID)
}

func (s *Service) Advance(ctx context.Context, farmID uint) (*models.Farm, error) {
	return s.step(ctx, farmID, func(f *models.Farm) (GameDate, error) {
		return Advance(Of(f), f.DaysPerMonth), nil
	})
}

func (s *Service) Retreat(ctx context.Context, farmID uint) (*models.Farm, error) {
	return s.step(ctx, farmID, func(f *models.Farm) (GameDate, error) {
		return Retreat(Of(f), f.DaysPerMonth)
	})
}

// JumpTo overwrites the date. Jumping backwards past recorded history is
// allowed.
func (s *Service) JumpTo(ctx context.Context, farmID uint, to GameDate) (*models.Farm, error) {
	return s.step(ctx, farmID, func(f *models.Farm) (GameDate, error) {
		if err := Validate(to, f.DaysPerMonth); err != nil {
			return GameDate{}, err
		}
		return to, nil
	})
}

// step loads the farm under a row lock, computes the next date and stores
// it. Nothing is written when next fails.
func (s *Service) step(ctx context.Context, farmID uint, next func(*models.Farm) (GameDate, error)) (*models.Farm, error) {
	var farm models.Farm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&farm, farmID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Farm not found")
		}
		if err != nil {
			return apperr.Internal(err, "Failed to load farm")
		}

		d, err := next(&farm)
		if err != nil {
			return err
		}
		Apply(&farm, d)

		if err := tx.Model(&farm).Updates(map[string]any{
			"current_year":  d.Year,
			"current_month": d.Month,
			"current_day":   d.Day,
		}).Error; err != nil {
			return apperr.Internal(err, "Failed to update farm date")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &farm, nil
}
