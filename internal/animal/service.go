// Package animal keeps per-farm livestock counts.
package animal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	activity *activity.Log
}

func NewService(db *gorm.DB, act *activity.Log) *Service {
	return &Service{db: db, activity: act}
}

func (s *Service) List(ctx context.Context, farmID uint) ([]models.Animal, error) {
	animals := []models.Animal{}
	if err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("type, id").Find(&animals).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch animals")
	}
	return animals, nil
}

type CreateRequest struct {
	Type         string   `json:"type"`
	Count        *int     `json:"count" validate:"omitempty,gte=0"`
	FeedPerDay   *float64 `json:"feed_per_day" validate:"omitempty,gte=0"`
	Productivity *float64 `json:"productivity" validate:"omitempty,gte=0"`
	Notes        *string  `json:"notes"`
}

func (s *Service) Create(ctx context.Context, userID, farmID uint, req CreateRequest) (*models.Animal, error) {
	kind := strings.TrimSpace(req.Type)
	if kind == "" || req.Count == nil || req.FeedPerDay == nil || req.Productivity == nil {
		return nil, apperr.Validation("Type, count, feed per day, and productivity are required")
	}

	row := models.Animal{
		FarmID:       farmID,
		Type:         kind,
		Count:        *req.Count,
		FeedPerDay:   *req.FeedPerDay,
		Productivity: *req.Productivity,
		Notes:        httpx.TrimmedString(httpx.Optional[string]{Set: true, Value: req.Notes}),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create animal entry")
	}

	s.record(ctx, userID, &row, models.ActivityCreate, fmt.Sprintf("Added %d %s", row.Count, row.Type))
	return &row, nil
}

type UpdateRequest struct {
	Type         httpx.Optional[string]  `json:"type"`
	Count        httpx.Optional[int]     `json:"count"`
	FeedPerDay   httpx.Optional[float64] `json:"feed_per_day"`
	Productivity httpx.Optional[float64] `json:"productivity"`
	Notes        httpx.Optional[string]  `json:"notes"`
}

func (r UpdateRequest) columns() (map[string]any, error) {
	cols := map[string]any{}
	if r.Type.Set {
		v := httpx.TrimmedString(r.Type)
		if v == nil {
			return nil, apperr.Validation("Type cannot be empty")
		}
		cols["type"] = *v
	}
	if r.Count.Set {
		if r.Count.Value == nil || *r.Count.Value < 0 {
			return nil, apperr.Validation("Count must be zero or more")
		}
		cols["count"] = *r.Count.Value
	}
	for col, opt := range map[string]httpx.Optional[float64]{
		"feed_per_day": r.FeedPerDay,
		"productivity": r.Productivity,
	} {
		if !opt.Set {
			continue
		}
		if opt.Value == nil || *opt.Value < 0 {
			return nil, apperr.Validation("%s must be zero or more", col)
		}
		cols[col] = *opt.Value
	}
	if r.Notes.Set {
		cols["notes"] = httpx.TrimmedString(r.Notes)
	}
	if len(cols) == 0 {
		return nil, apperr.Validation("No updates provided")
	}
	return cols, nil
}

func (s *Service) find(tx *gorm.DB, farmID, id uint) (*models.Animal, error) {
	var row models.Animal
	err := tx.Where("farm_id = ?", farmID).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Animal not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch animal")
	}
	return &row, nil
}

func (s *Service) Update(ctx context.Context, userID, farmID, id uint, req UpdateRequest) (*models.Animal, error) {
	cols, err := req.columns()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	row, err := s.find(db, farmID, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Animal{ID: row.ID}).Updates(cols).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update animal")
	}
	if err := db.First(row, row.ID).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch animal")
	}

	s.record(ctx, userID, row, models.ActivityUpdate, "Updated "+row.Type)
	return row, nil
}

func (s *Service) Delete(ctx context.Context, userID, farmID, id uint) error {
	db := s.db.WithContext(ctx)
	row, err := s.find(db, farmID, id)
	if err != nil {
		return err
	}
	if err := db.Delete(&models.Animal{}, row.ID).Error; err != nil {
		return apperr.Internal(err, "Failed to delete animal")
	}

	s.record(ctx, userID, row, models.ActivityDelete, "Removed "+row.Type)
	return nil
}

func (s *Service) record(ctx context.Context, userID uint, row *models.Animal, action models.ActivityAction, desc string) {
	s.activity.Record(ctx, activity.Entry{
		FarmID:      row.FarmID,
		UserID:      userID,
		EntityType:  "animal",
		EntityID:    &row.ID,
		Action:      action,
		Description: desc,
	})
}
