package farm

import (
	"context"
	"errors"
	"strings"
	"time"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	joinCodeLength = 10
	joinCodeTTL    = 7 * 24 * time.Hour
)

var now = time.Now

func newJoinCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:joinCodeLength]
}

func (s *Service) CreateJoinCode(ctx context.Context, farmID uint) (*models.JoinCode, error) {
	code := models.JoinCode{
		FarmID:    farmID,
		Code:      newJoinCode(),
		ExpiresAt: now().Add(joinCodeTTL),
	}
	if err := s.db.WithContext(ctx).Create(&code).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create join code")
	}
	return &code, nil
}

// JoinCodes lists the farm's unexpired codes, newest first.
func (s *Service) JoinCodes(ctx context.Context, farmID uint) ([]models.JoinCode, error) {
	var codes []models.JoinCode
	if err := s.db.WithContext(ctx).
		Where("farm_id = ? AND expires_at > ?", farmID, now()).
		Order("created_at DESC, id DESC").
		Find(&codes).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch join codes")
	}
	return codes, nil
}

// Join adds the user to the code's farm as a viewer. With a farm id the code
// must belong to that farm.
func (s *Service) Join(ctx context.Context, userID uint, farmID *uint, code string) (*models.Farm, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("Join code is required")
	}

	var farm models.Farm
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("code = ? AND expires_at > ?", code, now())
		if farmID != nil {
			q = q.Where("farm_id = ?", *farmID)
		}
		var jc models.JoinCode
		if err := q.First(&jc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("Invalid or expired join code")
			}
			return apperr.Internal(err, "Failed to join farm")
		}

		var existing int64
		if err := tx.Model(&models.FarmMember{}).
			Where("farm_id = ? AND user_id = ?", jc.FarmID, userID).
			Count(&existing).Error; err != nil {
			return apperr.Internal(err, "Failed to join farm")
		}
		if existing > 0 {
			return apperr.Validation("You are already a member of this farm")
		}

		if err := tx.Create(&models.FarmMember{FarmID: jc.FarmID, UserID: userID, Role: models.FarmRoleViewer}).Error; err != nil {
			return apperr.Internal(err, "Failed to join farm")
		}
		if err := tx.First(&farm, jc.FarmID).Error; err != nil {
			return apperr.Internal(err, "Failed to join farm")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &farm, nil
}
