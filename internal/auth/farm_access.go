package auth

import (
	"context"
	"errors"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/models"

	"gorm.io/gorm"
)

// FarmAccess resolves a user's role on a farm.
type FarmAccess struct {
	db *gorm.DB
}

func NewFarmAccess(db *gorm.DB) *FarmAccess {
	return &FarmAccess{db: db}
}

// Role fails with PermissionDenied when the user is not a member.
func (a *FarmAccess) Role(ctx context.Context, farmID, userID uint) (models.FarmRole, error) {
	var member models.FarmMember
	err := a.db.WithContext(ctx).
		Select("role").
		Where("farm_id = ? AND user_id = ?", farmID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.PermissionDenied("You are not a member of this farm")
	}
	if err != nil {
		return "", apperr.Internal(err, "Failed to verify farm membership")
	}
	return member.Role, nil
}

// RequireEditor is Role plus a check that the role may mutate farm data.
func (a *FarmAccess) RequireEditor(ctx context.Context, farmID, userID uint) (models.FarmRole, error) {
	role, err := a.Role(ctx, farmID, userID)
	if err != nil {
		return "", err
	}
	if !role.CanEdit() {
		return role, apperr.PermissionDenied("Viewers cannot make changes to this farm")
	}
	return role, nil
}
