// Package activity keeps the per-farm audit trail of mutations. Writes are
// best-effort: a failed write is logged and never reaches the caller.
package activity

import (
	"context"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type Entry struct {
	FarmID      uint
	UserID      uint
	EntityType  string
	EntityID    *uint
	Action      models.ActivityAction
	Description string
}

type Log struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewLog(db *gorm.DB, log logrus.FieldLogger) *Log {
	return &Log{db: db, log: log.WithField("module", "activity")}
}

func (l *Log) Record(ctx context.Context, e Entry) {
	row := models.ActivityLog{
		FarmID:      e.FarmID,
		UserID:      e.UserID,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
	}

	var user models.User
	if err := l.db.WithContext(ctx).Select("name").First(&user, e.UserID).Error; err == nil {
		row.UserName = user.Name
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		logging.LogWarn(l.log, "activity", "Record", "activity log write failed", e, err)
	}
}

type ListOptions struct {
	EntityType string
	Limit      int
	Offset     int
}

// List returns the farm's activity newest first. Limit defaults to 50 and
// is capped at 100.
func (l *Log) List(ctx context.Context, farmID uint, opts ListOptions) ([]models.ActivityLog, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := max(opts.Offset, 0)

	q := l.db.WithContext(ctx).Where("farm_id = ?", farmID)
	if opts.EntityType != "" {
		q = q.Where("entity_type = ?", opts.EntityType)
	}

	var rows []models.ActivityLog
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch activity log")
	}
	return rows, nil
}
