// Package field tracks each field's crop, growth stage and production
// record, and writes the history that the rotation advisor reads.
package field

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"
	"farmsim-backend/internal/rotation"
	"farmsim-backend/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultHistoryLimit = 50
	recommendationDepth = 10
	strawCrop           = "Straw"
)

var significantStages = map[string]bool{
	models.StageHarvested:  true,
	models.StagePlowed:     true,
	models.StageCultivated: true,
	models.StageSeeded:     true,
}

type Service struct {
	db       *gorm.DB
	access   *auth.FarmAccess
	storage  *storage.Ledger
	activity *activity.Log
	log      logrus.FieldLogger
}

func NewService(db *gorm.DB, access *auth.FarmAccess, ledger *storage.Ledger, act *activity.Log, log logrus.FieldLogger) *Service {
	return &Service{
		db:       db,
		access:   access,
		storage:  ledger,
		activity: act,
		log:      log.WithField("module", "field"),
	}
}

func (s *Service) List(ctx context.Context, farmID uint) ([]models.Field, error) {
	var fields []models.Field
	if err := s.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("field_number").
		Find(&fields).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch fields")
	}
	return fields, nil
}

func (s *Service) Create(ctx context.Context, userID, farmID uint, req CreateRequest) (*models.Field, error) {
	field := models.Field{
		FarmID:          farmID,
		FieldNumber:     req.FieldNumber,
		Name:            strings.TrimSpace(req.Name),
		SizeHectares:    *req.SizeHectares,
		CurrentCrop:     trimmed(req.CurrentCrop),
		GrowthStage:     trimmed(req.GrowthStage),
		FertiliserState: trimmed(req.FertiliserState),
		WeedsState:      trimmed(req.WeedsState),
		Notes:           req.Notes,
	}
	if field.CurrentCrop == nil && field.GrowthStage != nil {
		return nil, apperr.Validation("A field without a crop cannot have a growth stage")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Field{}).
			Where("farm_id = ? AND field_number = ?", farmID, req.FieldNumber).
			Count(&count).Error; err != nil {
			return apperr.Internal(err, "Failed to create field")
		}
		if count > 0 {
			return apperr.Validation("Field %d already exists on this farm", req.FieldNumber)
		}
		if err := tx.Create(&field).Error; err != nil {
			return apperr.Internal(err, "Failed to create field")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      farmID,
		UserID:      userID,
		EntityType:  "field",
		EntityID:    &field.ID,
		Action:      models.ActivityCreate,
		Description: fmt.Sprintf("Created Field %d (%s)", field.FieldNumber, field.Name),
	})
	return &field, nil
}

// load finds the field and checks that userID may read it, or edit it when
// edit is set.
func (s *Service) load(ctx context.Context, userID, fieldID uint, edit bool) (*models.Field, error) {
	var field models.Field
	err := s.db.WithContext(ctx).First(&field, fieldID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Field not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch field")
	}

	if edit {
		_, err = s.access.RequireEditor(ctx, field.FarmID, userID)
	} else {
		_, err = s.access.Role(ctx, field.FarmID, userID)
	}
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// hook is a side effect that runs after the field update commits. Its
// failure is logged and never fails the update.
type hook struct {
	name string
	run  func(ctx context.Context) error
}

// Update applies a partial update. A growth stage change onto Harvested,
// Plowed, Cultivated or Seeded appends a history entry at the farm's game
// date; a Harvested update with a positive actual_yield is always recorded
// and posts the yield (and straw, when asked) to storage.
func (s *Service) Update(ctx context.Context, userID, fieldID uint, req UpdateRequest) (*models.Field, error) {
	cols, err := req.columns()
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, userID, fieldID, true); err != nil {
		return nil, err
	}

	var (
		field models.Field
		hooks []hook
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior models.Field
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&prior, fieldID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Field not found")
		}
		if err != nil {
			return apperr.Internal(err, "Failed to fetch field")
		}

		crop := prior.CurrentCrop
		if req.CurrentCrop.Set {
			crop = cropOf(cols)
		}
		stage := prior.GrowthStage
		if req.GrowthStage.Set {
			stage, _ = cols["growth_stage"].(*string)
		}
		if crop == nil && stage != nil {
			if req.GrowthStage.Set {
				return apperr.Validation("A field without a crop cannot have a growth stage")
			}
			cols["growth_stage"] = (*string)(nil)
			stage = nil
		}

		if ev, ok := historyEvent(&prior, req, crop, stage); ok {
			date, err := calendar.Current(tx, prior.FarmID)
			if err != nil {
				return apperr.Internal(err, "Farm missing while recording field history")
			}
			hooks = s.harvestHooks(&prior, req, ev, date)
		}

		if len(cols) > 0 {
			if err := tx.Model(&models.Field{ID: prior.ID}).Updates(cols).Error; err != nil {
				return apperr.Internal(err, "Failed to update field")
			}
		}

		if err := tx.First(&field, fieldID).Error; err != nil {
			return apperr.Internal(err, "Failed to fetch field")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, h := range hooks {
		if err := h.run(ctx); err != nil {
			logging.LogWarn(s.log, "field", h.name, fmt.Sprintf("field %d", field.ID), nil, err)
		}
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      field.FarmID,
		UserID:      userID,
		EntityType:  "field",
		EntityID:    &field.ID,
		Action:      models.ActivityUpdate,
		Description: describeUpdate(&field, req),
	})
	return &field, nil
}

type event struct {
	crop  string
	stage string
	notes *string
}

func historyEvent(prior *models.Field, req UpdateRequest, crop, stage *string) (event, bool) {
	if !req.GrowthStage.Set || stage == nil || crop == nil || !significantStages[*stage] {
		return event{}, false
	}
	changed := prior.GrowthStage == nil || *prior.GrowthStage != *stage
	if !changed && req.harvestYield() <= 0 {
		return event{}, false
	}

	ev := event{crop: *crop, stage: *stage}
	var parts []string
	if req.Notes.Value != nil && *req.Notes.Value != "" {
		parts = append(parts, *req.Notes.Value)
	}
	if y := req.harvestYield(); y > 0 {
		parts = append(parts, "Harvested: "+formatYield(y)+" L")
	}
	if len(parts) > 0 {
		notes := strings.Join(parts, " | ")
		ev.notes = &notes
	}
	return ev, true
}

// harvestHooks lists the post-commit work of a recorded transition: the
// history row first, then the storage and straw postings of a harvest.
func (s *Service) harvestHooks(f *models.Field, req UpdateRequest, ev event, date calendar.GameDate) []hook {
	farmID, fieldID, number := f.FarmID, f.ID, f.FieldNumber

	hooks := []hook{{
		name: "appendHistory",
		run: func(ctx context.Context) error {
			return s.db.WithContext(ctx).Create(&models.FieldHistory{
				FieldID:     fieldID,
				Crop:        ev.crop,
				Action:      ev.stage,
				GrowthStage: ev.stage,
				GameYear:    date.Year,
				GameMonth:   date.Month,
				GameDay:     date.Day,
				Notes:       ev.notes,
			}).Error
		},
	}}

	yield := req.harvestYield()
	if ev.stage != models.StageHarvested || yield <= 0 {
		return hooks
	}

	hooks = append(hooks, hook{
		name: "postHarvest",
		run: func(ctx context.Context) error {
			_, err := s.storage.PostHarvest(ctx, storage.Harvest{
				FarmID:   farmID,
				CropName: ev.crop,
				Yield:    yield,
				Bucket:   storage.BucketFrom(req.BaleSize, req.BaleShape),
				Note:     fmt.Sprintf("Harvested from Field %d", number),
			})
			return err
		},
	})

	if req.ProduceStraw && req.StrawYield != nil && *req.StrawYield > 0 && isStrawCrop(ev.crop) {
		hooks = append(hooks, hook{
			name: "postStraw",
			run: func(ctx context.Context) error {
				bucket := storage.BucketFrom(req.StrawBaleSize, req.StrawBaleShape)
				if bucket == nil {
					return apperr.Validation("straw bale size and shape are required")
				}
				if _, ok := bucket.Column(); !ok {
					return apperr.Validation("invalid straw bale size or shape")
				}
				_, err := s.storage.PostHarvest(ctx, storage.Harvest{
					FarmID:   farmID,
					CropName: strawCrop,
					Yield:    *req.StrawYield,
					Bucket:   bucket,
					Note:     fmt.Sprintf("Straw from %s harvest, Field %d", ev.crop, number),
				})
				return err
			},
		})
	}
	return hooks
}

// Bulk applies one patch to several fields of a farm in a single
// transaction. Every listed field landing on a significant stage gets a
// history entry for its crop; nothing is posted to storage.
func (s *Service) Bulk(ctx context.Context, userID, farmID uint, req BulkRequest) (*BulkResult, error) {
	if len(req.FieldIDs) == 0 {
		return nil, apperr.Validation("field_ids must not be empty")
	}
	cols := req.Updates.columns()
	if len(cols) == 0 {
		return nil, apperr.Validation("updates must contain at least one attribute")
	}

	var fields []models.Field
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Field{}).
			Where("farm_id = ? AND id IN ?", farmID, req.FieldIDs).
			Count(&count).Error; err != nil {
			return apperr.Internal(err, "Failed to update fields")
		}
		if int(count) != len(dedupe(req.FieldIDs)) {
			return apperr.NotFound("One or more fields not found on this farm")
		}

		date, err := calendar.Current(tx, farmID)
		if err != nil {
			return apperr.Internal(err, "Farm missing while updating fields")
		}

		if req.Updates.CurrentCrop.Set && cols["current_crop"] == (*string)(nil) && !req.Updates.GrowthStage.Set {
			cols["growth_stage"] = (*string)(nil)
		}
		if err := tx.Model(&models.Field{}).
			Where("farm_id = ? AND id IN ?", farmID, req.FieldIDs).
			Updates(cols).Error; err != nil {
			return apperr.Internal(err, "Failed to update fields")
		}

		if err := tx.Where("id IN ?", req.FieldIDs).Order("field_number").Find(&fields).Error; err != nil {
			return apperr.Internal(err, "Failed to update fields")
		}

		for _, f := range fields {
			if f.CurrentCrop == nil && f.GrowthStage != nil {
				return apperr.Validation("Field %d has no crop and cannot have a growth stage", f.FieldNumber)
			}
			stage := trimmed(req.Updates.GrowthStage.Value)
			if stage == nil || !significantStages[*stage] || f.CurrentCrop == nil {
				continue
			}
			if err := tx.Create(&models.FieldHistory{
				FieldID:     f.ID,
				Crop:        *f.CurrentCrop,
				Action:      *stage,
				GrowthStage: *stage,
				GameYear:    date.Year,
				GameMonth:   date.Month,
				GameDay:     date.Day,
			}).Error; err != nil {
				return apperr.Internal(err, "Failed to record field history")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      farmID,
		UserID:      userID,
		EntityType:  "field",
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("Bulk updated %d fields", len(fields)),
	})
	return &BulkResult{Success: true, UpdatedCount: len(fields), Fields: fields}, nil
}

// History returns up to limit entries, newest game date first.
func (s *Service) History(ctx context.Context, userID, fieldID uint, limit int) ([]models.FieldHistory, error) {
	if _, err := s.load(ctx, userID, fieldID, false); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.history(ctx, fieldID, limit)
}

func (s *Service) history(ctx context.Context, fieldID uint, limit int) ([]models.FieldHistory, error) {
	var rows []models.FieldHistory
	if err := s.db.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("game_year DESC, game_month DESC, game_day DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch field history")
	}
	return rows, nil
}

type Recommendations struct {
	CurrentCrop     *string                   `json:"current_crop"`
	GrowthStage     *string                   `json:"growth_stage"`
	PreviousCrop    *string                   `json:"previous_crop"`
	Recommendations []rotation.Recommendation `json:"recommendations"`
}

// Recommendations advises on the next crop. The previous crop is the
// current one, else the crop of the newest history entry.
func (s *Service) Recommendations(ctx context.Context, userID, fieldID uint) (*Recommendations, error) {
	field, err := s.load(ctx, userID, fieldID, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.history(ctx, fieldID, recommendationDepth)
	if err != nil {
		return nil, err
	}

	crops := make([]string, 0, len(rows))
	for _, r := range rows {
		crops = append(crops, r.Crop)
	}

	previous := field.CurrentCrop
	if previous == nil && len(crops) > 0 {
		previous = &crops[0]
	}
	var prev string
	if previous != nil {
		prev = *previous
	}

	return &Recommendations{
		CurrentCrop:     field.CurrentCrop,
		GrowthStage:     field.GrowthStage,
		PreviousCrop:    previous,
		Recommendations: rotation.Recommend(prev, crops),
	}, nil
}

func (s *Service) UpdateProduction(ctx context.Context, userID, fieldID uint, req ProductionRequest) (*models.Field, error) {
	cols, err := req.columns()
	if err != nil {
		return nil, err
	}
	field, err := s.load(ctx, userID, fieldID, true)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(field).Updates(cols).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update field production data")
	}
	if err := s.db.WithContext(ctx).First(field, fieldID).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch field")
	}
	return field, nil
}

func cropOf(cols map[string]any) *string {
	crop, _ := cols["current_crop"].(*string)
	return crop
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func formatYield(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func describeUpdate(f *models.Field, req UpdateRequest) string {
	if stage := trimmed(req.GrowthStage.Value); stage != nil {
		return fmt.Sprintf("Field %d set to %s", f.FieldNumber, *stage)
	}
	return fmt.Sprintf("Updated Field %d", f.FieldNumber)
}
