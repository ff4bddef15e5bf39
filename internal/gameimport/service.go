// Package gameimport syncs a farm with a snapshot exported from the running
// game: fields are upserted by number, vehicles by model name, and the
// ledger is brought to the game's money.
package gameimport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/equipment"
	"farmsim-backend/internal/field"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/logging"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultGameFarmID = "1"
	unknownBrand      = "Unknown"
	entityType        = "import"
)

// Payload is the export format of the game dashboard mod, so its keys are
// camelCase.
type Payload struct {
	GameFarmID string      `json:"gameFarmId"`
	Farms      []GameFarm  `json:"farms"`
	Fields     []GameField `json:"fields"`
	Vehicles   []Vehicle   `json:"vehicles"`
}

type GameFarm struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Money decimal.Decimal `json:"money"`
}

type GameField struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	AreaHectares    float64 `json:"areaHectares"`
	FruitType       string  `json:"fruitType"`
	GrowthState     float64 `json:"growthState"`
	MaxGrowthState  float64 `json:"maxGrowthState"`
	WeedState       float64 `json:"weedState"`
	FertilizerLevel float64 `json:"fertilizerLevel"`
}

type Vehicle struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	FarmID       string  `json:"farmId"`
	DamageAmount float64 `json:"damageAmount"`
}

type Result struct {
	FieldsUpdated    int      `json:"fields_updated"`
	FieldsCreated    int      `json:"fields_created"`
	MoneyUpdated     bool     `json:"money_updated"`
	EquipmentUpdated int      `json:"equipment_updated"`
	Errors           []string `json:"errors"`
}

type Service struct {
	db        *gorm.DB
	fields    *field.Service
	equipment *equipment.Service
	activity  *activity.Log
	log       logrus.FieldLogger
}

func NewService(db *gorm.DB, fields *field.Service, eq *equipment.Service, act *activity.Log, log logrus.FieldLogger) *Service {
	return &Service{
		db:        db,
		fields:    fields,
		equipment: eq,
		activity:  act,
		log:       log.WithField("module", "gameimport"),
	}
}

// Import applies p to the farm. Each field and vehicle is applied on its
// own; a failing item is reported in Result.Errors and the rest still run.
func (s *Service) Import(ctx context.Context, userID, farmID uint, p Payload) (*Result, error) {
	gameFarmID := p.GameFarmID
	if gameFarmID == "" {
		gameFarmID = defaultGameFarmID
	}
	res := &Result{Errors: []string{}}

	for _, gf := range p.Farms {
		if gf.ID != gameFarmID {
			continue
		}
		if err := s.syncMoney(ctx, userID, farmID, gf.Money); err != nil {
			logging.LogError(s.log, "gameimport", "Import", "money sync failed", gf, err)
			res.Errors = append(res.Errors, "Failed to update farm money")
		} else {
			res.MoneyUpdated = true
		}
		break
	}

	if len(p.Fields) > 0 {
		if err := s.importFields(ctx, userID, farmID, p.Fields, res); err != nil {
			return nil, err
		}
	}

	if len(p.Vehicles) > 0 {
		if err := s.importVehicles(ctx, userID, farmID, gameFarmID, p.Vehicles, res); err != nil {
			return nil, err
		}
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:     farmID,
		UserID:     userID,
		EntityType: entityType,
		Action:     models.ActivityUpdate,
		Description: fmt.Sprintf("Imported game data: %d fields created, %d updated, %d vehicles",
			res.FieldsCreated, res.FieldsUpdated, res.EquipmentUpdated),
	})
	return res, nil
}

// syncMoney posts the difference between the game's money and the ledger
// balance, so the balance matches the game afterwards.
func (s *Service) syncMoney(ctx context.Context, userID, farmID uint, money decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := finance.Balance(tx, farmID)
		if err != nil {
			return err
		}
		diff := money.Sub(balance)
		if diff.IsZero() {
			return nil
		}
		entry := finance.Entry{
			FarmID:      farmID,
			Type:        models.FinanceIncome,
			Category:    finance.CategoryGameSync,
			Description: "Money synced from game: £" + money.StringFixed(2),
			Amount:      diff,
			CreatedBy:   &userID,
		}
		if diff.IsNegative() {
			entry.Type = models.FinanceExpense
			entry.Amount = diff.Neg()
		}
		_, err = finance.Post(tx, entry)
		return err
	})
}

func (s *Service) importFields(ctx context.Context, userID, farmID uint, fields []GameField, res *Result) error {
	existing, err := s.fields.List(ctx, farmID)
	if err != nil {
		return err
	}
	byNumber := make(map[int]uint, len(existing))
	for _, f := range existing {
		byNumber[f.FieldNumber] = f.ID
	}

	for _, gf := range fields {
		number, err := strconv.Atoi(gf.ID)
		if err == nil && number <= 0 {
			err = errors.New("field number must be positive")
		}
		if err == nil {
			err = s.upsertField(ctx, userID, farmID, number, byNumber, gf, res)
		}
		if err != nil {
			logging.LogError(s.log, "gameimport", "importFields", "field import failed", gf, err)
			res.Errors = append(res.Errors, "Failed to process field "+gf.Name)
		}
	}
	return nil
}

func (s *Service) upsertField(ctx context.Context, userID, farmID uint, number int, byNumber map[int]uint, gf GameField, res *Result) error {
	crop := Crop(gf.FruitType)
	var stage *string
	if crop != nil {
		g := GrowthStage(gf.GrowthState, gf.MaxGrowthState)
		stage = &g
	}
	fertiliser := FertiliserState(gf.FertilizerLevel)
	weeds := WeedsState(gf.WeedState)

	if id, ok := byNumber[number]; ok {
		_, err := s.fields.Update(ctx, userID, id, field.UpdateRequest{
			Name:            httpx.Some(gf.Name),
			SizeHectares:    httpx.Some(gf.AreaHectares),
			CurrentCrop:     httpx.Optional[string]{Set: true, Value: crop},
			GrowthStage:     httpx.Optional[string]{Set: true, Value: stage},
			FertiliserState: httpx.Some(fertiliser),
			WeedsState:      httpx.Some(weeds),
		})
		if err != nil {
			return err
		}
		res.FieldsUpdated++
		return nil
	}

	row, err := s.fields.Create(ctx, userID, farmID, field.CreateRequest{
		FieldNumber:     number,
		Name:            gf.Name,
		SizeHectares:    &gf.AreaHectares,
		CurrentCrop:     crop,
		GrowthStage:     stage,
		FertiliserState: &fertiliser,
		WeedsState:      &weeds,
	})
	if err != nil {
		return err
	}
	byNumber[number] = row.ID
	res.FieldsCreated++
	return nil
}

func (s *Service) importVehicles(ctx context.Context, userID, farmID uint, gameFarmID string, vehicles []Vehicle, res *Result) error {
	existing, err := s.equipment.List(ctx, farmID)
	if err != nil {
		return err
	}
	byModel := make(map[string]uint, len(existing))
	for _, e := range existing {
		if _, ok := byModel[e.Model]; !ok {
			byModel[e.Model] = e.ID
		}
	}

	for _, v := range vehicles {
		if v.FarmID != gameFarmID {
			continue
		}
		if err := s.upsertVehicle(ctx, userID, farmID, byModel, v); err != nil {
			logging.LogError(s.log, "gameimport", "importVehicles", "vehicle import failed", v, err)
			res.Errors = append(res.Errors, "Failed to process vehicle "+v.Name)
			continue
		}
		res.EquipmentUpdated++
	}
	return nil
}

func (s *Service) upsertVehicle(ctx context.Context, userID, farmID uint, byModel map[string]uint, v Vehicle) error {
	condition := Condition(v.DamageAmount)
	if id, ok := byModel[v.Name]; ok {
		_, err := s.equipment.Update(ctx, userID, id, equipment.UpdateRequest{Condition: httpx.Some(condition)})
		return err
	}

	owned := true
	row, err := s.equipment.Create(ctx, userID, farmID, equipment.CreateRequest{
		Model:     v.Name,
		Category:  VehicleCategory(v.Type),
		Brand:     unknownBrand,
		Owned:     &owned,
		Condition: &condition,
	})
	if err != nil {
		return err
	}
	byModel[v.Name] = row.ID
	return nil
}

type Status struct {
	LastSyncAt     *time.Time      `json:"last_sync_at"`
	Balance        decimal.Decimal `json:"balance"`
	TotalFields    int64           `json:"total_fields"`
	TotalEquipment int64           `json:"total_equipment"`
}

// Status reports when the farm last imported and what it holds now.
func (s *Service) Status(ctx context.Context, farmID uint) (*Status, error) {
	db := s.db.WithContext(ctx)
	st := &Status{}

	var last models.ActivityLog
	err := db.Where("farm_id = ? AND entity_type = ?", farmID, entityType).Order("id DESC").First(&last).Error
	switch {
	case err == nil:
		st.LastSyncAt = &last.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Internal(err, "Failed to fetch import status")
	}

	if st.Balance, err = finance.Balance(db, farmID); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Field{}).Where("farm_id = ?", farmID).Count(&st.TotalFields).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch import status")
	}
	if err := db.Model(&models.Equipment{}).Where("farm_id = ? AND sold = ?", farmID, false).Count(&st.TotalEquipment).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch import status")
	}
	return st, nil
}
