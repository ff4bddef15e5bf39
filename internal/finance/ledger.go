// Package finance is the farm's money ledger. Other packages only post to it;
// reads and manual entries go through Service.
package finance

import (
	"context"
	"errors"
	"strings"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CategoryStartingBalance   = "Starting Balance"
	CategoryCropSales         = "Crop Sales"
	CategoryEquipmentPurchase = "Equipment Purchase"
	CategoryEquipmentSale     = "Equipment Sale"
	CategoryGameSync          = "Game Sync"
)

type Entry struct {
	FarmID      uint
	Type        models.FinanceType
	Category    string
	Description string
	Amount      decimal.Decimal
	CreatedBy   *uint
}

func (e Entry) validate() error {
	if !e.Type.Valid() {
		return apperr.Validation("Type must be income or expense")
	}
	if strings.TrimSpace(e.Category) == "" || strings.TrimSpace(e.Description) == "" {
		return apperr.Validation("Category and description are required")
	}
	if e.Amount.IsNegative() {
		return apperr.Validation("Amount must not be negative")
	}
	return nil
}

// Post records e at the farm's current game date, read through tx so that
// the posting lands in the caller's transaction.
func Post(tx *gorm.DB, e Entry) (*models.Finance, error) {
	date, err := calendar.Current(tx, e.FarmID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Internal(err, "Farm missing while posting finance entry")
		}
		return nil, err
	}
	return PostAt(tx, e, date)
}

func PostAt(tx *gorm.DB, e Entry, date calendar.GameDate) (*models.Finance, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	row := models.Finance{
		FarmID:          e.FarmID,
		GameYear:        date.Year,
		GameMonth:       date.Month,
		GameDay:         date.Day,
		Type:            e.Type,
		Category:        e.Category,
		Description:     e.Description,
		Amount:          e.Amount,
		CreatedByUserID: e.CreatedBy,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create finance entry")
	}
	return &row, nil
}

// Ledger is the list view: entries newest game date first plus totals.
type Ledger struct {
	Entries      []models.Finance `json:"entries"`
	TotalIncome  decimal.Decimal  `json:"total_income"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	Balance      decimal.Decimal  `json:"balance"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, farmID uint) (*Ledger, error) {
	var entries []models.Finance
	if err := s.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("game_year DESC, game_month DESC, game_day DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch finances")
	}

	ledger := &Ledger{Entries: entries}
	for _, e := range entries {
		switch e.Type {
		case models.FinanceIncome:
			ledger.TotalIncome = ledger.TotalIncome.Add(e.Amount)
		case models.FinanceExpense:
			ledger.TotalExpense = ledger.TotalExpense.Add(e.Amount)
		}
	}
	ledger.Balance = ledger.TotalIncome.Sub(ledger.TotalExpense)
	return ledger, nil
}

// Balance is income minus expense, read through tx.
func Balance(tx *gorm.DB, farmID uint) (decimal.Decimal, error) {
	var rows []models.Finance
	if err := tx.Select("type", "amount").Where("farm_id = ?", farmID).Find(&rows).Error; err != nil {
		return decimal.Zero, apperr.Internal(err, "Failed to fetch finances")
	}
	balance := decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case models.FinanceIncome:
			balance = balance.Add(r.Amount)
		case models.FinanceExpense:
			balance = balance.Sub(r.Amount)
		}
	}
	return balance, nil
}

type CreateRequest struct {
	Type        models.FinanceType `json:"type" validate:"required,oneof=income expense"`
	Category    string             `json:"category" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Amount      decimal.Decimal    `json:"amount"`
}

// Create is a manual posting at the current game date.
func (s *Service) Create(ctx context.Context, userID, farmID uint, req CreateRequest) (*models.Finance, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("Amount must be greater than 0")
	}

	var row *models.Finance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = Post(tx, Entry{
			FarmID:      farmID,
			Type:        req.Type,
			Category:    strings.TrimSpace(req.Category),
			Description: strings.TrimSpace(req.Description),
			Amount:      req.Amount,
			CreatedBy:   &userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) Get(ctx context.Context, farmID, id uint) (*models.Finance, error) {
	var row models.Finance
	err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Finance entry not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch finance entry")
	}
	return &row, nil
}
