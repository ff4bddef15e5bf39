// Package equipment keeps the farm's machinery register. Purchases and
// sales are posted to the finance ledger at the farm's game date.
package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"farmsim-backend/internal/activity"
	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/auth"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	access   *auth.FarmAccess
	activity *activity.Log
}

func NewService(db *gorm.DB, access *auth.FarmAccess, act *activity.Log) *Service {
	return &Service{db: db, access: access, activity: act}
}

// View is an equipment row with the assigned user's name.
type View struct {
	models.Equipment
	OwnerName *string `json:"owner_name"`
}

func (s *Service) views(ctx context.Context, rows []models.Equipment) ([]View, error) {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		if r.UserID != nil {
			ids = append(ids, *r.UserID)
		}
	}

	names := map[uint]string{}
	if len(ids) > 0 {
		var users []models.User
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, apperr.Internal(err, "Failed to fetch equipment owners")
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	out := make([]View, 0, len(rows))
	for _, r := range rows {
		v := View{Equipment: r}
		if r.UserID != nil {
			if name, ok := names[*r.UserID]; ok {
				v.OwnerName = &name
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, row models.Equipment) (*View, error) {
	vs, err := s.views(ctx, []models.Equipment{row})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

func (s *Service) List(ctx context.Context, farmID uint) ([]View, error) {
	var rows []models.Equipment
	if err := s.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("category, brand, model, id").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch equipment")
	}
	return s.views(ctx, rows)
}

// Brands returns the distinct brands on the farm, sorted.
func (s *Service) Brands(ctx context.Context, farmID uint) ([]string, error) {
	brands := []string{}
	if err := s.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("farm_id = ?", farmID).
		Distinct().
		Order("brand").
		Pluck("brand", &brands).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch brands")
	}
	return brands, nil
}

type CreateRequest struct {
	Model         string           `json:"model"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	Owned         *bool            `json:"owned"`
	Leased        *bool            `json:"leased"`
	DailyCost     *decimal.Decimal `json:"daily_cost"`
	Condition     *int             `json:"condition" validate:"omitempty,gte=0,lte=100"`
	UserID        *uint            `json:"user_id"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	PurchaseDate  *string          `json:"purchase_date"`
	Notes         *string          `json:"notes"`
}

// Create registers a machine. A positive purchase price books an expense in
// the same transaction.
func (s *Service) Create(ctx context.Context, userID, farmID uint, req CreateRequest) (*View, error) {
	row := models.Equipment{
		FarmID:       farmID,
		Model:        strings.TrimSpace(req.Model),
		Category:     strings.TrimSpace(req.Category),
		Brand:        strings.TrimSpace(req.Brand),
		Owned:        true,
		Condition:    100,
		UserID:       req.UserID,
		PurchaseDate: req.PurchaseDate,
		Notes:        req.Notes,
	}
	if row.Model == "" || row.Category == "" || row.Brand == "" {
		return nil, apperr.Validation("Model, category, and brand are required")
	}
	if req.Owned != nil {
		row.Owned = *req.Owned
	}
	if req.Leased != nil {
		row.Leased = *req.Leased
	}
	if req.DailyCost != nil {
		row.DailyCost = *req.DailyCost
	}
	if req.Condition != nil {
		row.Condition = *req.Condition
	}
	if req.PurchasePrice != nil {
		if req.PurchasePrice.IsNegative() {
			return nil, apperr.Validation("Purchase price must not be negative")
		}
		row.PurchasePrice = *req.PurchasePrice
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.PurchasePrice.IsPositive() && row.PurchaseDate == nil {
			date, err := calendar.Current(tx, farmID)
			if err != nil {
				return err
			}
			label := date.String()
			row.PurchaseDate = &label
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Internal(err, "Failed to create equipment entry")
		}
		if !row.PurchasePrice.IsPositive() {
			return nil
		}
		_, err := finance.Post(tx, finance.Entry{
			FarmID:      farmID,
			Type:        models.FinanceExpense,
			Category:    finance.CategoryEquipmentPurchase,
			Description: fmt.Sprintf("Purchased %s %s", row.Brand, row.Model),
			Amount:      row.PurchasePrice,
			CreatedBy:   &userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      farmID,
		UserID:      userID,
		EntityType:  "equipment",
		EntityID:    &row.ID,
		Action:      models.ActivityCreate,
		Description: fmt.Sprintf("Added %s %s", row.Brand, row.Model),
	})
	return s.view(ctx, row)
}

func (s *Service) load(ctx context.Context, userID, id uint) (*models.Equipment, error) {
	var row models.Equipment
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Equipment not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch equipment")
	}
	if _, err := s.access.RequireEditor(ctx, row.FarmID, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

type UpdateRequest struct {
	Model         httpx.Optional[string]          `json:"model"`
	Category      httpx.Optional[string]          `json:"category"`
	Brand         httpx.Optional[string]          `json:"brand"`
	Owned         httpx.Optional[bool]            `json:"owned"`
	Leased        httpx.Optional[bool]            `json:"leased"`
	DailyCost     httpx.Optional[decimal.Decimal] `json:"daily_cost"`
	Condition     httpx.Optional[int]             `json:"condition"`
	UserID        httpx.Optional[uint]            `json:"user_id"`
	PurchasePrice httpx.Optional[decimal.Decimal] `json:"purchase_price"`
	PurchaseDate  httpx.Optional[string]          `json:"purchase_date"`
	Sold          httpx.Optional[bool]            `json:"sold"`
	SalePrice     httpx.Optional[decimal.Decimal] `json:"sale_price"`
	SaleDate      httpx.Optional[string]          `json:"sale_date"`
	Notes         httpx.Optional[string]          `json:"notes"`
}

func (r UpdateRequest) columns() (map[string]any, error) {
	cols := map[string]any{}

	required := []struct {
		col string
		opt httpx.Optional[string]
	}{{"model", r.Model}, {"category", r.Category}, {"brand", r.Brand}}
	for _, f := range required {
		if !f.opt.Set {
			continue
		}
		v := httpx.TrimmedString(f.opt)
		if v == nil {
			return nil, apperr.Validation("%s cannot be empty", f.col)
		}
		cols[f.col] = *v
	}

	for col, opt := range map[string]httpx.Optional[bool]{"owned": r.Owned, "leased": r.Leased, "sold": r.Sold} {
		if opt.Set {
			cols[col] = opt.Value != nil && *opt.Value
		}
	}

	for col, opt := range map[string]httpx.Optional[decimal.Decimal]{
		"daily_cost":     r.DailyCost,
		"purchase_price": r.PurchasePrice,
		"sale_price":     r.SalePrice,
	} {
		if !opt.Set {
			continue
		}
		v := decimal.Zero
		if opt.Value != nil {
			v = *opt.Value
		}
		if v.IsNegative() {
			return nil, apperr.Validation("%s must not be negative", col)
		}
		cols[col] = v
	}

	if r.Condition.Set {
		if r.Condition.Value == nil || *r.Condition.Value < 0 || *r.Condition.Value > 100 {
			return nil, apperr.Validation("Condition must be between 0 and 100")
		}
		cols["condition"] = *r.Condition.Value
	}
	if r.UserID.Set {
		cols["user_id"] = r.UserID.Value
	}
	for col, opt := range map[string]httpx.Optional[string]{
		"purchase_date": r.PurchaseDate,
		"sale_date":     r.SaleDate,
		"notes":         r.Notes,
	} {
		if opt.Set {
			cols[col] = httpx.TrimmedString(opt)
		}
	}

	if len(cols) == 0 {
		return nil, apperr.Validation("No updates provided")
	}
	return cols, nil
}

// Update edits the register only. Changing prices here never touches the
// ledger; use Sell to book a sale.
func (s *Service) Update(ctx context.Context, userID, id uint, req UpdateRequest) (*View, error) {
	cols, err := req.columns()
	if err != nil {
		return nil, err
	}
	row, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Equipment{ID: row.ID}).Updates(cols).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update equipment")
	}
	if err := db.First(row, row.ID).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch equipment")
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      row.FarmID,
		UserID:      userID,
		EntityType:  "equipment",
		EntityID:    &row.ID,
		Action:      models.ActivityUpdate,
		Description: fmt.Sprintf("Updated %s %s", row.Brand, row.Model),
	})
	return s.view(ctx, *row)
}

type SellRequest struct {
	SalePrice *decimal.Decimal `json:"sale_price"`
	SaleDate  *string          `json:"sale_date"`
}

// Sell marks the machine sold and books the income at the game date.
func (s *Service) Sell(ctx context.Context, userID, id uint, req SellRequest) (*View, error) {
	if req.SalePrice == nil || !req.SalePrice.IsPositive() {
		return nil, apperr.Validation("Sale price is required and must be positive")
	}
	row, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if row.Sold {
		return nil, apperr.Validation("Equipment already sold")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		saleDate := httpx.TrimmedString(httpx.Optional[string]{Set: true, Value: req.SaleDate})
		if saleDate == nil {
			date, err := calendar.Current(tx, row.FarmID)
			if err != nil {
				return err
			}
			label := date.String()
			saleDate = &label
		}

		res := tx.Model(&models.Equipment{}).
			Where("id = ? AND sold = ?", row.ID, false).
			Updates(map[string]any{
				"sold":       true,
				"sale_price": *req.SalePrice,
				"sale_date":  saleDate,
			})
		if res.Error != nil {
			return apperr.Internal(res.Error, "Failed to sell equipment")
		}
		if res.RowsAffected == 0 {
			return apperr.Validation("Equipment already sold")
		}

		if _, err := finance.Post(tx, finance.Entry{
			FarmID:      row.FarmID,
			Type:        models.FinanceIncome,
			Category:    finance.CategoryEquipmentSale,
			Description: fmt.Sprintf("Sold %s %s", row.Brand, row.Model),
			Amount:      *req.SalePrice,
			CreatedBy:   &userID,
		}); err != nil {
			return err
		}
		return tx.First(row, row.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		FarmID:      row.FarmID,
		UserID:      userID,
		EntityType:  "equipment",
		EntityID:    &row.ID,
		Action:      models.ActivitySell,
		Description: fmt.Sprintf("Sold %s %s for %s", row.Brand, row.Model, req.SalePrice.StringFixed(2)),
	})
	return s.view(ctx, *row)
}
