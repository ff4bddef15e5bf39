package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/finance"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const quantityColumn = "quantity_stored"

type Ledger struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewLedger(db *gorm.DB, log logrus.FieldLogger) *Ledger {
	return &Ledger{db: db, log: log.WithField("module", "storage")}
}

type BaleCount struct {
	Size     int       `json:"size"`
	Shape    BaleShape `json:"shape"`
	Quantity float64   `json:"quantity"`
}

type View struct {
	ID              uint               `json:"id"`
	FarmID          uint               `json:"farm_id"`
	CropName        string             `json:"crop_name"`
	QuantityStored  float64            `json:"quantity_stored"`
	StorageUnit     models.StorageUnit `json:"storage_unit"`
	Bales           []BaleCount        `json:"bales,omitempty"`
	StorageLocation *string            `json:"storage_location"`
	Notes           *string            `json:"notes"`
	LastUpdated     time.Time          `json:"last_updated"`
}

func ViewOf(row *models.CropStorage) View {
	v := View{
		ID:              row.ID,
		FarmID:          row.FarmID,
		CropName:        row.CropName,
		QuantityStored:  row.QuantityStored,
		StorageUnit:     row.StorageUnit,
		StorageLocation: row.StorageLocation,
		Notes:           row.Notes,
		LastUpdated:     row.LastUpdated,
	}
	if v.StorageUnit == "" {
		v.StorageUnit = ClassifyUnit(row.CropName).Unit
	}
	if v.StorageUnit == models.UnitBales {
		v.Bales = make([]BaleCount, 0, len(Buckets))
		for _, b := range Buckets {
			v.Bales = append(v.Bales, BaleCount{Size: b.Size, Shape: b.Shape, Quantity: bucketValue(row, b)})
		}
	}
	return v
}

func (l *Ledger) List(ctx context.Context, farmID uint) ([]View, error) {
	var rows []models.CropStorage
	if err := l.db.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("crop_name").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch storage")
	}

	out := make([]View, 0, len(rows))
	for i := range rows {
		out = append(out, ViewOf(&rows[i]))
	}
	return out, nil
}

func (l *Ledger) Get(ctx context.Context, farmID uint, cropName string) (*models.CropStorage, error) {
	return findRow(l.db.WithContext(ctx), farmID, cropName)
}

func findRow(tx *gorm.DB, farmID uint, cropName string) (*models.CropStorage, error) {
	var row models.CropStorage
	err := tx.Where("farm_id = ? AND crop_name = ?", farmID, cropName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No storage found for this crop")
	}
	if err != nil {
		return nil, apperr.Internal(err, "Failed to fetch storage")
	}
	return &row, nil
}

// Harvest is a yield posted by the field tracker.
type Harvest struct {
	FarmID   uint
	CropName string
	Yield    float64
	Bucket   *Bucket
	Note     string
}

// PostHarvest adds a harvested yield to the crop's stock. Bale crops with a
// valid bucket take the yield as a bale count; other bale crops convert
// liters to bales; liquid crops take the yield as liters.
func (l *Ledger) PostHarvest(ctx context.Context, h Harvest) (*models.CropStorage, error) {
	if h.Yield <= 0 {
		return nil, apperr.Validation("Yield must be greater than 0")
	}

	unit := ClassifyUnit(h.CropName)
	column, qty := quantityColumn, h.Yield
	if unit.Unit == models.UnitBales {
		if col, ok := bucketColumn(h.Bucket); ok {
			column = col
		} else {
			qty = h.Yield / unit.Factor
		}
	}

	var row *models.CropStorage
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := func(r *models.CropStorage) {
			if h.Note != "" {
				note := h.Note
				r.Notes = &note
			}
		}
		if err := increment(tx, h.FarmID, h.CropName, column, qty, seed); err != nil {
			return err
		}
		var err error
		row, err = findRow(tx, h.FarmID, h.CropName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

type AddRequest struct {
	CropName        string   `json:"crop_name" validate:"required"`
	QuantityStored  *float64 `json:"quantity_stored" validate:"omitempty,gte=0"`
	ActualYield     *float64 `json:"actual_yield" validate:"omitempty,gte=0"`
	BaleSize        *int     `json:"bale_size"`
	BaleShape       *string  `json:"bale_shape"`
	StorageLocation *string  `json:"storage_location"`
	Notes           *string  `json:"notes"`
}

// Add is a manual stock addition. Bale crops take actual_yield (or
// quantity_stored) into the given bucket; liquid crops add quantity_stored
// and replace location and notes.
func (l *Ledger) Add(ctx context.Context, farmID uint, req AddRequest) (*models.CropStorage, error) {
	crop := strings.TrimSpace(req.CropName)
	if crop == "" {
		return nil, apperr.Validation("Crop name is required")
	}
	unit := ClassifyUnit(crop)
	bucket := BucketFrom(req.BaleSize, req.BaleShape)

	seed := func(r *models.CropStorage) {
		r.StorageLocation = req.StorageLocation
		r.Notes = req.Notes
	}

	var row *models.CropStorage
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case unit.Unit == models.UnitBales && bucket != nil:
			col, ok := bucket.Column()
			if !ok {
				return apperr.Validation("Invalid bale size or shape")
			}
			qty := firstPositive(req.ActualYield, req.QuantityStored)
			if err := increment(tx, farmID, crop, col, qty, seed); err != nil {
				return err
			}
		case unit.Unit == models.UnitBales:
			if err := increment(tx, farmID, crop, quantityColumn, 0, seed); err != nil {
				return err
			}
		default:
			qty := firstPositive(req.QuantityStored)
			if err := increment(tx, farmID, crop, quantityColumn, qty, seed); err != nil {
				return err
			}
			if err := tx.Model(&models.CropStorage{}).
				Where("farm_id = ? AND crop_name = ?", farmID, crop).
				Updates(map[string]any{"storage_location": req.StorageLocation, "notes": req.Notes}).Error; err != nil {
				return apperr.Internal(err, "Failed to save storage")
			}
		}

		var err error
		row, err = findRow(tx, farmID, crop)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

type SaleRequest struct {
	Quantity  float64
	UnitPrice decimal.Decimal
	Bucket    *Bucket
}

type SaleResult struct {
	Message string             `json:"message"`
	Storage *models.CropStorage `json:"-"`
	Finance *models.Finance     `json:"finance,omitempty"`
}

// Sell decrements stock and, with a positive unit price, posts the sale as
// income at the farm's game date. Both happen in one transaction; the
// decrement is guarded so concurrent sells cannot oversell.
func (l *Ledger) Sell(ctx context.Context, userID, farmID uint, cropName string, req SaleRequest) (*SaleResult, error) {
	if req.Quantity <= 0 {
		return nil, apperr.Validation("Sale quantity must be greater than 0")
	}
	if req.UnitPrice.IsNegative() {
		return nil, apperr.Validation("Sale price must not be negative")
	}

	result := &SaleResult{}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findRow(tx, farmID, cropName)
		if err != nil {
			return err
		}

		column := quantityColumn
		var bucket *Bucket
		if row.StorageUnit == models.UnitBales && req.Bucket != nil {
			col, ok := req.Bucket.Column()
			if !ok {
				return apperr.Validation("Invalid bale size or shape")
			}
			column, bucket = col, req.Bucket
		}

		res := tx.Model(&models.CropStorage{}).
			Where("id = ? AND "+column+" >= ?", row.ID, req.Quantity).
			Updates(map[string]any{
				column:         gorm.Expr(column+" - ?", req.Quantity),
				"last_updated": time.Now(),
			})
		if res.Error != nil {
			return apperr.Internal(res.Error, "Failed to sell from storage")
		}
		if res.RowsAffected == 0 {
			current, err := findRow(tx, farmID, cropName)
			if err != nil {
				return err
			}
			return insufficient(current, bucket, req.Quantity)
		}

		if req.UnitPrice.IsPositive() {
			entry, err := finance.Post(tx, finance.Entry{
				FarmID:      farmID,
				Type:        models.FinanceIncome,
				Category:    finance.CategoryCropSales,
				Description: saleDescription(row, bucket, req),
				Amount:      decimal.NewFromFloat(req.Quantity).Mul(req.UnitPrice),
				CreatedBy:   &userID,
			})
			if err != nil {
				return err
			}
			result.Finance = entry
		}

		result.Storage, err = findRow(tx, farmID, cropName)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Message = "Sold " + formatQty(req.Quantity)
	if result.Storage.StorageUnit == models.UnitBales && req.Bucket != nil {
		result.Message += fmt.Sprintf(" %dkg %s bales", req.Bucket.Size, req.Bucket.Shape)
	}
	return result, nil
}

func (l *Ledger) Delete(ctx context.Context, farmID uint, cropName string) error {
	res := l.db.WithContext(ctx).
		Where("farm_id = ? AND crop_name = ?", farmID, cropName).
		Delete(&models.CropStorage{})
	if res.Error != nil {
		return apperr.Internal(res.Error, "Failed to delete storage")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("No storage found for this crop")
	}
	return nil
}

// increment adds qty to column on the (farm, crop) row, creating the row if
// it does not exist. The add is a single UPDATE so concurrent posts to the
// same key never lose each other's quantities; a lost insert race falls
// back to the UPDATE.
func increment(tx *gorm.DB, farmID uint, crop, column string, qty float64, seed func(*models.CropStorage)) error {
	for attempt := 0; attempt < 2; attempt++ {
		res := tx.Model(&models.CropStorage{}).
			Where("farm_id = ? AND crop_name = ?", farmID, crop).
			Updates(map[string]any{
				column:         gorm.Expr(column+" + ?", qty),
				"last_updated": time.Now(),
			})
		if res.Error != nil {
			return apperr.Internal(res.Error, "Failed to update storage")
		}
		if res.RowsAffected > 0 {
			return nil
		}

		row := models.CropStorage{
			FarmID:      farmID,
			CropName:    crop,
			StorageUnit: ClassifyUnit(crop).Unit,
		}
		setColumn(&row, column, qty)
		if seed != nil {
			seed(&row)
		}
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return apperr.Internal(res.Error, "Failed to create storage")
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}
	return apperr.Internal(errors.New("storage row missing after insert conflict"), "Failed to update storage")
}

func setColumn(row *models.CropStorage, column string, v float64) {
	if column == quantityColumn {
		row.QuantityStored = v
		return
	}
	for b, col := range bucketColumns {
		if col == column {
			setBucket(row, b, v)
			return
		}
	}
}

func bucketColumn(b *Bucket) (string, bool) {
	if b == nil {
		return "", false
	}
	return b.Column()
}

func insufficient(row *models.CropStorage, bucket *Bucket, requested float64) error {
	if bucket != nil {
		available := bucketValue(row, *bucket)
		return apperr.InsufficientStock(
			fmt.Sprintf("Cannot sell %s bales - only %s %dkg %s bales in storage",
				formatQty(requested), formatQty(available), bucket.Size, bucket.Shape),
			available, requested)
	}
	available := row.QuantityStored
	return apperr.InsufficientStock(
		fmt.Sprintf("Cannot sell %s %s - only %s %s in storage",
			formatQty(requested), row.StorageUnit, formatQty(available), row.StorageUnit),
		available, requested)
}

func saleDescription(row *models.CropStorage, bucket *Bucket, req SaleRequest) string {
	if bucket != nil {
		return fmt.Sprintf("Sold %s %dkg %s bales of %s @ £%s/bale",
			formatQty(req.Quantity), bucket.Size, bucket.Shape, row.CropName, req.UnitPrice.String())
	}
	return fmt.Sprintf("Sold %s %s of %s @ £%s/%s",
		formatQty(req.Quantity), row.StorageUnit, row.CropName, req.UnitPrice.String(), row.StorageUnit)
}

func firstPositive(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil && *v > 0 {
			return *v
		}
	}
	return 0
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
