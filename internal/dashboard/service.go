// Package dashboard serves the farm's at-a-glance figures and the finance
// chart, both keyed to the game calendar.
package dashboard

import (
	"context"
	"fmt"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"

	defaultMonths = 12
	defaultYears  = 5
	maxPoints     = 120
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Overview struct {
	FarmID       uint              `json:"farm_id"`
	Date         calendar.GameDate `json:"date"`
	Fields       int64             `json:"fields"`
	Hectares     float64           `json:"hectares"`
	Planted      int64             `json:"planted"`
	StorageCrops int64             `json:"storage_crops"`
	Equipment    int64             `json:"equipment"`
	Animals      int64             `json:"animals"`
	Balance      decimal.Decimal   `json:"balance"`
}

func (s *Service) Overview(ctx context.Context, farmID uint) (*Overview, error) {
	db := s.db.WithContext(ctx)
	date, err := calendar.Current(db, farmID)
	if err != nil {
		return nil, err
	}
	out := &Overview{FarmID: farmID, Date: date}

	var fields struct {
		Count    int64
		Hectares float64
		Planted  int64
	}
	if err := db.Model(&models.Field{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size_hectares), 0) AS hectares, COUNT(current_crop) AS planted").
		Where("farm_id = ?", farmID).
		Scan(&fields).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to count fields")
	}
	out.Fields, out.Hectares, out.Planted = fields.Count, fields.Hectares, fields.Planted

	if err := db.Model(&models.CropStorage{}).Where("farm_id = ?", farmID).Count(&out.StorageCrops).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to count storage")
	}
	if err := db.Model(&models.Equipment{}).Where("farm_id = ? AND sold = ?", farmID, false).Count(&out.Equipment).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to count equipment")
	}
	if err := db.Model(&models.Animal{}).
		Select("COALESCE(SUM(count), 0)").
		Where("farm_id = ?", farmID).
		Scan(&out.Animals).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to count animals")
	}

	var entries []models.Finance
	if err := db.Select("type", "amount").Where("farm_id = ?", farmID).Find(&entries).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch finances")
	}
	for _, e := range entries {
		if e.Type == models.FinanceIncome {
			out.Balance = out.Balance.Add(e.Amount)
		} else {
			out.Balance = out.Balance.Sub(e.Amount)
		}
	}
	return out, nil
}

type ChartPoint struct {
	Label   string          `json:"label"`
	Year    int             `json:"year"`
	Month   int             `json:"month,omitempty"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type ChartTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type Chart struct {
	FarmID uint         `json:"farm_id"`
	Period string       `json:"period"`
	From   string       `json:"from"`
	To     string       `json:"to"`
	Points []ChartPoint `json:"points"`
	Totals ChartTotals  `json:"totals"`
}

type bucket struct{ year, month int }

// FinanceChart buckets the ledger into the last count game months (or years)
// up to and including the current one. Buckets before Year 1 are dropped, so
// a young farm gets fewer points than asked for.
func (s *Service) FinanceChart(ctx context.Context, farmID uint, period string, count int) (*Chart, error) {
	switch period {
	case "", PeriodMonthly:
		period = PeriodMonthly
		if count == 0 {
			count = defaultMonths
		}
	case PeriodYearly:
		if count == 0 {
			count = defaultYears
		}
	default:
		return nil, apperr.Validation("period must be monthly or yearly")
	}
	if count < 0 || count > maxPoints {
		return nil, apperr.Validation("count must be between 1 and %d", maxPoints)
	}

	db := s.db.WithContext(ctx)
	now, err := calendar.Current(db, farmID)
	if err != nil {
		return nil, err
	}

	buckets := make([]bucket, 0, count)
	cur := bucket{year: now.Year, month: now.Month}
	if period == PeriodYearly {
		cur.month = 0
	}
	for range count {
		if cur.year < 1 {
			break
		}
		buckets = append(buckets, cur)
		if period == PeriodYearly {
			cur.year--
			continue
		}
		cur.month--
		if cur.month == 0 {
			cur.year, cur.month = cur.year-1, calendar.MonthsPerYear
		}
	}
	first := buckets[len(buckets)-1]

	var entries []models.Finance
	if err := db.Select("game_year", "game_month", "type", "amount").
		Where("farm_id = ? AND game_year BETWEEN ? AND ?", farmID, first.year, now.Year).
		Find(&entries).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch finances")
	}

	index := make(map[bucket]*ChartPoint, len(buckets))
	points := make([]ChartPoint, len(buckets))
	for i, b := range buckets {
		// oldest first
		p := &points[len(buckets)-1-i]
		p.Year, p.Month = b.year, b.month
		p.Label = label(b)
		index[b] = p
	}

	out := &Chart{FarmID: farmID, Period: period, From: label(first), To: label(buckets[0])}
	for _, e := range entries {
		key := bucket{year: e.GameYear, month: e.GameMonth}
		if period == PeriodYearly {
			key.month = 0
		}
		p, ok := index[key]
		if !ok {
			continue
		}
		switch e.Type {
		case models.FinanceIncome:
			p.Income = p.Income.Add(e.Amount)
		case models.FinanceExpense:
			p.Expense = p.Expense.Add(e.Amount)
		}
	}

	for i := range points {
		p := &points[i]
		p.Net = p.Income.Sub(p.Expense)
		out.Totals.Income = out.Totals.Income.Add(p.Income)
		out.Totals.Expense = out.Totals.Expense.Add(p.Expense)
	}
	out.Totals.Net = out.Totals.Income.Sub(out.Totals.Expense)
	out.Points = points
	return out, nil
}

func label(b bucket) string {
	if b.month == 0 {
		return fmt.Sprintf("Year %d", b.year)
	}
	return fmt.Sprintf("Year %d, Month %d", b.year, b.month)
}
