package finance

import (
	"context"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/calendar"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
)

type MonthSummary struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type YearSummary struct {
	FarmID  uint            `json:"farm_id"`
	Year    int             `json:"year"`
	Months  []MonthSummary  `json:"months"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlySummary totals one game year per game month. All twelve months are
// present, empty ones with zeros.
func (s *Service) MonthlySummary(ctx context.Context, farmID uint, year int) (*YearSummary, error) {
	if year < 1 {
		return nil, apperr.Validation("Year must be at least 1")
	}

	var entries []models.Finance
	if err := s.db.WithContext(ctx).
		Select("game_month", "type", "amount").
		Where("farm_id = ? AND game_year = ?", farmID, year).
		Find(&entries).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch finances")
	}

	out := &YearSummary{FarmID: farmID, Year: year, Months: make([]MonthSummary, calendar.MonthsPerYear)}
	for i := range out.Months {
		out.Months[i].Month = i + 1
	}

	for _, e := range entries {
		if e.GameMonth < 1 || e.GameMonth > calendar.MonthsPerYear {
			continue
		}
		m := &out.Months[e.GameMonth-1]
		switch e.Type {
		case models.FinanceIncome:
			m.Income = m.Income.Add(e.Amount)
		case models.FinanceExpense:
			m.Expense = m.Expense.Add(e.Amount)
		}
	}

	for i := range out.Months {
		m := &out.Months[i]
		m.Net = m.Income.Sub(m.Expense)
		out.Income = out.Income.Add(m.Income)
		out.Expense = out.Expense.Add(m.Expense)
	}
	out.Net = out.Income.Sub(out.Expense)
	return out, nil
}
