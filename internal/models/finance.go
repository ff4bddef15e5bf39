package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FinanceType string

const (
	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"
)

func (t FinanceType) Valid() bool {
	return t == FinanceIncome || t == FinanceExpense
}

// Finance is a ledger posting dated on the farm's game calendar. Amount is
// never negative; Type carries the sign.
type Finance struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	FarmID          uint            `gorm:"index;not null" json:"farm_id"`
	GameYear        int             `gorm:"not null" json:"game_year"`
	GameMonth       int             `gorm:"not null" json:"game_month"`
	GameDay         int             `gorm:"not null" json:"game_day"`
	Type            FinanceType     `gorm:"size:10;not null" json:"type"`
	Category        string          `gorm:"size:100;not null" json:"category"`
	Description     string          `gorm:"size:255;not null" json:"description"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	CreatedByUserID *uint           `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}
