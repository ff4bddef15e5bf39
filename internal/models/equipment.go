package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Equipment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	FarmID        uint            `gorm:"index;not null" json:"farm_id"`
	Model         string          `gorm:"size:100;not null" json:"model"`
	Category      string          `gorm:"size:50;not null" json:"category"`
	Brand         string          `gorm:"size:50;not null" json:"brand"`
	Owned         bool            `gorm:"not null" json:"owned"`
	Leased        bool            `gorm:"not null;default:false" json:"leased"`
	DailyCost     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"daily_cost"`
	Condition     int             `gorm:"not null" json:"condition"`
	UserID        *uint           `json:"user_id"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purchase_price"`
	PurchaseDate  *string         `gorm:"size:40" json:"purchase_date"`
	Sold          bool            `gorm:"not null;default:false" json:"sold"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"sale_price"`
	SaleDate      *string         `gorm:"size:40" json:"sale_date"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
