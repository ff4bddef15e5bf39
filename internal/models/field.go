package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Growth stages that append a history entry when a field lands on them.
const (
	StageHarvested  = "Harvested"
	StagePlowed     = "Plowed"
	StageCultivated = "Cultivated"
	StageSeeded     = "Seeded"
)

// Field is one numbered plot on a farm. A field without CurrentCrop never
// carries a GrowthStage.
type Field struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	FarmID          uint     `gorm:"uniqueIndex:idx_fields_farm_number;not null" json:"farm_id"`
	FieldNumber     int      `gorm:"uniqueIndex:idx_fields_farm_number;not null" json:"field_number"`
	Name            string   `gorm:"size:100;not null" json:"name"`
	SizeHectares    float64  `gorm:"not null" json:"size_hectares"`
	CurrentCrop     *string  `gorm:"size:100" json:"current_crop"`
	GrowthStage     *string  `gorm:"size:50" json:"growth_stage"`
	FertiliserState *string  `gorm:"size:50" json:"fertiliser_state"`
	WeedsState      *string  `gorm:"size:50" json:"weeds_state"`
	Notes           *string  `gorm:"type:text" json:"notes"`
	PlantedYear     *int     `json:"planted_year"`
	PlantedMonth    *int     `json:"planted_month"`
	PlantedDay      *int     `json:"planted_day"`
	SeedingRate     *float64 `json:"seeding_rate"`

	SeedCost       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"seed_cost"`
	FertilizerCost decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"fertilizer_cost"`
	LimeCost       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"lime_cost"`
	WeedingCost    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"weeding_cost"`
	FuelCost       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"fuel_cost"`
	EquipmentCost  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"equipment_cost"`
	OtherCosts     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"other_costs"`

	ExpectedYield *float64 `json:"expected_yield"`
	ActualYield   *float64 `json:"actual_yield"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	History []FieldHistory `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
