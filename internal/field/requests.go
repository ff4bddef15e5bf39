package field

import (
	"strings"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	FieldNumber     int      `json:"field_number" validate:"required,gt=0"`
	Name            string   `json:"name" validate:"required"`
	SizeHectares    *float64 `json:"size_hectares" validate:"required,gte=0"`
	CurrentCrop     *string  `json:"current_crop"`
	GrowthStage     *string  `json:"growth_stage"`
	FertiliserState *string  `json:"fertiliser_state"`
	WeedsState      *string  `json:"weeds_state"`
	Notes           *string  `json:"notes"`
}

// UpdateRequest is a partial update. Keys left out are not written; null
// clears a nullable attribute. The bale and straw keys only steer the
// storage posting of a harvest and are never stored on the field.
type UpdateRequest struct {
	Name            httpx.Optional[string]  `json:"name"`
	SizeHectares    httpx.Optional[float64] `json:"size_hectares"`
	CurrentCrop     httpx.Optional[string]  `json:"current_crop"`
	GrowthStage     httpx.Optional[string]  `json:"growth_stage"`
	FertiliserState httpx.Optional[string]  `json:"fertiliser_state"`
	WeedsState      httpx.Optional[string]  `json:"weeds_state"`
	Notes           httpx.Optional[string]  `json:"notes"`
	ActualYield     httpx.Optional[float64] `json:"actual_yield"`

	BaleSize       *int     `json:"bale_size"`
	BaleShape      *string  `json:"bale_shape"`
	ProduceStraw   bool     `json:"produce_straw"`
	StrawYield     *float64 `json:"straw_yield"`
	StrawBaleSize  *int     `json:"straw_bale_size"`
	StrawBaleShape *string  `json:"straw_bale_shape"`
}

func (r UpdateRequest) columns() (map[string]any, error) {
	cols := map[string]any{}

	if r.Name.Set {
		name := httpx.TrimmedString(r.Name)
		if name == nil {
			return nil, apperr.Validation("Name cannot be empty")
		}
		cols["name"] = *name
	}
	if r.SizeHectares.Set {
		if r.SizeHectares.Value == nil || *r.SizeHectares.Value < 0 {
			return nil, apperr.Validation("Size must be zero or more hectares")
		}
		cols["size_hectares"] = *r.SizeHectares.Value
	}
	if r.ActualYield.Set {
		if r.ActualYield.Value != nil && *r.ActualYield.Value < 0 {
			return nil, apperr.Validation("Actual yield must not be negative")
		}
		cols["actual_yield"] = r.ActualYield.Value
	}

	nullable := map[string]httpx.Optional[string]{
		"current_crop":     r.CurrentCrop,
		"growth_stage":     r.GrowthStage,
		"fertiliser_state": r.FertiliserState,
		"weeds_state":      r.WeedsState,
	}
	for col, opt := range nullable {
		if opt.Set {
			cols[col] = httpx.TrimmedString(opt)
		}
	}
	if r.Notes.Set {
		cols["notes"] = r.Notes.Value
	}
	return cols, nil
}

// harvestYield is the posted yield of a Harvested update, zero when there
// is nothing to post.
func (r UpdateRequest) harvestYield() float64 {
	stage := httpx.TrimmedString(r.GrowthStage)
	if stage == nil || *stage != models.StageHarvested || r.ActualYield.Value == nil {
		return 0
	}
	return max(*r.ActualYield.Value, 0)
}

// BulkPatch is the subset of attributes a bulk update may write.
type BulkPatch struct {
	CurrentCrop     httpx.Optional[string] `json:"current_crop"`
	GrowthStage     httpx.Optional[string] `json:"growth_stage"`
	FertiliserState httpx.Optional[string] `json:"fertiliser_state"`
	WeedsState      httpx.Optional[string] `json:"weeds_state"`
	Notes           httpx.Optional[string] `json:"notes"`
}

func (p BulkPatch) columns() map[string]any {
	cols := map[string]any{}
	for col, opt := range map[string]httpx.Optional[string]{
		"current_crop":     p.CurrentCrop,
		"growth_stage":     p.GrowthStage,
		"fertiliser_state": p.FertiliserState,
		"weeds_state":      p.WeedsState,
	} {
		if opt.Set {
			cols[col] = httpx.TrimmedString(opt)
		}
	}
	if p.Notes.Set {
		cols["notes"] = p.Notes.Value
	}
	return cols
}

type BulkRequest struct {
	FieldIDs []uint    `json:"field_ids"`
	Updates  BulkPatch `json:"updates"`
}

type BulkResult struct {
	Success      bool           `json:"success"`
	UpdatedCount int            `json:"updated_count"`
	Fields       []models.Field `json:"fields"`
}

// ProductionRequest carries the planting record and running costs. Costs
// are written exactly as given and never reset by a harvest.
type ProductionRequest struct {
	PlantedYear    httpx.Optional[int]             `json:"planted_year"`
	PlantedMonth   httpx.Optional[int]             `json:"planted_month"`
	PlantedDay     httpx.Optional[int]             `json:"planted_day"`
	SeedingRate    httpx.Optional[float64]         `json:"seeding_rate"`
	SeedCost       httpx.Optional[decimal.Decimal] `json:"seed_cost"`
	FertilizerCost httpx.Optional[decimal.Decimal] `json:"fertilizer_cost"`
	LimeCost       httpx.Optional[decimal.Decimal] `json:"lime_cost"`
	WeedingCost    httpx.Optional[decimal.Decimal] `json:"weeding_cost"`
	FuelCost       httpx.Optional[decimal.Decimal] `json:"fuel_cost"`
	EquipmentCost  httpx.Optional[decimal.Decimal] `json:"equipment_cost"`
	OtherCosts     httpx.Optional[decimal.Decimal] `json:"other_costs"`
	ExpectedYield  httpx.Optional[float64]         `json:"expected_yield"`
}

func (r ProductionRequest) columns() (map[string]any, error) {
	cols := map[string]any{}

	for col, opt := range map[string]httpx.Optional[int]{
		"planted_year":  r.PlantedYear,
		"planted_month": r.PlantedMonth,
		"planted_day":   r.PlantedDay,
	} {
		if !opt.Set {
			continue
		}
		if opt.Value != nil && *opt.Value < 1 {
			return nil, apperr.Validation("%s must be at least 1", col)
		}
		cols[col] = opt.Value
	}
	if r.PlantedMonth.Value != nil && *r.PlantedMonth.Value > 12 {
		return nil, apperr.Validation("planted_month must be between 1 and 12")
	}

	for col, opt := range map[string]httpx.Optional[float64]{
		"seeding_rate":   r.SeedingRate,
		"expected_yield": r.ExpectedYield,
	} {
		if !opt.Set {
			continue
		}
		if opt.Value != nil && *opt.Value < 0 {
			return nil, apperr.Validation("%s must not be negative", col)
		}
		cols[col] = opt.Value
	}

	for col, opt := range map[string]httpx.Optional[decimal.Decimal]{
		"seed_cost":       r.SeedCost,
		"fertilizer_cost": r.FertilizerCost,
		"lime_cost":       r.LimeCost,
		"weeding_cost":    r.WeedingCost,
		"fuel_cost":       r.FuelCost,
		"equipment_cost":  r.EquipmentCost,
		"other_costs":     r.OtherCosts,
	} {
		if !opt.Set {
			continue
		}
		cost := decimal.Zero
		if opt.Value != nil {
			cost = *opt.Value
		}
		if cost.IsNegative() {
			return nil, apperr.Validation("%s must not be negative", col)
		}
		cols[col] = cost
	}

	if len(cols) == 0 {
		return nil, apperr.Validation("No production fields to update")
	}
	return cols, nil
}

func isStrawCrop(crop string) bool {
	switch strings.ToLower(strings.TrimSpace(crop)) {
	case "wheat", "barley", "oat", "sorghum", "rye", "corn":
		return true
	}
	return false
}
