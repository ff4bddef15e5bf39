package gameimport

import (
	"math"
	"strings"
)

const otherCategory = "Other"

var vehicleCategories = map[string]string{
	"tractor":         "Tractors",
	"combineDrivable": "Harvesters",
	"trailer":         "Trailers",
	"cultivator":      "Cultivators",
	"sowingMachine":   "Planters",
	"mower":           "Mowers",
	"forageWagon":     "Trailers",
	"teleHandler":     "Loaders",
	"car":             "Vehicles",
}

// GrowthStage rounds the game's growth state down to a quarter: "0", "25",
// "50", "75" or "100".
func GrowthStage(state, maxState float64) string {
	if maxState <= 0 {
		return "0"
	}
	pct := math.Round(state / maxState * 100)
	switch {
	case pct >= 100:
		return "100"
	case pct >= 75:
		return "75"
	case pct >= 50:
		return "50"
	case pct >= 25:
		return "25"
	default:
		return "0"
	}
}

func WeedsState(level float64) string {
	switch {
	case level <= 0:
		return "None"
	case level <= 100:
		return "Low"
	case level <= 200:
		return "Medium"
	default:
		return "High"
	}
}

func FertiliserState(level float64) string {
	switch {
	case level <= 0:
		return "None"
	case level <= 33:
		return "Stage 1"
	case level <= 66:
		return "Stage 2"
	default:
		return "Stage 3"
	}
}

func VehicleCategory(vehicleType string) string {
	if c, ok := vehicleCategories[vehicleType]; ok {
		return c
	}
	return otherCategory
}

// Condition turns a damage fraction into a 0..100 condition.
func Condition(damage float64) int {
	c := int(math.Round((1 - damage) * 100))
	return min(max(c, 0), 100)
}

// Crop returns nil for the game's empty fruit types.
func Crop(fruitType string) *string {
	s := strings.TrimSpace(fruitType)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}
