// Package storage is the per-farm crop stock ledger. Liquid crops are kept
// in liters; grass, straw, hay and silage are kept as bales.
package storage

import (
	"strings"

	"farmsim-backend/internal/models"
)

// LitersPerBale converts a liter yield into a bale count when no bale size
// and shape are given.
const LitersPerBale = 12.5

var baleKeywords = []string{"grass", "straw", "hay", "silage"}

type Unit struct {
	Unit   models.StorageUnit
	Factor float64
}

// ClassifyUnit is a case-insensitive substring match on the crop name.
func ClassifyUnit(cropName string) Unit {
	name := strings.ToLower(strings.TrimSpace(cropName))
	for _, kw := range baleKeywords {
		if strings.Contains(name, kw) {
			return Unit{Unit: models.UnitBales, Factor: LitersPerBale}
		}
	}
	return Unit{Unit: models.UnitLiters, Factor: 1}
}

type BaleShape string

const (
	ShapeRound  BaleShape = "round"
	ShapeSquare BaleShape = "square"
)

// Bucket is one of the six bale columns.
type Bucket struct {
	Size  int       `json:"size"`
	Shape BaleShape `json:"shape"`
}

var bucketColumns = map[Bucket]string{
	{180, ShapeRound}:  "bale_180_round",
	{180, ShapeSquare}: "bale_180_square",
	{220, ShapeRound}:  "bale_220_round",
	{220, ShapeSquare}: "bale_220_square",
	{240, ShapeRound}:  "bale_240_round",
	{240, ShapeSquare}: "bale_240_square",
}

// Buckets lists the bale columns in display order.
var Buckets = []Bucket{
	{180, ShapeRound}, {180, ShapeSquare},
	{220, ShapeRound}, {220, ShapeSquare},
	{240, ShapeRound}, {240, ShapeSquare},
}

func (b Bucket) Column() (string, bool) {
	col, ok := bucketColumns[b]
	return col, ok
}

// BucketFrom builds a bucket from optional request values. It returns nil
// unless both size and shape are present.
func BucketFrom(size *int, shape *string) *Bucket {
	if size == nil || shape == nil || *size == 0 || *shape == "" {
		return nil
	}
	return &Bucket{Size: *size, Shape: BaleShape(strings.ToLower(*shape))}
}

func bucketValue(row *models.CropStorage, b Bucket) float64 {
	switch b {
	case Bucket{180, ShapeRound}:
		return row.Bale180Round
	case Bucket{180, ShapeSquare}:
		return row.Bale180Square
	case Bucket{220, ShapeRound}:
		return row.Bale220Round
	case Bucket{220, ShapeSquare}:
		return row.Bale220Square
	case Bucket{240, ShapeRound}:
		return row.Bale240Round
	case Bucket{240, ShapeSquare}:
		return row.Bale240Square
	}
	return 0
}

func setBucket(row *models.CropStorage, b Bucket, v float64) {
	switch b {
	case Bucket{180, ShapeRound}:
		row.Bale180Round = v
	case Bucket{180, ShapeSquare}:
		row.Bale180Square = v
	case Bucket{220, ShapeRound}:
		row.Bale220Round = v
	case Bucket{220, ShapeSquare}:
		row.Bale220Square = v
	case Bucket{240, ShapeRound}:
		row.Bale240Round = v
	case Bucket{240, ShapeSquare}:
		row.Bale240Square = v
	}
}
