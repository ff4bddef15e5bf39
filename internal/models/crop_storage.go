package models

import "time"

type StorageUnit string

const (
	UnitLiters StorageUnit = "liters"
	UnitBales  StorageUnit = "bales"
)

// CropStorage is the running stock of one crop on one farm. Liquid crops use
// QuantityStored; bale crops use the six size/shape buckets (and
// QuantityStored for yield converted without a bucket).
type CropStorage struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	FarmID          uint        `gorm:"uniqueIndex:idx_crop_storage_farm_crop;not null" json:"farm_id"`
	CropName        string      `gorm:"size:100;uniqueIndex:idx_crop_storage_farm_crop;not null" json:"crop_name"`
	StorageUnit     StorageUnit `gorm:"size:10;not null" json:"storage_unit"`
	QuantityStored  float64     `gorm:"not null;default:0" json:"quantity_stored"`
	Bale180Round    float64     `gorm:"column:bale_180_round;not null;default:0" json:"-"`
	Bale180Square   float64     `gorm:"column:bale_180_square;not null;default:0" json:"-"`
	Bale220Round    float64     `gorm:"column:bale_220_round;not null;default:0" json:"-"`
	Bale220Square   float64     `gorm:"column:bale_220_square;not null;default:0" json:"-"`
	Bale240Round    float64     `gorm:"column:bale_240_round;not null;default:0" json:"-"`
	Bale240Square   float64     `gorm:"column:bale_240_square;not null;default:0" json:"-"`
	StorageLocation *string     `gorm:"size:100" json:"storage_location"`
	Notes           *string     `gorm:"type:text" json:"notes"`
	LastUpdated     time.Time   `gorm:"autoUpdateTime" json:"last_updated"`
}

func (CropStorage) TableName() string { return "crop_storage" }
