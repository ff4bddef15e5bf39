package models

import "time"

type JoinCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FarmID    uint      `gorm:"index;not null" json:"farm_id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
