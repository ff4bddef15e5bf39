package models

import "time"

type Animal struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FarmID       uint      `gorm:"index;not null" json:"farm_id"`
	Type         string    `gorm:"size:50;not null" json:"type"`
	Count        int       `gorm:"not null;default:0" json:"count"`
	FeedPerDay   float64   `gorm:"not null;default:0" json:"feed_per_day"`
	Productivity float64   `gorm:"not null;default:0" json:"productivity"`
	Notes        *string   `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
