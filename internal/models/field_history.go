package models

import "time"

// FieldHistory is append-only. Rows are never updated through the API.
type FieldHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FieldID     uint      `gorm:"index;not null" json:"field_id"`
	Crop        string    `gorm:"size:100;not null" json:"crop"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	GrowthStage string    `gorm:"size:50" json:"growth_stage"`
	GameYear    int       `gorm:"not null" json:"game_year"`
	GameMonth   int       `gorm:"not null" json:"game_month"`
	GameDay     int       `gorm:"not null" json:"game_day"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

func (FieldHistory) TableName() string { return "field_history" }
