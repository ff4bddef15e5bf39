package models

import "time"

type ActivityAction string

const (
	ActivityCreate ActivityAction = "create"
	ActivityUpdate ActivityAction = "update"
	ActivityDelete ActivityAction = "delete"
	ActivitySell   ActivityAction = "sell"
)

type ActivityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	FarmID   uint   `gorm:"index;not null" json:"farm_id"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"`

	// "field", "storage", "farm", ...
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   *uint  `json:"entity_id"`

	Action      ActivityAction `gorm:"size:20;not null" json:"action"`
	Description string         `gorm:"size:255" json:"description"`
}
