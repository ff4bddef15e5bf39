package models

import "time"

const (
	DefaultDaysPerMonth = 28
	DefaultCurrency     = "GBP"
)

// Farm carries the in-game clock. CurrentYear/Month/Day only change through
// the calendar service.
type Farm struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	MapName         string    `gorm:"size:100;not null" json:"map_name"`
	Currency        string    `gorm:"size:3;not null;default:GBP" json:"currency"`
	CreatedByUserID uint      `gorm:"index;not null" json:"created_by_user_id"`
	CurrentYear     int       `gorm:"not null;default:1" json:"current_year"`
	CurrentMonth    int       `gorm:"not null;default:1" json:"current_month"`
	CurrentDay      int       `gorm:"not null;default:1" json:"current_day"`
	DaysPerMonth    int       `gorm:"not null;default:28" json:"days_per_month"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Members      []FarmMember  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	JoinCodes    []JoinCode    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Fields       []Field       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Storage      []CropStorage `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Finances     []Finance     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Equipment    []Equipment   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Animals      []Animal      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ActivityLogs []ActivityLog `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
