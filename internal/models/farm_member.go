package models

import "time"

type FarmRole string

const (
	FarmRoleOwner  FarmRole = "owner"
	FarmRoleEditor FarmRole = "editor"
	FarmRoleViewer FarmRole = "viewer"
)

func (r FarmRole) Valid() bool {
	switch r {
	case FarmRoleOwner, FarmRoleEditor, FarmRoleViewer:
		return true
	}
	return false
}

// CanEdit reports whether the role may mutate farm data.
func (r FarmRole) CanEdit() bool {
	return r == FarmRoleOwner || r == FarmRoleEditor
}

type FarmMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	FarmID   uint      `gorm:"uniqueIndex:idx_farm_members_farm_user;not null" json:"farm_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_farm_members_farm_user;index;not null" json:"user_id"`
	User     *User     `json:"user,omitempty"`
	Role     FarmRole  `gorm:"size:10;not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
