package models

import "time"

// MembershipRole distinguishes the owner from regular members.
type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "owner"
	MembershipRoleMember MembershipRole = "member"
)

// Membership records that an account belongs to a team. At most one active row
// exists per (TeamID, UserID).
type Membership struct {
	BaseModel

	TeamID   string         `gorm:"type:uuid;index:idx_memberships_team_user;not null" json:"team_id"`
	UserID   string         `gorm:"type:uuid;index:idx_memberships_team_user;index;not null" json:"user_id"`
	Role     MembershipRole `gorm:"type:varchar(16);not null" json:"role"`
	IsActive bool           `gorm:"not null;default:true" json:"is_active"`
	JoinedAt time.Time      `json:"joined_at"`
}
