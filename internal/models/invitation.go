package models

import "time"

// InvitationStatus is the lifecycle state of an Invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation is an owner-initiated offer to join a team. Terminal once it leaves pending.
type Invitation struct {
	BaseModel

	TeamID      string           `gorm:"type:uuid;index:idx_invitations_team_invitee;not null" json:"team_id"`
	InviterID   string           `gorm:"type:uuid;not null" json:"inviter_id"`
	InviteeID   string           `gorm:"type:uuid;index:idx_invitations_team_invitee;not null" json:"invitee_id"`
	Message     string           `json:"message"`
	Status      InvitationStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	ExpiresAt   time.Time        `gorm:"index" json:"expires_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// Expired reports whether the invitation can no longer be answered at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
