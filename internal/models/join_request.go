package models

import "time"

// JoinRequestStatus is the lifecycle state of a JoinRequest.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a prospective member asking the team owner for a seat.
type JoinRequest struct {
	BaseModel

	TeamID      string            `gorm:"type:uuid;index:idx_join_requests_team_user;not null" json:"team_id"`
	UserID      string            `gorm:"type:uuid;index:idx_join_requests_team_user;not null" json:"user_id"`
	Message     string            `json:"message"`
	Status      JoinRequestStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	ExpiresAt   time.Time         `gorm:"index" json:"expires_at"`
	RespondedAt *time.Time        `json:"responded_at,omitempty"`
}

// Expired reports whether the request can no longer be answered at now.
func (r *JoinRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
