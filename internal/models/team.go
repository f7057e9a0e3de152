package models

// Team is owned by exactly one account and capped at MaxMembers active memberships,
// the owner's included.
type Team struct {
	BaseModel

	Name       string `gorm:"not null" json:"name"`
	OwnerID    string `gorm:"type:uuid;index;not null" json:"owner_id"`
	MaxMembers int    `gorm:"not null" json:"max_members"`
	IsActive   bool   `gorm:"not null;default:true;index" json:"is_active"`
}
