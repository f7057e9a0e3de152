package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the identifier and audit timestamps shared by every table.
// Rows are never hidden through gorm's soft delete; lifecycle is tracked by
// explicit IsActive and Status columns on the owning model.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID returns a fresh random identifier in the format used for primary keys.
func NewID() string {
	return uuid.NewString()
}

// BeforeCreate assigns an identifier when the caller did not choose one.
func (m *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}
