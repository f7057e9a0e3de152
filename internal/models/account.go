package models

import (
	"fmt"
	"strings"
)

// AccountRole is the coarse role carried by an account and its session claims.
type AccountRole string

const (
	RoleUser      AccountRole = "user"
	RoleOrganizer AccountRole = "organizer"
	RoleAdmin     AccountRole = "admin"
)

// Valid reports whether the role is one of the known account roles.
func (r AccountRole) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	default:
		return false
	}
}

const (
	// DeletedNamePrefix marks the name of a soft-deleted account.
	DeletedNamePrefix = "deleted_user_"
	// DeletedEmailDomain is the reserved domain soft-deleted emails are rewritten to.
	DeletedEmailDomain = "deleted.invalid"
)

// Account is a sign-in identity. Accounts are never physically removed; deletion
// rewrites Name and Email to reserved markers.
type Account struct {
	BaseModel

	Name         string      `gorm:"not null" json:"name"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash *string     `json:"-"`
	Role         AccountRole `gorm:"type:varchar(16);not null;default:user" json:"role"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
}

// IsDeleted reports whether the account carries the soft-delete markers.
func (a *Account) IsDeleted() bool {
	if a == nil {
		return false
	}
	return strings.HasPrefix(a.Name, DeletedNamePrefix) &&
		strings.HasSuffix(a.Email, "@"+DeletedEmailDomain)
}

// DeletedName returns the marker name for the account id.
func DeletedName(accountID string) string {
	return DeletedNamePrefix + accountID
}

// DeletedEmail returns a unique marker email for the account id.
func DeletedEmail(accountID string) string {
	return fmt.Sprintf("deleted+%s@%s", accountID, DeletedEmailDomain)
}
