package models

// Profile holds the public details shown for an account.
type Profile struct {
	BaseModel

	AccountID string `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	Headline  string `json:"headline"`
	Bio       string `json:"bio"`
}
