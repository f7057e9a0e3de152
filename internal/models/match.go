package models

// Match is a mutual LIKE between two accounts. UserAID sorts before UserBID so the
// unique index covers the unordered pair.
type Match struct {
	BaseModel

	UserAID  string `gorm:"column:user_a_id;type:uuid;uniqueIndex:idx_matches_pair;not null" json:"user_a_id"`
	UserBID  string `gorm:"column:user_b_id;type:uuid;uniqueIndex:idx_matches_pair;not null" json:"user_b_id"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// CanonicalPair orders two account ids the way Match stores them.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
