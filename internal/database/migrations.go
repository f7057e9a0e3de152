package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/models"
)

// partialUniqueIndexes back the "at most one active/pending row" invariants with the
// database itself. MySQL has no partial indexes; there the service checks are the
// only guard.
var partialUniqueIndexes = []struct {
	name  string
	table string
	cols  string
	where string
}{
	{"idx_memberships_active_pair", "memberships", "team_id, user_id", "is_active"},
	{"idx_invitations_pending_pair", "invitations", "team_id, invitee_id", "status = 'pending'"},
	{"idx_join_requests_pending_pair", "join_requests", "team_id, user_id", "status = 'pending'"},
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.AutoMigrate(
		&models.Account{},
		&models.Profile{},
		&models.Team{},
		&models.Membership{},
		&models.Invitation{},
		&models.JoinRequest{},
		&models.SwipeEvent{},
		&models.Match{},
		&models.CacheEntry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return ensurePartialIndexes(db)
}

func ensurePartialIndexes(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
	default:
		return nil
	}

	for _, idx := range partialUniqueIndexes {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s) WHERE %s", idx.name, idx.table, idx.cols, idx.where)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
