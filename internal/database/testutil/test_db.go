package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/database"
)

// Option adjusts how MustOpenTestDB prepares the database.
type Option func(*options)

type options struct {
	migrate bool
	cfg     database.Config
}

// WithAutoMigrate creates every table before the database is handed out.
func WithAutoMigrate() Option {
	return func(o *options) { o.migrate = true }
}

// WithDatabase overrides the connection settings; the default is a private
// in-memory SQLite database.
func WithDatabase(cfg database.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// MustOpenTestDB opens a database for a single test and closes it on cleanup.
func MustOpenTestDB(t testing.TB, opts ...Option) *gorm.DB {
	t.Helper()

	o := options{cfg: database.Config{Driver: "sqlite"}}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.Open(o.cfg)
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = database.Close(db) })

	if o.migrate {
		require.NoError(t, database.AutoMigrate(db), "migrate test database")
	}
	return db
}
