package auth

import (
	"context"
	"errors"
	"time"

	"github.com/charlesng35/teamforge/internal/cache"
	"github.com/charlesng35/teamforge/pkg/crypto"
)

const logoutKeyPrefix = "logout:"

// LogoutRegistry records short lived "logged out" markers for tokens the client
// discarded. Markers expire together with the token they refer to.
type LogoutRegistry struct {
	store cache.Store
	now   func() time.Time
}

// NewLogoutRegistry constructs a registry backed by store.
func NewLogoutRegistry(store cache.Store, clock func() time.Time) (*LogoutRegistry, error) {
	if store == nil {
		return nil, errors.New("logout: cache store is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &LogoutRegistry{store: store, now: clock}, nil
}

// Revoke marks token as logged out until expiresAt. Tokens already past their
// expiry need no marker.
func (r *LogoutRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return nil
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, logoutKey(token), []byte("1"), ttl)
}

// IsLoggedOut reports whether a marker exists for token.
func (r *LogoutRegistry) IsLoggedOut(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, ok, err := r.store.Get(ctx, logoutKey(token))
	return ok, err
}

func logoutKey(token string) string {
	return logoutKeyPrefix + crypto.Digest(token)
}
