package app

import (
	"strings"
	"time"

	"github.com/charlesng35/teamforge/internal/auth"
)

const (
	defaultRateLimitRequests = 20
	defaultRateLimitWindow   = time.Minute
	minSessionSecretLength   = 16
)

// SessionCodecConfig converts AuthConfig into the parameters expected by the session codec.
func (c AuthConfig) SessionCodecConfig() auth.SessionConfig {
	ttl := c.Session.TTL
	if ttl <= 0 {
		ttl = auth.DefaultSessionTTL
	}
	return auth.SessionConfig{
		Secret: strings.TrimSpace(c.Session.Secret),
		Issuer: strings.TrimSpace(c.Session.Issuer),
		TTL:    ttl,
	}
}

// RateLimitPolicy returns the request budget and window applied to auth endpoints.
func (c AuthConfig) RateLimitPolicy() (int, time.Duration) {
	requests := c.RateLimit.Requests
	if requests <= 0 {
		requests = defaultRateLimitRequests
	}
	window := c.RateLimit.Window
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return requests, window
}

// BootstrapAdminEnabled reports whether an administrator should be provisioned at startup.
func (c AuthConfig) BootstrapAdminEnabled() bool {
	return strings.TrimSpace(c.Bootstrap.Email) != "" && c.Bootstrap.Password != ""
}
