package app

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/charlesng35/teamforge/internal/auth"
	apperrors "github.com/charlesng35/teamforge/pkg/errors"
)

// ValidateRuntime checks the startup preconditions that cannot be defaulted. A
// missing session secret is fatal; it is never generated.
func ValidateRuntime(cfg *Config) error {
	if cfg == nil {
		return apperrors.ErrConfig.WithInternal(fmt.Errorf("config is nil"))
	}

	secret := strings.TrimSpace(cfg.Auth.Session.Secret)
	if secret == "" {
		return auth.ErrMissingSecret
	}
	if len(secret) < minSessionSecretLength {
		return apperrors.ErrConfig.WithInternal(fmt.Errorf("auth.session.secret must be at least %d characters", minSessionSecretLength))
	}

	if cfg.Maintenance.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		for key, spec := range map[string]string{
			"maintenance.cache_schedule": cfg.Maintenance.CacheSchedule,
			"maintenance.prune_schedule": cfg.Maintenance.PruneSchedule,
		} {
			if strings.TrimSpace(spec) == "" {
				continue
			}
			if _, err := parser.Parse(spec); err != nil {
				return apperrors.ErrConfig.WithInternal(fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	return nil
}
