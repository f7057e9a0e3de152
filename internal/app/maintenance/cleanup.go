package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/teamforge/pkg/logger"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultCacheSpec = "@hourly"
	defaultPruneSpec = "@daily"
)

// CachePurger removes cache entries whose expiry has passed.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RequestPruner removes invitations and join requests that expired before a cutoff.
type RequestPruner interface {
	PruneInvitations(ctx context.Context, expiredBefore time.Time) (int64, error)
	PruneJoinRequests(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// Cleaner coordinates background maintenance: purging expired cache entries and
// pruning invitations and join requests whose expiry is older than the retention
// window. Expired rows inside the window are kept so responses still report them
// as expired.
type Cleaner struct {
	cache     CachePurger
	requests  RequestPruner
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention time.Duration

	cacheSchedule string
	pruneSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetention adjusts how long expired invitations and join requests are kept.
func WithRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.retention = d
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache purging.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithPruneSchedule overrides the cron specification for request pruning.
func WithPruneSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.pruneSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency skips
// the corresponding job.
func NewCleaner(cache CachePurger, requests RequestPruner, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		cache:         cache,
		requests:      requests,
		now:           time.Now,
		retention:     defaultRetention,
		cacheSchedule: defaultCacheSpec,
		pruneSchedule: defaultPruneSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one job is enabled.
func (c *Cleaner) Start() error {
	if c.cache == nil && c.requests == nil {
		return nil
	}

	if c.cache != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if err := c.purgeCache(context.Background()); err != nil {
				c.log.Warn("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.requests != nil {
		if _, err := c.cron.AddFunc(c.pruneSchedule, func() {
			if err := c.pruneRequests(context.Background()); err != nil {
				c.log.Warn("request pruning failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job in turn, combining their failures.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.cache != nil {
		errs = multierr.Append(errs, c.purgeCache(ctx))
	}
	if c.requests != nil {
		errs = multierr.Append(errs, c.pruneRequests(ctx))
	}
	return errs
}

func (c *Cleaner) purgeCache(ctx context.Context) error {
	purged, err := c.cache.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	if purged > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("count", purged))
	}
	return nil
}

func (c *Cleaner) pruneRequests(ctx context.Context) error {
	cutoff := c.now().UTC().Add(-c.retention)

	var errs error
	invitations, err := c.requests.PruneInvitations(ctx, cutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("prune invitations: %w", err))
	}
	joinRequests, err := c.requests.PruneJoinRequests(ctx, cutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("prune join requests: %w", err))
	}

	if invitations > 0 || joinRequests > 0 {
		c.log.Info("pruned expired membership requests",
			zap.Int64("invitations", invitations),
			zap.Int64("join_requests", joinRequests),
			zap.Time("cutoff", cutoff),
		)
	}
	return errs
}
