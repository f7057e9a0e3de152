package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/api"
	"github.com/charlesng35/teamforge/internal/app"
	"github.com/charlesng35/teamforge/internal/app/maintenance"
	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/cache"
	"github.com/charlesng35/teamforge/internal/database"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/internal/store"
	"github.com/charlesng35/teamforge/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Redis   *cache.RedisStore
	Cache   cache.Store
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, cache, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbCache := cache.NewDatabaseStore(stack.DB)
	stack.Cache = dbCache
	if cfg.Cache.UseRedis() {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisStoreConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
		} else {
			stack.Cache = stack.Redis
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	codec, err := iauth.NewSessionCodec(cfg.Auth.SessionCodecConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session codec: %w", err)
	}
	logouts, err := iauth.NewLogoutRegistry(stack.Cache, nil)
	if err != nil {
		return nil, fmt.Errorf("initialise logout registry: %w", err)
	}

	relationships, err := store.NewGormStore(stack.DB, store.WithAtomicGroups(cfg.Database.AtomicGroups))
	if err != nil {
		return nil, fmt.Errorf("initialise relationship store: %w", err)
	}
	if !relationships.SupportsAtomic() {
		log.Warn("atomic groups disabled; multi-write operations run sequentially")
	}
	exec, err := store.NewExecutor(relationships, store.WithExecutorLogger(logger.WithModule("store")))
	if err != nil {
		return nil, fmt.Errorf("initialise executor: %w", err)
	}

	accounts, err := services.NewAccountService(exec)
	if err != nil {
		return nil, fmt.Errorf("initialise account service: %w", err)
	}
	membership, err := services.NewMembershipService(exec,
		services.WithInvitationTTL(cfg.Membership.InvitationTTL),
		services.WithJoinRequestTTL(cfg.Membership.JoinRequestTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise membership service: %w", err)
	}
	matches, err := services.NewMatchService(exec)
	if err != nil {
		return nil, fmt.Errorf("initialise match service: %w", err)
	}

	if err := ensureBootstrapAdmin(ctx, cfg, accounts, log); err != nil {
		return nil, err
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(dbCache, relationships,
			maintenance.WithRetention(cfg.Maintenance.PruneRetention),
			maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
			maintenance.WithPruneSchedule(cfg.Maintenance.PruneSchedule),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:         stack.DB,
		Config:     cfg,
		Codec:      codec,
		Logouts:    logouts,
		Accounts:   accounts,
		Membership: membership,
		Matches:    matches,
		RateStore:  middleware.NewCacheRateStore(stack.Cache),
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func ensureBootstrapAdmin(ctx context.Context, cfg *app.Config, accounts *services.AccountService, log *zap.Logger) error {
	if !cfg.Auth.BootstrapAdminEnabled() {
		return nil
	}

	bootstrap := cfg.Auth.Bootstrap
	name := strings.TrimSpace(bootstrap.Name)
	if name == "" {
		name = "Administrator"
	}

	account, created, err := accounts.EnsureAdmin(ctx, name, bootstrap.Email, bootstrap.Password)
	if err != nil {
		return fmt.Errorf("provision bootstrap admin: %w", err)
	}
	if created {
		log.Info("bootstrap admin created", zap.String("account_id", account.ID))
	}
	return nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			<-stopCtx.Done()
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}
