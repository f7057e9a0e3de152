package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/app"
	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/services"
)

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	DB         *gorm.DB
	Config     *app.Config
	Codec      *iauth.SessionCodec
	Logouts    *iauth.LogoutRegistry
	Accounts   *services.AccountService
	Membership *services.MembershipService
	Matches    *services.MatchService
	RateStore  middleware.RateStore
}

func (d Dependencies) validate() error {
	switch {
	case d.DB == nil:
		return errors.New("database handle must be provided")
	case d.Config == nil:
		return errors.New("config must be provided")
	case d.Codec == nil:
		return errors.New("session codec must be provided")
	case d.Accounts == nil || d.Membership == nil || d.Matches == nil:
		return errors.New("services must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	registerHealthRoutes(r, deps)
	registerMetricsRoute(r, cfg)

	requireAuth := middleware.Auth(deps.Codec, deps.Logouts)
	requests, window := cfg.Auth.RateLimitPolicy()
	limitAuth := middleware.RateLimit(deps.RateStore, requests, window)

	api := r.Group("/api")
	registerAuthRoutes(api, deps, requireAuth, limitAuth)

	protected := api.Group("")
	protected.Use(requireAuth)
	registerTeamRoutes(protected, deps)
	registerMatchRoutes(protected, deps)
	registerAdminRoutes(protected, deps)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func registerMetricsRoute(r *gin.Engine, cfg *app.Config) {
	if !cfg.Monitoring.Prometheus.Enabled {
		return
	}
	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		endpoint = "/metrics"
	}
	r.GET(endpoint, gin.WrapH(promhttp.Handler()))
}
