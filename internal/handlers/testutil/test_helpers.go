package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/api"
	"github.com/charlesng35/teamforge/internal/app"
	iauth "github.com/charlesng35/teamforge/internal/auth"
	"github.com/charlesng35/teamforge/internal/cache"
	sharedtestutil "github.com/charlesng35/teamforge/internal/database/testutil"
	"github.com/charlesng35/teamforge/internal/middleware"
	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/services"
	"github.com/charlesng35/teamforge/internal/store"
	"github.com/charlesng35/teamforge/pkg/response"
)

const testSessionSecret = "test-suite-super-secret-key-32-bytes!!"

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	atomicGroups bool
	rateLimit    int
}

// WithoutAtomicGroups builds the environment on a store that rejects atomic groups.
func WithoutAtomicGroups() EnvOption {
	return func(cfg *envConfig) { cfg.atomicGroups = false }
}

// WithAuthRateLimit overrides the per-client budget of the auth endpoints.
func WithAuthRateLimit(requests int) EnvOption {
	return func(cfg *envConfig) { cfg.rateLimit = requests }
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Codec    *iauth.SessionCodec
	Accounts *services.AccountService
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	settings := envConfig{atomicGroups: true, rateLimit: 1000}
	for _, opt := range opts {
		opt(&settings)
	}

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := &app.Config{
		Auth: app.AuthConfig{
			Session:   app.SessionSettings{Secret: testSessionSecret, Issuer: "test-suite", TTL: time.Hour},
			RateLimit: app.RateLimitSettings{Requests: settings.rateLimit, Window: time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	codec, err := iauth.NewSessionCodec(cfg.Auth.SessionCodecConfig())
	require.NoError(t, err)

	cacheStore := cache.NewDatabaseStore(db)
	logouts, err := iauth.NewLogoutRegistry(cacheStore, nil)
	require.NoError(t, err)

	relationships, err := store.NewGormStore(db, store.WithAtomicGroups(settings.atomicGroups))
	require.NoError(t, err)
	exec, err := store.NewExecutor(relationships)
	require.NoError(t, err)

	accounts, err := services.NewAccountService(exec)
	require.NoError(t, err)
	membership, err := services.NewMembershipService(exec)
	require.NoError(t, err)
	matches, err := services.NewMatchService(exec)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Dependencies{
		DB:         db,
		Config:     cfg,
		Codec:      codec,
		Logouts:    logouts,
		Accounts:   accounts,
		Membership: membership,
		Matches:    matches,
		RateStore:  middleware.NewCacheRateStore(cacheStore),
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		Codec:    codec,
		Accounts: accounts,
	}
}

// SessionPayload mirrors the handler sign-up/login response payload.
type SessionPayload struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Account   AccountPayload `json:"account"`
}

// AccountPayload captures the account fields returned from auth endpoints.
type AccountPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// SignUp registers a new account with a random email through the API and returns its session.
func (e *Env) SignUp(name string, role models.AccountRole) SessionPayload {
	e.T.Helper()

	payload := map[string]string{
		"name":     name,
		"email":    name + "-" + uuid.NewString()[:8] + "@example.com",
		"password": "correct-horse-battery",
		"role":     string(role),
	}

	w := e.Request(http.MethodPost, "/api/auth/signup", payload, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	var result SessionPayload
	DecodeInto(e.T, DecodeResponse(e.T, w).Data, &result)
	require.NotEmpty(e.T, result.Token)
	return result
}

// CreateAdmin provisions an administrator directly and returns a session token for it.
func (e *Env) CreateAdmin() (*models.Account, string) {
	e.T.Helper()

	email := "admin-" + uuid.NewString()[:8] + "@example.com"
	account, created, err := e.Accounts.EnsureAdmin(context.Background(), "Admin", email, "correct-horse-battery")
	require.NoError(e.T, err)
	require.True(e.T, created)

	token, err := e.Codec.Issue(account.ID, account.Role)
	require.NoError(e.T, err)
	return account, token
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// ErrorCode returns the error code of a failed response.
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := DecodeResponse(t, w)
	require.False(t, resp.Success, w.Body.String())
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
