package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/handlers/testutil"
	"github.com/charlesng35/teamforge/internal/models"
)

func TestAuthSignUpLoginMeLogout(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Ada",
		"email":    "Ada@Example.com",
		"password": "correct-horse-battery",
		"role":     "organizer",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session testutil.SessionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &session)
	require.Equal(t, "ada@example.com", session.Account.Email)
	require.Equal(t, string(models.RoleOrganizer), session.Account.Role)
	require.NotEmpty(t, session.Token)
	require.NotContains(t, w.Body.String(), "password")

	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login testutil.SessionPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &login)

	w = env.Request(http.MethodGet, "/api/auth/me", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		Account testutil.AccountPayload `json:"account"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &me)
	require.Equal(t, session.Account.ID, me.Account.ID)

	w = env.Request(http.MethodPost, "/api/auth/logout", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/auth/me", nil, login.Token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out one token leaves the other session usable.
	w = env.Request(http.MethodGet, "/api/auth/me", nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthSignUpValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	cases := map[string]map[string]string{
		"missing name":   {"email": "a@example.com", "password": "correct-horse-battery"},
		"bad email":      {"name": "A", "email": "nope", "password": "correct-horse-battery"},
		"short password": {"name": "A", "email": "a@example.com", "password": "short"},
		"admin role":     {"name": "A", "email": "a@example.com", "password": "correct-horse-battery", "role": "admin"},
	}
	for name, payload := range cases {
		w := env.Request(http.MethodPost, "/api/auth/signup", payload, "")
		require.Equal(t, http.StatusBadRequest, w.Code, name)
		require.Equal(t, "BAD_REQUEST", testutil.ErrorCode(t, w), name)
	}

	env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "A", "email": "taken@example.com", "password": "correct-horse-battery",
	}, "")
	w := env.Request(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "B", "email": "TAKEN@example.com", "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "EMAIL_TAKEN", testutil.ErrorCode(t, w))
}

func TestAuthRejectsTamperedToken(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.SignUp("grace", models.RoleUser)

	tampered := []byte(session.Token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	w := env.Request(http.MethodGet, "/api/auth/me", nil, string(tampered))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "UNAUTHORIZED", testutil.ErrorCode(t, w))
}

func TestAuthRateLimit(t *testing.T) {
	env := testutil.NewEnv(t, testutil.WithAuthRateLimit(2))

	payload := map[string]string{"email": "nobody@example.com", "password": "whatever-password"}
	for i := 0; i < 2; i++ {
		w := env.Request(http.MethodPost, "/api/auth/login", payload, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := env.Request(http.MethodPost, "/api/auth/login", payload, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", testutil.ErrorCode(t, w))
}
