package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/handlers/testutil"
	"github.com/charlesng35/teamforge/internal/models"
)

func TestAdminDeleteAccount(t *testing.T) {
	env := testutil.NewEnv(t)
	_, adminToken := env.CreateAdmin()
	owner := env.SignUp("owner", models.RoleOrganizer)
	member := env.SignUp("member", models.RoleUser)

	teamID := createTeam(t, env, owner.Token, 5)
	w := env.Request(http.MethodPost, "/api/teams/"+teamID+"/join-requests", map[string]string{}, member.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var request idPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &request)
	w = env.Request(http.MethodPost, "/api/join-requests/"+request.ID+"/respond", map[string]string{"action": "approve"}, owner.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodDelete, "/api/admin/accounts/"+owner.Account.ID, nil, member.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodDelete, "/api/admin/accounts/"+owner.Account.ID, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var deleted testutil.AccountPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &deleted)
	require.Equal(t, models.DeletedName(owner.Account.ID), deleted.Name)
	require.Equal(t, models.DeletedEmail(owner.Account.ID), deleted.Email)

	// The owned team went down with its owner.
	w = env.Request(http.MethodGet, "/api/teams/"+teamID, nil, member.Token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.Request(http.MethodDelete, "/api/admin/accounts/"+owner.Account.ID, nil, adminToken)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "ACCOUNT_NOT_FOUND", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/auth/login", map[string]string{
		"email": owner.Account.Email, "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteSelf(t *testing.T) {
	env := testutil.NewEnv(t)
	session := env.SignUp("leaver", models.RoleUser)

	w := env.Request(http.MethodDelete, "/api/auth/me", nil, session.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodGet, "/api/auth/me", nil, session.Token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
