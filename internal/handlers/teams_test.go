package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/handlers/testutil"
	"github.com/charlesng35/teamforge/internal/models"
)

type idPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func createTeam(t *testing.T, env *testutil.Env, token string, maxMembers int) string {
	t.Helper()
	w := env.Request(http.MethodPost, "/api/teams", map[string]any{"name": "Builders", "max_members": maxMembers}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var team idPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &team)
	return team.ID
}

func TestTeamInvitationFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.SignUp("owner", models.RoleOrganizer)
	invitee := env.SignUp("invitee", models.RoleUser)
	stranger := env.SignUp("stranger", models.RoleUser)

	teamID := createTeam(t, env, owner.Token, 2)

	w := env.Request(http.MethodPost, "/api/teams/"+teamID+"/invitations", map[string]string{"invitee_id": invitee.Account.ID}, stranger.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "FORBIDDEN", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/invitations", map[string]string{
		"invitee_id": invitee.Account.ID,
		"message":    "join us",
	}, owner.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invitation idPayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &invitation)
	require.Equal(t, "pending", invitation.Status)

	w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/invitations", map[string]string{"invitee_id": invitee.Account.ID}, owner.Token)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "DUPLICATE_INVITATION", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/invitations/"+invitation.ID+"/respond", map[string]string{"action": "accept"}, stranger.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodPost, "/api/invitations/"+invitation.ID+"/respond", map[string]string{"action": "maybe"}, invitee.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodPost, "/api/invitations/"+invitation.ID+"/respond", map[string]string{"action": "accept"}, invitee.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &invitation)
	require.Equal(t, "accepted", invitation.Status)

	w = env.Request(http.MethodPost, "/api/invitations/"+invitation.ID+"/respond", map[string]string{"action": "decline"}, invitee.Token)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "INVITATION_ALREADY_RESOLVED", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodGet, "/api/teams/"+teamID+"/members", nil, stranger.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var members []struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &members)
	require.Len(t, members, 2)

	// The team is now full.
	w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/invitations", map[string]string{"invitee_id": stranger.Account.ID}, owner.Token)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "TEAM_CAPACITY_EXCEEDED", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/invitations/missing/respond", map[string]string{"action": "accept"}, invitee.Token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "INVITATION_NOT_FOUND", testutil.ErrorCode(t, w))
}

func TestTeamJoinRequestFlow(t *testing.T) {
	for name, opts := range map[string][]testutil.EnvOption{
		"atomic":     nil,
		"sequential": {testutil.WithoutAtomicGroups()},
	} {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewEnv(t, opts...)
			owner := env.SignUp("owner", models.RoleOrganizer)
			applicant := env.SignUp("applicant", models.RoleUser)

			teamID := createTeam(t, env, owner.Token, 3)

			w := env.Request(http.MethodPost, "/api/teams/"+teamID+"/join-requests", map[string]string{"message": "hi"}, applicant.Token)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			var request idPayload
			testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &request)

			w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/join-requests", nil, applicant.Token)
			require.Equal(t, http.StatusBadRequest, w.Code)

			w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/join-requests", map[string]string{}, applicant.Token)
			require.Equal(t, http.StatusConflict, w.Code)
			require.Equal(t, "DUPLICATE_JOIN_REQUEST", testutil.ErrorCode(t, w))

			w = env.Request(http.MethodPost, "/api/join-requests/"+request.ID+"/respond", map[string]string{"action": "approve"}, applicant.Token)
			require.Equal(t, http.StatusForbidden, w.Code)

			w = env.Request(http.MethodPost, "/api/join-requests/"+request.ID+"/respond", map[string]string{"action": "approve"}, owner.Token)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &request)
			require.Equal(t, "approved", request.Status)

			w = env.Request(http.MethodPost, "/api/teams/"+teamID+"/join-requests", map[string]string{}, applicant.Token)
			require.Equal(t, http.StatusConflict, w.Code)
			require.Equal(t, "TEAM_ALREADY_MEMBER", testutil.ErrorCode(t, w))
		})
	}
}

func TestTeamRoutesRequireAuth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodPost, "/api/teams", map[string]any{"name": "x", "max_members": 2}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	session := env.SignUp("someone", models.RoleUser)
	w = env.Request(http.MethodGet, "/api/teams/unknown", nil, session.Token)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "TEAM_NOT_FOUND", testutil.ErrorCode(t, w))
}
