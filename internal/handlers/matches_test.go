package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/handlers/testutil"
	"github.com/charlesng35/teamforge/internal/models"
)

type swipePayload struct {
	Matched bool   `json:"matched"`
	MatchID string `json:"match_id"`
}

func swipe(t *testing.T, env *testutil.Env, token, swipeeID, direction string) (*swipePayload, int) {
	t.Helper()
	w := env.Request(http.MethodPost, "/api/swipes", map[string]string{"swipee_id": swipeeID, "direction": direction}, token)
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var result swipePayload
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &result)
	return &result, w.Code
}

func TestSwipeCreatesMutualMatch(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.SignUp("alice", models.RoleUser)
	bob := env.SignUp("bob", models.RoleUser)

	result, code := swipe(t, env, alice.Token, bob.Account.ID, "like")
	require.Equal(t, http.StatusOK, code)
	require.False(t, result.Matched)

	result, code = swipe(t, env, bob.Token, alice.Account.ID, "LIKE")
	require.Equal(t, http.StatusOK, code)
	require.True(t, result.Matched)
	require.NotEmpty(t, result.MatchID)

	again, _ := swipe(t, env, alice.Token, bob.Account.ID, "LIKE")
	require.True(t, again.Matched)
	require.Equal(t, result.MatchID, again.MatchID)

	for _, token := range []string{alice.Token, bob.Token} {
		w := env.Request(http.MethodGet, "/api/matches", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var matches []struct {
			ID string `json:"id"`
		}
		testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &matches)
		require.Len(t, matches, 1)
		require.Equal(t, result.MatchID, matches[0].ID)
	}
}

func TestSwipeValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.SignUp("alice", models.RoleUser)

	_, code := swipe(t, env, alice.Token, alice.Account.ID, "LIKE")
	require.Equal(t, http.StatusBadRequest, code)

	_, code = swipe(t, env, alice.Token, "unknown-account", "LIKE")
	require.Equal(t, http.StatusBadRequest, code)

	w := env.Request(http.MethodPost, "/api/swipes", map[string]string{"swipee_id": "x", "direction": "SUPERLIKE"}, alice.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "BAD_REQUEST", testutil.ErrorCode(t, w))

	w = env.Request(http.MethodPost, "/api/swipes", map[string]string{"swipee_id": alice.Account.ID, "direction": "LIKE"}, alice.Token)
	require.Equal(t, "INVALID_PAIR", testutil.ErrorCode(t, w))
}
