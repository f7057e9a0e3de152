package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesInternalCause(t *testing.T) {
	err := ErrConsistencyFailure.WithInternal(stdErrors.New("tx aborted"))
	require.Equal(t, "The operation could not be applied consistently: tx aborted", err.Error())
	require.Equal(t, "Team not found", NotFound("TEAM_NOT_FOUND", "Team not found").Error())

	var nilErr *AppError
	require.Equal(t, "<nil>", nilErr.Error())
}

func TestWithInternalLeavesSentinelUntouched(t *testing.T) {
	cause := stdErrors.New("disk full")
	copied := ErrInternalServer.WithInternal(cause)

	require.NotSame(t, ErrInternalServer, copied)
	require.Nil(t, ErrInternalServer.Internal)
	require.ErrorIs(t, copied, cause)
}

func TestConstructorsSetStatus(t *testing.T) {
	cases := map[*AppError]int{
		NotFound("INVITATION_NOT_FOUND", "x"):   http.StatusNotFound,
		Conflict("DUPLICATE_INVITATION", "x"):   http.StatusConflict,
		Gone("INVITATION_EXPIRED", "x"):         http.StatusGone,
		Forbidden("only the invitee may reply"): http.StatusForbidden,
		NewBadRequest("name is required"):      http.StatusBadRequest,
	}
	for err, status := range cases {
		require.Equal(t, status, err.StatusCode, err.Code)
	}
	require.Equal(t, ErrForbidden.Code, Forbidden("x").Code)
}

func TestFromError(t *testing.T) {
	require.Same(t, ErrNotFound, FromError(fmt.Errorf("lookup: %w", ErrNotFound)))
	require.Nil(t, FromError(nil))

	out := FromError(stdErrors.New("raw"))
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.Error(t, out.Internal)
}

func TestIsComparesCodes(t *testing.T) {
	wrapped := fmt.Errorf("respond: %w", ErrConsistencyFailure.WithInternal(stdErrors.New("tx aborted")))
	require.ErrorIs(t, wrapped, ErrConsistencyFailure)
	require.NotErrorIs(t, wrapped, ErrForbidden)

	require.ErrorIs(t, Forbidden("owner only"), ErrForbidden)
	require.True(t, HasCode(wrapped, "CONSISTENCY_FAILURE"))
	require.False(t, HasCode(stdErrors.New("plain"), "CONSISTENCY_FAILURE"))
}

func TestIsDomain(t *testing.T) {
	require.True(t, IsDomain(fmt.Errorf("invite: %w", Conflict("TEAM_CAPACITY_EXCEEDED", "Team is full"))))
	require.False(t, IsDomain(stdErrors.New("connection reset")))
}
