package services

import (
	"context"
	"net/http"

	apperrors "github.com/charlesng35/teamforge/pkg/errors"
)

var (
	// ErrAccountNotFound indicates the account does not exist or has been deleted.
	ErrAccountNotFound = apperrors.NotFound("ACCOUNT_NOT_FOUND", "Account not found")
	// ErrEmailTaken indicates another account already uses the email address.
	ErrEmailTaken = apperrors.Conflict("EMAIL_TAKEN", "Email address is already registered")

	// ErrTeamNotFound indicates the team does not exist or is no longer active.
	ErrTeamNotFound = apperrors.NotFound("TEAM_NOT_FOUND", "Team not found")
	// ErrNotTeamOwner is returned when a non-owner attempts an owner-only action.
	ErrNotTeamOwner = apperrors.Forbidden("Only the team owner may perform this action")
	// ErrTeamCapacityExceeded indicates the team has no free seats.
	ErrTeamCapacityExceeded = apperrors.Conflict("TEAM_CAPACITY_EXCEEDED", "Team is full")
	// ErrAlreadyMember signals the account already holds an active membership.
	ErrAlreadyMember = apperrors.Conflict("TEAM_ALREADY_MEMBER", "Account is already a member of the team")

	// ErrInvitationNotFound indicates no invitation matches the id.
	ErrInvitationNotFound = apperrors.NotFound("INVITATION_NOT_FOUND", "Invitation not found")
	// ErrNotInvitee is returned when someone other than the invitee responds.
	ErrNotInvitee = apperrors.Forbidden("Only the invitee may respond to this invitation")
	// ErrInvitationAlreadyResolved indicates the invitation is no longer pending.
	ErrInvitationAlreadyResolved = apperrors.Conflict("INVITATION_ALREADY_RESOLVED", "Invitation has already been answered")
	// ErrInvitationExpired indicates the invitation passed its expiry.
	ErrInvitationExpired = apperrors.Gone("INVITATION_EXPIRED", "Invitation has expired")
	// ErrDuplicateInvitation indicates a pending invitation already exists for the pair.
	ErrDuplicateInvitation = apperrors.Conflict("DUPLICATE_INVITATION", "A pending invitation already exists")

	// ErrJoinRequestNotFound indicates no join request matches the id.
	ErrJoinRequestNotFound = apperrors.NotFound("JOIN_REQUEST_NOT_FOUND", "Join request not found")
	// ErrJoinRequestAlreadyResolved indicates the request is no longer pending.
	ErrJoinRequestAlreadyResolved = apperrors.Conflict("JOIN_REQUEST_ALREADY_RESOLVED", "Join request has already been answered")
	// ErrJoinRequestExpired indicates the request passed its expiry.
	ErrJoinRequestExpired = apperrors.Gone("JOIN_REQUEST_EXPIRED", "Join request has expired")
	// ErrDuplicateJoinRequest indicates a pending request already exists for the pair.
	ErrDuplicateJoinRequest = apperrors.Conflict("DUPLICATE_JOIN_REQUEST", "A pending join request already exists")

	// ErrInvalidPair covers self swipes, empty ids and unknown accounts.
	ErrInvalidPair = apperrors.New("INVALID_PAIR", "Swipe must target another existing account", http.StatusBadRequest)
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
