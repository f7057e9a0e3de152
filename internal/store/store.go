// Package store defines the narrow persistence interface the relationship core
// writes through, plus the executor that applies multi-write plans atomically when
// the backend allows it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/charlesng35/teamforge/internal/models"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("store: unique constraint violated")
	// ErrStaleState indicates a conditional update matched no row because the state
	// moved on since it was read.
	ErrStaleState = errors.New("store: state changed concurrently")
	// ErrAtomicUnsupported indicates the deployment cannot run atomic groups.
	ErrAtomicUnsupported = errors.New("store: atomic groups are not supported by this deployment")
)

// AccountStore persists accounts and their profile records.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// LockAccount loads the account and, inside an atomic group, holds a row lock on
	// it until the group ends.
	LockAccount(ctx context.Context, id string) (*models.Account, error)
	// RewriteAccountIdentity replaces name and email, clears the password hash and
	// deactivates the account.
	RewriteAccountIdentity(ctx context.Context, id, name, email string) error
	CreateProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfile(ctx context.Context, accountID string) error
}

// TeamStore persists teams.
type TeamStore interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	// LockTeam loads the team and, inside an atomic group, holds a row lock on it
	// until the group ends.
	LockTeam(ctx context.Context, id string) (*models.Team, error)
	ListActiveTeamsByOwner(ctx context.Context, ownerID string) ([]models.Team, error)
	DeactivateTeam(ctx context.Context, id string) error
}

// MembershipStore persists team memberships.
type MembershipStore interface {
	CreateMembership(ctx context.Context, membership *models.Membership) error
	CountActiveMembers(ctx context.Context, teamID string) (int64, error)
	HasActiveMembership(ctx context.Context, teamID, userID string) (bool, error)
	ListActiveMemberships(ctx context.Context, teamID string) ([]models.Membership, error)
	DeactivateMembershipsByUser(ctx context.Context, userID string) (int64, error)
	DeactivateMembershipsByTeam(ctx context.Context, teamID string) (int64, error)
}

// InvitationStore persists owner-initiated invitations.
type InvitationStore interface {
	CreateInvitation(ctx context.Context, invitation *models.Invitation) error
	GetInvitation(ctx context.Context, id string) (*models.Invitation, error)
	FindPendingInvitation(ctx context.Context, teamID, inviteeID string) (*models.Invitation, error)
	// ResolveInvitation moves a pending invitation to status. ErrStaleState when it
	// is no longer pending.
	ResolveInvitation(ctx context.Context, id string, status models.InvitationStatus, at time.Time) error
	PruneInvitations(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// JoinRequestStore persists member-initiated join requests.
type JoinRequestStore interface {
	CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error
	GetJoinRequest(ctx context.Context, id string) (*models.JoinRequest, error)
	FindPendingJoinRequest(ctx context.Context, teamID, userID string) (*models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, id string, status models.JoinRequestStatus, at time.Time) error
	PruneJoinRequests(ctx context.Context, expiredBefore time.Time) (int64, error)
}

// SwipeStore persists swipes and the matches they produce.
type SwipeStore interface {
	// UpsertSwipe records the direction for the ordered pair, overwriting any
	// previous direction.
	UpsertSwipe(ctx context.Context, swipe *models.SwipeEvent) error
	GetSwipe(ctx context.Context, swiperID, swipeeID string) (*models.SwipeEvent, error)
	FindMatch(ctx context.Context, userA, userB string) (*models.Match, error)
	// CreateMatch inserts the match unless one exists for the pair, reporting
	// whether a row was created.
	CreateMatch(ctx context.Context, match *models.Match) (bool, error)
	ListMatches(ctx context.Context, accountID string) ([]models.Match, error)
}

// RelationshipStore is everything the membership, account and match services need.
type RelationshipStore interface {
	AccountStore
	TeamStore
	MembershipStore
	InvitationStore
	JoinRequestStore
	SwipeStore

	// Atomic runs fn inside a unit of work whose writes all apply or none do.
	// It returns ErrAtomicUnsupported, without calling fn, when the deployment
	// cannot provide one.
	Atomic(ctx context.Context, fn func(tx RelationshipStore) error) error
}
