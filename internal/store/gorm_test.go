package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/database/testutil"
	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/store"
)

func newStore(t *testing.T, opts ...store.Option) *store.GormStore {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	st, err := store.NewGormStore(db, opts...)
	require.NoError(t, err)
	return st
}

func seedAccount(t *testing.T, st store.RelationshipStore, email string) *models.Account {
	t.Helper()
	account := &models.Account{Name: email, Email: email, Role: models.RoleUser, IsActive: true}
	require.NoError(t, st.CreateAccount(context.Background(), account))
	return account
}

func seedTeam(t *testing.T, st store.RelationshipStore, ownerID string, maxMembers int) *models.Team {
	t.Helper()
	ctx := context.Background()
	team := &models.Team{Name: "team", OwnerID: ownerID, MaxMembers: maxMembers, IsActive: true}
	require.NoError(t, st.CreateTeam(ctx, team))
	require.NoError(t, st.CreateMembership(ctx, &models.Membership{
		TeamID:   team.ID,
		UserID:   ownerID,
		Role:     models.MembershipRoleOwner,
		IsActive: true,
		JoinedAt: time.Now().UTC(),
	}))
	return team
}

func TestNewGormStoreRequiresDB(t *testing.T) {
	_, err := store.NewGormStore(nil)
	require.Error(t, err)
}

func TestGetAccountNotFound(t *testing.T) {
	st := newStore(t)
	_, err := st.GetAccount(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	st := newStore(t)
	seedAccount(t, st, "dup@example.com")

	err := st.CreateAccount(context.Background(), &models.Account{Name: "x", Email: "dup@example.com", Role: models.RoleUser, IsActive: true})
	require.ErrorIs(t, err, store.ErrConflict)
	require.True(t, store.IsUniqueViolation(err))
}

func TestRewriteAccountIdentity(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	hash := "hash"
	account := &models.Account{Name: "a", Email: "a@example.com", PasswordHash: &hash, Role: models.RoleUser, IsActive: true}
	require.NoError(t, st.CreateAccount(ctx, account))

	require.NoError(t, st.RewriteAccountIdentity(ctx, account.ID, models.DeletedName(account.ID), models.DeletedEmail(account.ID)))

	reloaded, err := st.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, reloaded.IsDeleted())
	require.Nil(t, reloaded.PasswordHash)
	require.False(t, reloaded.IsActive)

	require.ErrorIs(t, st.RewriteAccountIdentity(ctx, "missing", "n", "e"), store.ErrNotFound)
}

func TestCreateTeamKeepsExplicitInactiveFlag(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	team := &models.Team{Name: "t", OwnerID: "o", MaxMembers: 3, IsActive: false}
	require.NoError(t, st.CreateTeam(ctx, team))

	reloaded, err := st.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)
}

func TestMembershipCountsAndDeactivation(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	owner := seedAccount(t, st, "owner@example.com")
	member := seedAccount(t, st, "member@example.com")
	team := seedTeam(t, st, owner.ID, 3)

	require.NoError(t, st.CreateMembership(ctx, &models.Membership{
		TeamID: team.ID, UserID: member.ID, Role: models.MembershipRoleMember, IsActive: true, JoinedAt: time.Now().UTC(),
	}))

	count, err := st.CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	err = st.CreateMembership(ctx, &models.Membership{
		TeamID: team.ID, UserID: member.ID, Role: models.MembershipRoleMember, IsActive: true, JoinedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrConflict)

	affected, err := st.DeactivateMembershipsByUser(ctx, member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	ok, err := st.HasActiveMembership(ctx, team.ID, member.ID)
	require.NoError(t, err)
	require.False(t, ok)

	affected, err = st.DeactivateMembershipsByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	active, err := st.ListActiveMemberships(ctx, team.ID)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestResolveInvitationIsConditional(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	invitation := &models.Invitation{
		TeamID: "team", InviterID: "owner", InviteeID: "invitee",
		Status: models.InvitationPending, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, st.CreateInvitation(ctx, invitation))

	found, err := st.FindPendingInvitation(ctx, "team", "invitee")
	require.NoError(t, err)
	require.Equal(t, invitation.ID, found.ID)

	now := time.Now().UTC()
	require.NoError(t, st.ResolveInvitation(ctx, invitation.ID, models.InvitationAccepted, now))
	require.ErrorIs(t, st.ResolveInvitation(ctx, invitation.ID, models.InvitationDeclined, now), store.ErrStaleState)

	reloaded, err := st.GetInvitation(ctx, invitation.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationAccepted, reloaded.Status)
	require.NotNil(t, reloaded.RespondedAt)

	_, err = st.FindPendingInvitation(ctx, "team", "invitee")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPendingJoinRequestUniqueness(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	first := &models.JoinRequest{TeamID: "team", UserID: "user", Status: models.JoinRequestPending, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, st.CreateJoinRequest(ctx, first))

	second := &models.JoinRequest{TeamID: "team", UserID: "user", Status: models.JoinRequestPending, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.ErrorIs(t, st.CreateJoinRequest(ctx, second), store.ErrConflict)

	require.NoError(t, st.ResolveJoinRequest(ctx, first.ID, models.JoinRequestRejected, time.Now().UTC()))
	require.NoError(t, st.CreateJoinRequest(ctx, second))
}

func TestPruneRemovesOnlyLongExpiredRows(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)

	old := &models.Invitation{TeamID: "t1", InviterID: "o", InviteeID: "a", Status: models.InvitationDeclined, ExpiresAt: now.Add(-48 * time.Hour)}
	stale := &models.Invitation{TeamID: "t1", InviterID: "o", InviteeID: "c", Status: models.InvitationPending, ExpiresAt: now.Add(-48 * time.Hour)}
	accepted := &models.Invitation{TeamID: "t1", InviterID: "o", InviteeID: "d", Status: models.InvitationAccepted, ExpiresAt: now.Add(-48 * time.Hour)}
	fresh := &models.Invitation{TeamID: "t1", InviterID: "o", InviteeID: "b", Status: models.InvitationPending, ExpiresAt: now.Add(time.Hour)}
	for _, invitation := range []*models.Invitation{old, stale, accepted, fresh} {
		require.NoError(t, st.CreateInvitation(ctx, invitation))
	}

	removed, err := st.PruneInvitations(ctx, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	for _, gone := range []*models.Invitation{old, stale} {
		_, err = st.GetInvitation(ctx, gone.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	}
	for _, kept := range []*models.Invitation{accepted, fresh} {
		got, err := st.GetInvitation(ctx, kept.ID)
		require.NoError(t, err)
		require.Equal(t, kept.Status, got.Status)
	}

	pending := &models.JoinRequest{TeamID: "t1", UserID: "u", Status: models.JoinRequestPending, ExpiresAt: now.Add(-48 * time.Hour)}
	rejected := &models.JoinRequest{TeamID: "t1", UserID: "v", Status: models.JoinRequestRejected, ExpiresAt: now.Add(-48 * time.Hour)}
	approved := &models.JoinRequest{TeamID: "t1", UserID: "w", Status: models.JoinRequestApproved, ExpiresAt: now.Add(-48 * time.Hour)}
	for _, request := range []*models.JoinRequest{pending, rejected, approved} {
		require.NoError(t, st.CreateJoinRequest(ctx, request))
	}

	removed, err = st.PruneJoinRequests(ctx, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	got, err := st.GetJoinRequest(ctx, approved.ID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestApproved, got.Status)
}

func TestUpsertSwipeOverwritesDirection(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	require.NoError(t, st.UpsertSwipe(ctx, &models.SwipeEvent{SwiperID: "a", SwipeeID: "b", Direction: models.SwipeLike}))
	require.NoError(t, st.UpsertSwipe(ctx, &models.SwipeEvent{SwiperID: "a", SwipeeID: "b", Direction: models.SwipePass}))

	swipe, err := st.GetSwipe(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, models.SwipePass, swipe.Direction)

	_, err = st.GetSwipe(ctx, "b", "a")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateMatchOncePerPair(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	created, err := st.CreateMatch(ctx, &models.Match{UserAID: "b", UserBID: "a", IsActive: true})
	require.NoError(t, err)
	require.True(t, created)

	created, err = st.CreateMatch(ctx, &models.Match{UserAID: "a", UserBID: "b", IsActive: true})
	require.NoError(t, err)
	require.False(t, created)

	match, err := st.FindMatch(ctx, "b", "a")
	require.NoError(t, err)
	require.Equal(t, "a", match.UserAID)
	require.Equal(t, "b", match.UserBID)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	boom := context.Canceled

	err := st.Atomic(ctx, func(tx store.RelationshipStore) error {
		if err := tx.CreateInvitation(ctx, &models.Invitation{TeamID: "t", InviterID: "o", InviteeID: "i", Status: models.InvitationPending}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.FindPendingInvitation(ctx, "t", "i")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAtomicDisabled(t *testing.T) {
	st := newStore(t, store.WithAtomicGroups(false))
	require.False(t, st.SupportsAtomic())

	called := false
	err := st.Atomic(context.Background(), func(store.RelationshipStore) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, store.ErrAtomicUnsupported)
	require.False(t, called)
}
