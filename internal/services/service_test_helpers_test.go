package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamforge/internal/database/testutil"
	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/store"
)

type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time { return c.current }

func (c *testClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type serviceFixture struct {
	db         *gorm.DB
	store      *store.GormStore
	clock      *testClock
	accounts   *AccountService
	membership *MembershipService
	matches    *MatchService
}

func newServiceFixture(t *testing.T, opts ...store.Option) *serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	st, err := store.NewGormStore(db, opts...)
	require.NoError(t, err)
	exec, err := store.NewExecutor(st)
	require.NoError(t, err)

	clock := &testClock{current: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}

	accounts, err := NewAccountService(exec)
	require.NoError(t, err)
	membership, err := NewMembershipService(exec,
		WithMembershipClock(clock.Now),
		WithInvitationTTL(48*time.Hour),
		WithJoinRequestTTL(72*time.Hour),
	)
	require.NoError(t, err)
	matches, err := NewMatchService(exec)
	require.NoError(t, err)

	return &serviceFixture{
		db:         db,
		store:      st,
		clock:      clock,
		accounts:   accounts,
		membership: membership,
		matches:    matches,
	}
}

func (f *serviceFixture) signUp(t *testing.T, name string) *models.Account {
	t.Helper()
	account, err := f.accounts.SignUp(context.Background(), SignUpInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return account
}

func (f *serviceFixture) createTeam(t *testing.T, owner *models.Account, maxMembers int) *models.Team {
	t.Helper()
	team, err := f.membership.CreateTeam(context.Background(), CreateTeamInput{
		OwnerID:    owner.ID,
		Name:       owner.Name + "'s team",
		MaxMembers: maxMembers,
	})
	require.NoError(t, err)
	return team
}

func (f *serviceFixture) activeMembers(t *testing.T, teamID string) int64 {
	t.Helper()
	count, err := f.store.CountActiveMembers(context.Background(), teamID)
	require.NoError(t, err)
	return count
}
