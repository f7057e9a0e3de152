package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/teamforge/internal/models"
)

// GormStore implements RelationshipStore on top of gorm.
type GormStore struct {
	db     *gorm.DB
	atomic bool
}

// Option configures a GormStore.
type Option func(*GormStore)

// WithAtomicGroups toggles transaction support. Disabling it models a deployment
// whose database cannot group writes, forcing callers onto the sequential path.
func WithAtomicGroups(enabled bool) Option {
	return func(s *GormStore) {
		s.atomic = enabled
	}
}

// NewGormStore constructs a gorm backed RelationshipStore.
func NewGormStore(db *gorm.DB, opts ...Option) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	s := &GormStore{db: db, atomic: true}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// SupportsAtomic reports whether Atomic will open a transaction.
func (s *GormStore) SupportsAtomic() bool {
	return s.atomic
}

// Atomic runs fn in a database transaction bound to a transaction scoped store.
func (s *GormStore) Atomic(ctx context.Context, fn func(tx RelationshipStore) error) error {
	if !s.atomic {
		return ErrAtomicUnsupported
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, atomic: true})
	})
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Accounts

func (s *GormStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("store: account is required")
	}
	return translate(s.conn(ctx).Select("*").Create(account).Error)
}

func (s *GormStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.conn(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := s.conn(ctx).First(&account, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) LockAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) RewriteAccountIdentity(ctx context.Context, id, name, email string) error {
	result := s.conn(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":          name,
			"email":         email,
			"password_hash": nil,
			"is_active":     false,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile == nil {
		return errors.New("store: profile is required")
	}
	return translate(s.conn(ctx).Create(profile).Error)
}

func (s *GormStore) DeleteProfile(ctx context.Context, accountID string) error {
	return s.conn(ctx).Where("account_id = ?", accountID).Delete(&models.Profile{}).Error
}

// Teams

func (s *GormStore) CreateTeam(ctx context.Context, team *models.Team) error {
	if team == nil {
		return errors.New("store: team is required")
	}
	// IsActive carries a default tag; gorm would skip an explicit false on insert.
	return translate(s.conn(ctx).Select("*").Create(team).Error)
}

func (s *GormStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := s.conn(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (s *GormStore) LockTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&team, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

func (s *GormStore) ListActiveTeamsByOwner(ctx context.Context, ownerID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.conn(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at ASC").
		Find(&teams).Error
	return teams, err
}

func (s *GormStore) DeactivateTeam(ctx context.Context, id string) error {
	return s.conn(ctx).Model(&models.Team{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// Memberships

func (s *GormStore) CreateMembership(ctx context.Context, membership *models.Membership) error {
	if membership == nil {
		return errors.New("store: membership is required")
	}
	return translate(s.conn(ctx).Select("*").Create(membership).Error)
}

func (s *GormStore) CountActiveMembers(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Membership{}).
		Where("team_id = ? AND is_active = ?", teamID, true).
		Count(&count).Error
	return count, err
}

func (s *GormStore) HasActiveMembership(ctx context.Context, teamID, userID string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Membership{}).
		Where("team_id = ? AND user_id = ? AND is_active = ?", teamID, userID, true).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) ListActiveMemberships(ctx context.Context, teamID string) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.conn(ctx).
		Where("team_id = ? AND is_active = ?", teamID, true).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (s *GormStore) DeactivateMembershipsByUser(ctx context.Context, userID string) (int64, error) {
	result := s.conn(ctx).Model(&models.Membership{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (s *GormStore) DeactivateMembershipsByTeam(ctx context.Context, teamID string) (int64, error) {
	result := s.conn(ctx).Model(&models.Membership{}).
		Where("team_id = ? AND is_active = ?", teamID, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// Invitations

func (s *GormStore) CreateInvitation(ctx context.Context, invitation *models.Invitation) error {
	if invitation == nil {
		return errors.New("store: invitation is required")
	}
	return translate(s.conn(ctx).Create(invitation).Error)
}

func (s *GormStore) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.conn(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invitation, nil
}

func (s *GormStore) FindPendingInvitation(ctx context.Context, teamID, inviteeID string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.conn(ctx).
		Where("team_id = ? AND invitee_id = ? AND status = ?", teamID, inviteeID, models.InvitationPending).
		First(&invitation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invitation, nil
}

func (s *GormStore) ResolveInvitation(ctx context.Context, id string, status models.InvitationStatus, at time.Time) error {
	result := s.conn(ctx).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, models.InvitationPending).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// PruneInvitations deletes long-expired invitations that never produced a
// membership. Accepted rows are kept as the record behind a membership.
func (s *GormStore) PruneInvitations(ctx context.Context, expiredBefore time.Time) (int64, error) {
	result := s.conn(ctx).
		Where("expires_at < ? AND expires_at > ?", expiredBefore, time.Time{}).
		Where("status IN ?", []models.InvitationStatus{models.InvitationPending, models.InvitationDeclined}).
		Delete(&models.Invitation{})
	return result.RowsAffected, result.Error
}

// Join requests

func (s *GormStore) CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error {
	if request == nil {
		return errors.New("store: join request is required")
	}
	return translate(s.conn(ctx).Create(request).Error)
}

func (s *GormStore) GetJoinRequest(ctx context.Context, id string) (*models.JoinRequest, error) {
	var request models.JoinRequest
	if err := s.conn(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (s *GormStore) FindPendingJoinRequest(ctx context.Context, teamID, userID string) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := s.conn(ctx).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.JoinRequestPending).
		First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (s *GormStore) ResolveJoinRequest(ctx context.Context, id string, status models.JoinRequestStatus, at time.Time) error {
	result := s.conn(ctx).Model(&models.JoinRequest{}).
		Where("id = ? AND status = ?", id, models.JoinRequestPending).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// PruneJoinRequests deletes long-expired requests that were never approved.
func (s *GormStore) PruneJoinRequests(ctx context.Context, expiredBefore time.Time) (int64, error) {
	result := s.conn(ctx).
		Where("expires_at < ? AND expires_at > ?", expiredBefore, time.Time{}).
		Where("status IN ?", []models.JoinRequestStatus{models.JoinRequestPending, models.JoinRequestRejected}).
		Delete(&models.JoinRequest{})
	return result.RowsAffected, result.Error
}

// Swipes and matches

func (s *GormStore) UpsertSwipe(ctx context.Context, swipe *models.SwipeEvent) error {
	if swipe == nil {
		return errors.New("store: swipe is required")
	}
	err := s.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "swipee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).
		Create(swipe).Error
	if err != nil {
		return fmt.Errorf("upsert swipe: %w", err)
	}
	return nil
}

func (s *GormStore) GetSwipe(ctx context.Context, swiperID, swipeeID string) (*models.SwipeEvent, error) {
	var swipe models.SwipeEvent
	err := s.conn(ctx).
		Where("swiper_id = ? AND swipee_id = ?", swiperID, swipeeID).
		First(&swipe).Error
	if err != nil {
		return nil, translate(err)
	}
	return &swipe, nil
}

func (s *GormStore) FindMatch(ctx context.Context, userA, userB string) (*models.Match, error) {
	a, b := models.CanonicalPair(userA, userB)
	var match models.Match
	err := s.conn(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&match).Error
	if err != nil {
		return nil, translate(err)
	}
	return &match, nil
}

// CreateMatch inserts with ON CONFLICT DO NOTHING so a losing racer does not abort
// the surrounding transaction on engines that poison it after a constraint error.
func (s *GormStore) CreateMatch(ctx context.Context, match *models.Match) (bool, error) {
	if match == nil {
		return false, errors.New("store: match is required")
	}
	match.UserAID, match.UserBID = models.CanonicalPair(match.UserAID, match.UserBID)
	result := s.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Select("*").
		Create(match)
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) ListMatches(ctx context.Context, accountID string) ([]models.Match, error) {
	var matches []models.Match
	err := s.conn(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND is_active = ?", accountID, accountID, true).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

var _ RelationshipStore = (*GormStore)(nil)
