package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/store"
	apperrors "github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/metrics"
)

const (
	defaultInvitationTTL  = 7 * 24 * time.Hour
	defaultJoinRequestTTL = 14 * 24 * time.Hour
	maxMessageLength      = 500
)

// MembershipOption customises MembershipService behaviour.
type MembershipOption func(*MembershipService)

// WithInvitationTTL overrides how long invitations stay answerable.
func WithInvitationTTL(d time.Duration) MembershipOption {
	return func(s *MembershipService) {
		if d > 0 {
			s.invitationTTL = d
		}
	}
}

// WithJoinRequestTTL overrides how long join requests stay answerable.
func WithJoinRequestTTL(d time.Duration) MembershipOption {
	return func(s *MembershipService) {
		if d > 0 {
			s.joinRequestTTL = d
		}
	}
}

// WithMembershipClock injects a custom clock primarily for testing.
func WithMembershipClock(clock func() time.Time) MembershipOption {
	return func(s *MembershipService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// MembershipService owns team creation, invitations and join requests.
type MembershipService struct {
	exec           *store.Executor
	store          store.RelationshipStore
	invitationTTL  time.Duration
	joinRequestTTL time.Duration
	now            func() time.Time
}

// NewMembershipService constructs a MembershipService on top of exec.
func NewMembershipService(exec *store.Executor, opts ...MembershipOption) (*MembershipService, error) {
	if exec == nil {
		return nil, errors.New("membership service: executor is required")
	}
	service := &MembershipService{
		exec:           exec,
		store:          exec.Store(),
		invitationTTL:  defaultInvitationTTL,
		joinRequestTTL: defaultJoinRequestTTL,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateTeamInput captures new team metadata.
type CreateTeamInput struct {
	OwnerID    string
	Name       string
	MaxMembers int
}

// CreateTeam registers a team and its owner membership as one unit.
func (s *MembershipService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("team name is required")
	}
	if input.MaxMembers < 1 {
		return nil, apperrors.NewBadRequest("max members must be at least 1")
	}
	if _, err := loadActiveAccount(ctx, s.store, input.OwnerID); err != nil {
		return nil, err
	}

	now := s.clock()
	team := &models.Team{
		BaseModel:  models.BaseModel{ID: models.NewID()},
		Name:       name,
		OwnerID:    input.OwnerID,
		MaxMembers: input.MaxMembers,
		IsActive:   true,
	}

	_, err := s.exec.Run(ctx, store.Plan{
		Name: "create_team",
		Steps: []store.Step{
			ownerCheckStep(input.OwnerID),
			{
				Name:  "create_team",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					return rs.CreateTeam(ctx, team)
				},
			},
			{
				Name:  "create_owner_membership",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					return rs.CreateMembership(ctx, &models.Membership{
						TeamID:   team.ID,
						UserID:   team.OwnerID,
						Role:     models.MembershipRoleOwner,
						IsActive: true,
						JoinedAt: now,
					})
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	recordAudit(AuditEntry{Action: "team.create", Actor: input.OwnerID, Resource: team.ID, Result: "success"})
	return team, nil
}

// GetTeam returns an active team.
func (s *MembershipService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	return loadActiveTeam(ensureContext(ctx), s.store, teamID)
}

// ListMembers returns the active memberships of an active team.
func (s *MembershipService) ListMembers(ctx context.Context, teamID string) ([]models.Membership, error) {
	ctx = ensureContext(ctx)
	if _, err := loadActiveTeam(ctx, s.store, teamID); err != nil {
		return nil, err
	}
	members, err := s.store.ListActiveMemberships(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("membership service: list members: %w", err)
	}
	return members, nil
}

// InviteToTeam lets the team owner offer a seat to another account.
func (s *MembershipService) InviteToTeam(ctx context.Context, teamID, inviterID, inviteeID, message string) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	message, err := normaliseMessage(message)
	if err != nil {
		return nil, err
	}

	team, err := loadActiveTeam(ctx, s.store, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != inviterID {
		return nil, s.reject("invite", ErrNotTeamOwner)
	}
	if _, err := loadActiveAccount(ctx, s.store, inviteeID); err != nil {
		return nil, err
	}
	if err := checkSeat(ctx, s.store, team, inviteeID); err != nil {
		return nil, s.reject("invite", err)
	}

	now := s.clock()
	pending, err := s.store.FindPendingInvitation(ctx, team.ID, inviteeID)
	switch {
	case err == nil:
		if !pending.Expired(now) {
			return nil, s.reject("invite", ErrDuplicateInvitation)
		}
		// An expired invitation is inert; retire it so the pair can be invited again.
		if err := s.store.ResolveInvitation(ctx, pending.ID, models.InvitationDeclined, now); err != nil && !errors.Is(err, store.ErrStaleState) {
			return nil, fmt.Errorf("membership service: retire expired invitation: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("membership service: find pending invitation: %w", err)
	}

	invitation := &models.Invitation{
		TeamID:    team.ID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Message:   message,
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.invitationTTL),
	}
	if err := s.store.CreateInvitation(ctx, invitation); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, s.reject("invite", ErrDuplicateInvitation)
		}
		return nil, fmt.Errorf("membership service: create invitation: %w", err)
	}

	metrics.MembershipTransitions.WithLabelValues("invite", "created").Inc()
	recordAudit(AuditEntry{Action: "invitation.create", Actor: inviterID, Resource: invitation.ID, Result: "success",
		Metadata: map[string]any{"team_id": team.ID, "invitee_id": inviteeID}})
	return invitation, nil
}

// RespondToInvitation accepts or declines a pending invitation on behalf of the invitee.
// Accepting re-checks the seat and writes the status change and the membership as one unit.
func (s *MembershipService) RespondToInvitation(ctx context.Context, invitationID, callerID string, accept bool) (*models.Invitation, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("membership service: load invitation: %w", err)
	}
	if invitation.InviteeID != callerID {
		return nil, s.reject("respond_invitation", ErrNotInvitee)
	}
	if invitation.Status != models.InvitationPending {
		return nil, s.reject("respond_invitation", ErrInvitationAlreadyResolved)
	}
	now := s.clock()
	if invitation.Expired(now) {
		return nil, s.reject("respond_invitation", ErrInvitationExpired)
	}

	status := models.InvitationDeclined
	if accept {
		status = models.InvitationAccepted
	}
	resolve := store.Step{
		Name:  "resolve_invitation",
		Write: true,
		Apply: func(ctx context.Context, rs store.RelationshipStore) error {
			err := rs.ResolveInvitation(ctx, invitation.ID, status, now)
			if errors.Is(err, store.ErrStaleState) {
				return ErrInvitationAlreadyResolved
			}
			return err
		},
	}

	plan := store.Plan{Name: "decline_invitation", Steps: []store.Step{resolve}}
	if accept {
		plan = store.Plan{
			Name: "accept_invitation",
			Steps: []store.Step{
				seatCheckStep(invitation.TeamID, invitation.InviteeID),
				resolve,
				joinStep(invitation.TeamID, invitation.InviteeID, now),
			},
		}
	}

	if _, err := s.exec.Run(ctx, plan); err != nil {
		return nil, s.reject("respond_invitation", err)
	}

	metrics.MembershipTransitions.WithLabelValues("respond_invitation", string(status)).Inc()
	recordAudit(AuditEntry{Action: "invitation." + string(status), Actor: callerID, Resource: invitation.ID, Result: "success",
		Metadata: map[string]any{"team_id": invitation.TeamID}})

	invitation.Status = status
	invitation.RespondedAt = &now
	return invitation, nil
}

// RequestToJoin records an account's request for a seat on a team.
func (s *MembershipService) RequestToJoin(ctx context.Context, teamID, userID, message string) (*models.JoinRequest, error) {
	ctx = ensureContext(ctx)

	message, err := normaliseMessage(message)
	if err != nil {
		return nil, err
	}

	team, err := loadActiveTeam(ctx, s.store, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return nil, err
	}
	if err := checkSeat(ctx, s.store, team, userID); err != nil {
		return nil, s.reject("request_join", err)
	}

	now := s.clock()
	pending, err := s.store.FindPendingJoinRequest(ctx, team.ID, userID)
	switch {
	case err == nil:
		if !pending.Expired(now) {
			return nil, s.reject("request_join", ErrDuplicateJoinRequest)
		}
		if err := s.store.ResolveJoinRequest(ctx, pending.ID, models.JoinRequestRejected, now); err != nil && !errors.Is(err, store.ErrStaleState) {
			return nil, fmt.Errorf("membership service: retire expired join request: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("membership service: find pending join request: %w", err)
	}

	request := &models.JoinRequest{
		TeamID:    team.ID,
		UserID:    userID,
		Message:   message,
		Status:    models.JoinRequestPending,
		ExpiresAt: now.Add(s.joinRequestTTL),
	}
	if err := s.store.CreateJoinRequest(ctx, request); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, s.reject("request_join", ErrDuplicateJoinRequest)
		}
		return nil, fmt.Errorf("membership service: create join request: %w", err)
	}

	metrics.MembershipTransitions.WithLabelValues("request_join", "created").Inc()
	recordAudit(AuditEntry{Action: "join_request.create", Actor: userID, Resource: request.ID, Result: "success",
		Metadata: map[string]any{"team_id": team.ID}})
	return request, nil
}

// RespondToJoinRequest approves or rejects a pending join request on behalf of the team owner.
func (s *MembershipService) RespondToJoinRequest(ctx context.Context, requestID, ownerID string, approve bool) (*models.JoinRequest, error) {
	ctx = ensureContext(ctx)

	request, err := s.store.GetJoinRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrJoinRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("membership service: load join request: %w", err)
	}

	team, err := s.store.GetTeam(ctx, request.TeamID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("membership service: load team: %w", err)
	}
	if team.OwnerID != ownerID {
		return nil, s.reject("respond_join_request", ErrNotTeamOwner)
	}
	if request.Status != models.JoinRequestPending {
		return nil, s.reject("respond_join_request", ErrJoinRequestAlreadyResolved)
	}
	now := s.clock()
	if request.Expired(now) {
		return nil, s.reject("respond_join_request", ErrJoinRequestExpired)
	}

	status := models.JoinRequestRejected
	if approve {
		status = models.JoinRequestApproved
	}
	resolve := store.Step{
		Name:  "resolve_join_request",
		Write: true,
		Apply: func(ctx context.Context, rs store.RelationshipStore) error {
			err := rs.ResolveJoinRequest(ctx, request.ID, status, now)
			if errors.Is(err, store.ErrStaleState) {
				return ErrJoinRequestAlreadyResolved
			}
			return err
		},
	}

	plan := store.Plan{Name: "reject_join_request", Steps: []store.Step{resolve}}
	if approve {
		plan = store.Plan{
			Name: "approve_join_request",
			Steps: []store.Step{
				seatCheckStep(request.TeamID, request.UserID),
				resolve,
				joinStep(request.TeamID, request.UserID, now),
			},
		}
	}

	if _, err := s.exec.Run(ctx, plan); err != nil {
		return nil, s.reject("respond_join_request", err)
	}

	metrics.MembershipTransitions.WithLabelValues("respond_join_request", string(status)).Inc()
	recordAudit(AuditEntry{Action: "join_request." + string(status), Actor: ownerID, Resource: request.ID, Result: "success",
		Metadata: map[string]any{"team_id": request.TeamID}})

	request.Status = status
	request.RespondedAt = &now
	return request, nil
}

func (s *MembershipService) clock() time.Time {
	return s.now().UTC()
}

func (s *MembershipService) reject(operation string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		metrics.MembershipTransitions.WithLabelValues(operation, appErr.Code).Inc()
	}
	return err
}

// ownerCheckStep locks the owner's account row so a concurrent teardown cannot
// leave a deleted account owning an active team.
func ownerCheckStep(ownerID string) store.Step {
	return store.Step{
		Name: "check_owner",
		Apply: func(ctx context.Context, rs store.RelationshipStore) error {
			return lockUsableAccount(ctx, rs, ownerID)
		},
	}
}

func lockUsableAccount(ctx context.Context, rs store.RelationshipStore, accountID string) error {
	account, err := rs.LockAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if !accountUsable(account) {
		return ErrAccountNotFound
	}
	return nil
}

// seatCheckStep re-validates, under the team lock, that the account can still take a seat.
func seatCheckStep(teamID, userID string) store.Step {
	return store.Step{
		Name: "check_seat",
		Apply: func(ctx context.Context, rs store.RelationshipStore) error {
			if err := lockUsableAccount(ctx, rs, userID); err != nil {
				return err
			}

			team, err := rs.LockTeam(ctx, teamID)
			if errors.Is(err, store.ErrNotFound) {
				return ErrTeamNotFound
			}
			if err != nil {
				return err
			}
			if !team.IsActive {
				return ErrTeamNotFound
			}
			return checkSeat(ctx, rs, team, userID)
		},
	}
}

func joinStep(teamID, userID string, joinedAt time.Time) store.Step {
	return store.Step{
		Name:  "create_membership",
		Write: true,
		Apply: func(ctx context.Context, rs store.RelationshipStore) error {
			err := rs.CreateMembership(ctx, &models.Membership{
				TeamID:   teamID,
				UserID:   userID,
				Role:     models.MembershipRoleMember,
				IsActive: true,
				JoinedAt: joinedAt,
			})
			if store.IsUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return err
		},
	}
}

// checkSeat reports CapacityExceeded, then AlreadyMember, for userID joining team.
// Capacity counts every active membership, the owner's included.
func checkSeat(ctx context.Context, rs store.RelationshipStore, team *models.Team, userID string) error {
	count, err := rs.CountActiveMembers(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count >= int64(team.MaxMembers) {
		return ErrTeamCapacityExceeded
	}
	member, err := rs.HasActiveMembership(ctx, team.ID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if member {
		return ErrAlreadyMember
	}
	return nil
}

func loadActiveTeam(ctx context.Context, rs store.RelationshipStore, teamID string) (*models.Team, error) {
	if strings.TrimSpace(teamID) == "" {
		return nil, ErrTeamNotFound
	}
	team, err := rs.GetTeam(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load team: %w", err)
	}
	if !team.IsActive {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func loadActiveAccount(ctx context.Context, rs store.RelationshipStore, accountID string) (*models.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrAccountNotFound
	}
	account, err := rs.GetAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !accountUsable(account) {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func accountUsable(account *models.Account) bool {
	return account != nil && account.IsActive && !account.IsDeleted()
}

func normaliseMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if len(message) > maxMessageLength {
		return "", apperrors.NewBadRequest(fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}
	return message, nil
}
