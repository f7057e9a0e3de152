package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/charlesng35/teamforge/internal/models"
	"github.com/charlesng35/teamforge/internal/store"
	"github.com/charlesng35/teamforge/pkg/crypto"
	apperrors "github.com/charlesng35/teamforge/pkg/errors"
	"github.com/charlesng35/teamforge/pkg/metrics"
)

const (
	minPasswordLength = 8
	// bcrypt only considers the first 72 bytes.
	maxPasswordLength = 72
)

// SignUpInput describes the fields accepted when registering an account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Role     models.AccountRole
}

// DeletedAccount is the identity left behind by SoftDeleteAccount.
type DeletedAccount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AccountService manages sign-up, sign-in and account teardown.
type AccountService struct {
	exec  *store.Executor
	store store.RelationshipStore
}

// NewAccountService constructs an AccountService on top of exec.
func NewAccountService(exec *store.Executor) (*AccountService, error) {
	if exec == nil {
		return nil, errors.New("account service: executor is required")
	}
	return &AccountService{exec: exec, store: exec.Store()}, nil
}

// SignUp registers a new account with its empty profile. Admin accounts cannot be
// self-registered.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (*models.Account, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin {
		return nil, apperrors.NewBadRequest("admin accounts cannot be self-registered")
	}
	return s.register(ensureContext(ctx), input, role)
}

// EnsureAdmin registers the bootstrap administrator unless the email is taken.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.Account, bool, error) {
	ctx = ensureContext(ctx)
	existing, err := s.store.FindAccountByEmail(ctx, normaliseEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("account service: find admin: %w", err)
	}
	account, err := s.register(ctx, SignUpInput{Name: name, Email: email, Password: password}, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

func (s *AccountService) register(ctx context.Context, input SignUpInput, role models.AccountRole) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	email := normaliseEmail(input.Email)

	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if strings.HasPrefix(name, models.DeletedNamePrefix) {
		return nil, apperrors.NewBadRequest("name uses a reserved prefix")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperrors.NewBadRequest("a valid email is required")
	}
	if strings.HasSuffix(email, "@"+models.DeletedEmailDomain) {
		return nil, apperrors.NewBadRequest("email uses a reserved domain")
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest("unknown role")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(input.Password) > maxPasswordLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		BaseModel:    models.BaseModel{ID: models.NewID()},
		Name:         name,
		Email:        email,
		PasswordHash: &hashed,
		Role:         role,
		IsActive:     true,
	}

	_, err = s.exec.Run(ctx, store.Plan{
		Name: "sign_up",
		Steps: []store.Step{
			{
				Name:  "create_account",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					err := rs.CreateAccount(ctx, account)
					if store.IsUniqueViolation(err) {
						return ErrEmailTaken
					}
					return err
				},
			},
			{
				Name:  "create_profile",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					return rs.CreateProfile(ctx, &models.Profile{AccountID: account.ID})
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	recordAudit(AuditEntry{Action: "account.create", Actor: account.ID, Resource: account.ID, Result: "success",
		Metadata: map[string]any{"role": string(role)}})
	return account, nil
}

// SignIn checks the credentials and returns the matching account.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (*models.Account, error) {
	ctx = ensureContext(ctx)

	account, err := s.store.FindAccountByEmail(ctx, normaliseEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("account service: find account: %w", err)
	}
	if !accountUsable(account) || account.PasswordHash == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !crypto.VerifyPassword(*account.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return account, nil
}

// GetAccount returns an account that has not been deleted.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return loadActiveAccount(ensureContext(ctx), s.store, accountID)
}

// SoftDeleteAccount tears the account down as one unit: its memberships are
// deactivated, every team it owns is deactivated together with that team's
// memberships, its profile is removed and its identity rewritten to deletion
// markers. Deleted accounts report NotFound.
func (s *AccountService) SoftDeleteAccount(ctx context.Context, accountID string) (*DeletedAccount, error) {
	ctx = ensureContext(ctx)

	if _, err := loadActiveAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	deleted := &DeletedAccount{
		ID:    accountID,
		Name:  models.DeletedName(accountID),
		Email: models.DeletedEmail(accountID),
	}

	_, err := s.exec.Run(ctx, store.Plan{
		Name: "soft_delete_account",
		Steps: []store.Step{
			{
				Name: "lock_account",
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
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
				},
			},
			{
				Name:  "deactivate_memberships",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					_, err := rs.DeactivateMembershipsByUser(ctx, accountID)
					return err
				},
			},
			{
				Name:  "deactivate_owned_teams",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					teams, err := rs.ListActiveTeamsByOwner(ctx, accountID)
					if err != nil {
						return err
					}
					for _, team := range teams {
						if _, err := rs.LockTeam(ctx, team.ID); err != nil {
							return err
						}
						if _, err := rs.DeactivateMembershipsByTeam(ctx, team.ID); err != nil {
							return err
						}
						if err := rs.DeactivateTeam(ctx, team.ID); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:  "delete_profile",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					return rs.DeleteProfile(ctx, accountID)
				},
			},
			{
				Name:  "rewrite_identity",
				Write: true,
				Apply: func(ctx context.Context, rs store.RelationshipStore) error {
					return rs.RewriteAccountIdentity(ctx, accountID, deleted.Name, deleted.Email)
				},
			},
		},
	})
	if err != nil {
		metrics.MembershipTransitions.WithLabelValues("soft_delete", "failed").Inc()
		return nil, err
	}

	metrics.MembershipTransitions.WithLabelValues("soft_delete", "deleted").Inc()
	recordAudit(AuditEntry{Action: "account.delete", Resource: accountID, Result: "success"})
	return deleted, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
