package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/validation"
)

// CreateAccountInput describes an account created by an admin
type CreateAccountInput struct {
	Username      string
	Password      string
	Role          string
	DisplayName   string
	ClassDivision string
}

// AccountService manages accounts inside one organization
type AccountService struct {
	accounts repositories.AccountStore
	orgs     repositories.OrganizationStore
	hasher   *auth.PasswordHasher
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts repositories.AccountStore, orgs repositories.OrganizationStore, hasher *auth.PasswordHasher, logger zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, orgs: orgs, hasher: hasher, logger: logger}
}

// Create adds an account to orgCode. Uniqueness of the username is left to the store.
func (s *AccountService) Create(ctx context.Context, orgCode string, in CreateAccountInput) (*models.Account, error) {
	role := models.ParseRole(in.Role)
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	username := strings.TrimSpace(in.Username)
	if !validation.ValidUsername(username) {
		return nil, apperrors.NewValidationError("username is invalid")
	}
	if in.Password == "" {
		return nil, apperrors.NewValidationError("password is required")
	}

	orgCode = models.NormalizeOrgCode(orgCode)
	if _, err := s.orgs.FindByCode(ctx, orgCode); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		OrgCode:       orgCode,
		Username:      username,
		Password:      digest,
		Role:          role,
		DisplayName:   optional(in.DisplayName),
		ClassDivision: optional(in.ClassDivision),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("org_code", orgCode).Str("username", username).Str("role", string(role)).Msg("Account created")
	return account, nil
}

// FindByOrgAndUsername returns the account or ErrAccountNotFound
func (s *AccountService) FindByOrgAndUsername(ctx context.Context, orgCode, username string) (*models.Account, error) {
	return s.accounts.FindByOrgAndUsername(ctx, models.NormalizeOrgCode(orgCode), strings.TrimSpace(username))
}

// List returns one page of the organization's accounts
func (s *AccountService) List(ctx context.Context, orgCode string, offset uint64, limit int) ([]*models.Account, int64, error) {
	return s.accounts.ListByOrganization(ctx, models.NormalizeOrgCode(orgCode), offset, limit)
}

// ChangePassword lets an account holder replace their password after proving the current one
func (s *AccountService) ChangePassword(ctx context.Context, orgCode, username, current, next string) error {
	account, err := s.FindByOrgAndUsername(ctx, orgCode, username)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, account.Password) {
		return apperrors.NewValidationError("current password is incorrect")
	}
	return s.setPassword(ctx, account, next)
}

// ResetPassword sets a new password for an account in the admin's own organization
func (s *AccountService) ResetPassword(ctx context.Context, orgCode, username, next string) error {
	account, err := s.FindByOrgAndUsername(ctx, orgCode, username)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, account, next)
}

func (s *AccountService) setPassword(ctx context.Context, account *models.Account, next string) error {
	if next == "" {
		return apperrors.NewValidationError("new password is required")
	}
	digest, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.OrgCode, account.Username, digest); err != nil {
		return err
	}
	s.logger.Info().Str("org_code", account.OrgCode).Str("username", account.Username).Msg("Password updated")
	return nil
}

// UpdateProfilePicture stores a reference to the account's picture. An empty ref clears it.
func (s *AccountService) UpdateProfilePicture(ctx context.Context, orgCode, username, ref string) (*models.Account, error) {
	orgCode = models.NormalizeOrgCode(orgCode)
	username = strings.TrimSpace(username)
	if err := s.accounts.UpdateProfilePicture(ctx, orgCode, username, optional(ref)); err != nil {
		return nil, err
	}
	return s.accounts.FindByOrgAndUsername(ctx, orgCode, username)
}
