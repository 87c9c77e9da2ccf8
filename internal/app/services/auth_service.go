package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/metrics"
)

// LoginInput carries the three credentials a user signs in with
type LoginInput struct {
	OrgCode  string
	Username string
	Password string
}

// LoginResult is a successful sign-in
type LoginResult struct {
	AccessToken  string
	ExpiresAt    time.Time
	ExpiresIn    time.Duration
	Account      *models.Account
	Organization *models.Organization
}

// AuthService signs users in and resolves the caller behind a token
type AuthService struct {
	orgs       repositories.OrganizationStore
	accounts   repositories.AccountStore
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	orgs repositories.OrganizationStore,
	accounts repositories.AccountStore,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		orgs:       orgs,
		accounts:   accounts,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the credentials and issues an access token. Every credential
// failure is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	orgCode := models.NormalizeOrgCode(in.OrgCode)
	username := strings.TrimSpace(in.Username)
	if orgCode == "" || username == "" || in.Password == "" {
		metrics.RecordLogin(metrics.LoginUnknownUser)
		return nil, apperrors.ErrInvalidCredentials
	}

	org, err := s.orgs.FindByCode(ctx, orgCode)
	if err != nil {
		return nil, s.rejectLookup(err, metrics.LoginUnknownOrganization, in.Password, orgCode, username)
	}

	account, err := s.accounts.FindByOrgAndUsername(ctx, orgCode, username)
	if err != nil {
		return nil, s.rejectLookup(err, metrics.LoginUnknownUser, in.Password, orgCode, username)
	}

	if !s.hasher.Verify(in.Password, account.Password) {
		metrics.RecordLogin(metrics.LoginBadPassword)
		s.logger.Info().Str("org_code", orgCode).Str("username", username).Msg("Login rejected: bad password")
		return nil, apperrors.ErrInvalidCredentials
	}

	s.upgradeDigest(ctx, account, in.Password)

	token, expiresAt, err := s.jwtService.IssueAccessToken(auth.Identity{
		Username:        account.Username,
		Role:            account.Role,
		OrgCode:         org.OrgCode,
		InstitutionName: org.InstitutionName,
		InstitutionType: org.InstitutionType,
	})
	if err != nil {
		metrics.RecordLogin(metrics.LoginError)
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	metrics.RecordLogin(metrics.LoginSuccess)
	s.logger.Info().Str("org_code", orgCode).Str("username", account.Username).Str("role", string(account.Role)).Msg("Login succeeded")

	return &LoginResult{
		AccessToken:  token,
		ExpiresAt:    expiresAt,
		ExpiresIn:    s.jwtService.AccessTokenTTL(),
		Account:      account,
		Organization: org,
	}, nil
}

// rejectLookup turns a failed org or account lookup into a login failure.
// Not-found burns a dummy hash so the response time matches a bad password.
func (s *AuthService) rejectLookup(err error, outcome, password, orgCode, username string) error {
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		metrics.RecordLogin(metrics.LoginError)
		return err
	}
	s.hasher.DummyVerify(password)
	metrics.RecordLogin(outcome)
	s.logger.Info().Str("org_code", orgCode).Str("username", username).Str("reason", outcome).Msg("Login rejected")
	return apperrors.ErrInvalidCredentials
}

// upgradeDigest rehashes a legacy digest with the current scheme. Failure
// only costs the upgrade, never the login.
func (s *AuthService) upgradeDigest(ctx context.Context, account *models.Account, password string) {
	if !s.hasher.NeedsRehash(account.Password) {
		return
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to rehash legacy password")
		return
	}
	if err := s.accounts.UpdatePassword(ctx, account.OrgCode, account.Username, digest); err != nil {
		s.logger.Warn().Err(err).Str("username", account.Username).Msg("Failed to store rehashed password")
		return
	}
	account.Password = digest
	s.logger.Info().Str("org_code", account.OrgCode).Str("username", account.Username).Msg("Legacy password digest upgraded")
}

// Me resolves the account and organization named by verified claims
func (s *AuthService) Me(ctx context.Context, claims *auth.Claims) (*models.Account, *models.Organization, error) {
	org, err := s.orgs.FindByCode(ctx, claims.OrgCode)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accounts.FindByOrgAndUsername(ctx, claims.OrgCode, claims.Username())
	if err != nil {
		return nil, nil, err
	}
	return account, org, nil
}
