package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/email"
	"github.com/yigit/rollcall/internal/pkg/metrics"
	"github.com/yigit/rollcall/internal/pkg/validation"
)

// DefaultCodeAttempts bounds how many organization codes Register tries
const DefaultCodeAttempts = 10

// CodeGenerator produces candidate organization codes
type CodeGenerator interface {
	Generate(name string, institutionType models.InstitutionType) (string, error)
}

// RegisterOrganizationInput is everything needed to bootstrap an organization
type RegisterOrganizationInput struct {
	InstitutionName string
	InstitutionType string
	Email           string
	AdminUsername   string
	AdminPassword   string
}

// RegisteredOrganization is the outcome of a successful registration
type RegisteredOrganization struct {
	Organization  *models.Organization
	AdminUsername string
}

// OrganizationService registers and looks up organizations
type OrganizationService struct {
	orgs         repositories.OrganizationStore
	hasher       *auth.PasswordHasher
	codes        CodeGenerator
	mailer       email.Sender
	loginURL     string
	codeAttempts int
	logger       zerolog.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgs repositories.OrganizationStore,
	hasher *auth.PasswordHasher,
	codes CodeGenerator,
	mailer email.Sender,
	loginURL string,
	logger zerolog.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgs:         orgs,
		hasher:       hasher,
		codes:        codes,
		mailer:       mailer,
		loginURL:     loginURL,
		codeAttempts: DefaultCodeAttempts,
		logger:       logger,
	}
}

func (s *OrganizationService) validateRegistration(in RegisterOrganizationInput) (RegisterOrganizationInput, models.InstitutionType, error) {
	var err error
	if in.InstitutionName, err = requireField(in.InstitutionName, "institution name"); err != nil {
		return in, "", err
	}
	if len(in.InstitutionName) > validation.InstitutionMaxLength {
		return in, "", apperrors.NewValidationError("institution name is too long")
	}

	institutionType := models.ParseInstitutionType(in.InstitutionType)
	if !institutionType.Valid() {
		return in, "", apperrors.ErrInvalidInstitutionType
	}

	if in.Email, err = requireField(strings.ToLower(in.Email), "email"); err != nil {
		return in, "", err
	}

	in.AdminUsername = strings.TrimSpace(in.AdminUsername)
	if !validation.ValidUsername(in.AdminUsername) {
		return in, "", apperrors.NewValidationError("admin username is invalid")
	}
	if in.AdminPassword == "" {
		return in, "", apperrors.NewValidationError("admin password is required")
	}
	return in, institutionType, nil
}

// Register creates the organization and its admin account atomically. A code
// collision is retried with a fresh code; a duplicate email is reported.
func (s *OrganizationService) Register(ctx context.Context, in RegisterOrganizationInput) (*RegisteredOrganization, error) {
	in, institutionType, err := s.validateRegistration(in)
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.codes.Generate(in.InstitutionName, institutionType)
		if err != nil {
			return nil, fmt.Errorf("failed to generate organization code: %w", err)
		}

		taken, err := s.orgs.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			metrics.RecordOrgCodeCollision()
			continue
		}

		org := &models.Organization{
			OrgCode:         code,
			InstitutionName: in.InstitutionName,
			InstitutionType: institutionType,
			Email:           in.Email,
		}
		admin := &models.Account{Username: in.AdminUsername, Password: digest, Role: models.RoleAdmin}

		err = s.orgs.CreateWithAdmin(ctx, org, admin)
		if errors.Is(err, apperrors.ErrOrgCodeAlreadyExists) {
			metrics.RecordOrgCodeCollision()
			s.logger.Debug().Str("org_code", code).Int("attempt", attempt).Msg("Organization code collided, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.RecordOrganizationRegistered()
		s.logger.Info().Str("org_code", code).Str("institution_type", string(institutionType)).Msg("Organization registered")
		s.sendWelcome(ctx, org, admin.Username)
		return &RegisteredOrganization{Organization: org, AdminUsername: admin.Username}, nil
	}

	return nil, fmt.Errorf("no free organization code after %d attempts", s.codeAttempts)
}

func (s *OrganizationService) sendWelcome(ctx context.Context, org *models.Organization, adminUsername string) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.SendOrganizationWelcome(ctx, email.OrganizationWelcome{
		To:              org.Email,
		InstitutionName: org.InstitutionName,
		OrgCode:         org.OrgCode,
		AdminUsername:   adminUsername,
		LoginURL:        s.loginURL,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("org_code", org.OrgCode).Msg("Failed to send welcome email")
	}
}

// Lookup finds an organization by a user supplied code
func (s *OrganizationService) Lookup(ctx context.Context, orgCode string) (*models.Organization, error) {
	return s.orgs.FindByCode(ctx, models.NormalizeOrgCode(orgCode))
}

// EmailRegistered reports whether an organization already uses email
func (s *OrganizationService) EmailRegistered(ctx context.Context, address string) (bool, error) {
	_, err := s.orgs.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(address)))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns one page of organizations
func (s *OrganizationService) List(ctx context.Context, offset uint64, limit int) ([]*models.Organization, int64, error) {
	return s.orgs.List(ctx, offset, limit)
}
