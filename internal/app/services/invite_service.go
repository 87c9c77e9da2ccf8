package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/metrics"
	"github.com/yigit/rollcall/internal/pkg/validation"
)

// DefaultInviteTTL is the validity window of a teacher invite
const DefaultInviteTTL = 30 * time.Minute

// InviteInfo is an invite together with its owning organization and derived status
type InviteInfo struct {
	Invite       *models.Invite
	Organization *models.Organization
	Status       models.InviteStatus
}

// IssuedInvite is returned to the admin who created the invite
type IssuedInvite struct {
	Invite *models.Invite
	URL    string
	TTL    time.Duration
}

// ConsumeInviteInput is a teacher's self-registration through an invite
type ConsumeInviteInput struct {
	Token         string
	Name          string
	Username      string
	Password      string
	ClassDivision string
}

// InviteURLFunc renders the public link for a token
type InviteURLFunc func(token string) string

// InviteService runs the teacher invite lifecycle
type InviteService struct {
	invites repositories.InviteStore
	orgs    repositories.OrganizationStore
	hasher  *auth.PasswordHasher
	ttl     time.Duration
	url     InviteURLFunc
	now     Clock
	logger  zerolog.Logger
}

// NewInviteService creates a new InviteService
func NewInviteService(
	invites repositories.InviteStore,
	orgs repositories.OrganizationStore,
	hasher *auth.PasswordHasher,
	ttl time.Duration,
	url InviteURLFunc,
	now Clock,
	logger zerolog.Logger,
) *InviteService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InviteService{
		invites: invites,
		orgs:    orgs,
		hasher:  hasher,
		ttl:     ttl,
		url:     url,
		now:     orSystemClock(now),
		logger:  logger,
	}
}

// Issue creates a fresh invite for the admin's organization
func (s *InviteService) Issue(ctx context.Context, orgCode string) (*IssuedInvite, error) {
	token, err := auth.GenerateOpaqueToken(auth.InviteTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	now := s.now().UTC()
	invite := &models.Invite{
		Token:     token,
		OrgCode:   models.NormalizeOrgCode(orgCode),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	metrics.RecordInviteEvent(metrics.InviteIssued)
	s.logger.Info().Str("org_code", invite.OrgCode).Str("token", auth.TokenPrefix(token)).Time("expires_at", invite.ExpiresAt).Msg("Teacher invite issued")

	issued := &IssuedInvite{Invite: invite, TTL: s.ttl}
	if s.url != nil {
		issued.URL = s.url(token)
	}
	return issued, nil
}

// Verify reports whether token can still be used. Used and expired invites
// are errors, checked in that order.
func (s *InviteService) Verify(ctx context.Context, token string) (*InviteInfo, error) {
	invite, err := s.invites.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	status := invite.StatusAt(s.now())
	switch status {
	case models.InviteUsed:
		return nil, apperrors.ErrInviteAlreadyUsed
	case models.InviteExpired:
		return nil, apperrors.ErrInviteExpired
	}

	org, err := s.orgs.FindByCode(ctx, invite.OrgCode)
	if err != nil {
		return nil, err
	}
	return &InviteInfo{Invite: invite, Organization: org, Status: status}, nil
}

// Consume registers a teacher through the invite. The store re-validates the
// invite inside the same transaction that creates the account. The returned
// organization is nil if it could not be loaded afterwards.
func (s *InviteService) Consume(ctx context.Context, in ConsumeInviteInput) (*models.Account, *models.Organization, error) {
	token, err := requireField(in.Token, "token")
	if err != nil {
		return nil, nil, err
	}
	username := strings.TrimSpace(in.Username)
	if !validation.ValidUsername(username) {
		return nil, nil, apperrors.NewValidationError("username is invalid")
	}
	if in.Password == "" {
		return nil, nil, apperrors.NewValidationError("password is required")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:      username,
		Password:      digest,
		Role:          models.RoleTeacher,
		DisplayName:   optional(in.Name),
		ClassDivision: optional(in.ClassDivision),
	}
	if _, err := s.invites.Consume(ctx, token, account, s.now().UTC()); err != nil {
		metrics.RecordInviteEvent(metrics.InviteRejected)
		s.logger.Info().Err(err).Str("token", auth.TokenPrefix(token)).Msg("Invite consumption rejected")
		return nil, nil, err
	}
	metrics.RecordInviteEvent(metrics.InviteConsumed)
	s.logger.Info().Str("org_code", account.OrgCode).Str("username", username).Msg("Teacher registered via invite")

	org, err := s.orgs.FindByCode(ctx, account.OrgCode)
	if err != nil {
		s.logger.Warn().Err(err).Str("org_code", account.OrgCode).Msg("Failed to load organization after invite registration")
		return account, nil, nil
	}
	return account, org, nil
}

// Revoke deletes an invite belonging to the admin's organization
func (s *InviteService) Revoke(ctx context.Context, orgCode, token string) error {
	if err := s.invites.Delete(ctx, models.NormalizeOrgCode(orgCode), strings.TrimSpace(token)); err != nil {
		return err
	}
	metrics.RecordInviteEvent(metrics.InviteRevoked)
	s.logger.Info().Str("org_code", orgCode).Str("token", auth.TokenPrefix(token)).Msg("Teacher invite revoked")
	return nil
}

// List returns every invite of the organization with its status at call time
func (s *InviteService) List(ctx context.Context, orgCode string) ([]InviteInfo, error) {
	invites, err := s.invites.ListByOrganization(ctx, models.NormalizeOrgCode(orgCode))
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]InviteInfo, 0, len(invites))
	for _, invite := range invites {
		out = append(out, InviteInfo{Invite: invite, Status: invite.StatusAt(now)})
	}
	return out, nil
}
