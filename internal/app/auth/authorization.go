package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

//go:embed model.conf
var modelText string

// Objects guarded by role policies
const (
	ObjectAccounts      = "accounts"
	ObjectInvites       = "invites"
	ObjectOrganizations = "organizations"
	ObjectProfile       = "profile"
)

// Actions on those objects
const (
	ActionCreate        = "create"
	ActionList          = "list"
	ActionRead          = "read"
	ActionUpdate        = "update"
	ActionIssue         = "issue"
	ActionRevoke        = "revoke"
	ActionResetPassword = "reset_password"
)

func subject(role models.RoleType) string {
	return "role:" + string(role)
}

// policies lists what each role may do. Admins inherit teacher permissions.
var policies = [][]string{
	{subject(models.RoleTeacher), ObjectProfile, ActionRead},
	{subject(models.RoleTeacher), ObjectProfile, ActionUpdate},

	{subject(models.RoleAdmin), ObjectAccounts, ActionCreate},
	{subject(models.RoleAdmin), ObjectAccounts, ActionList},
	{subject(models.RoleAdmin), ObjectAccounts, ActionResetPassword},
	{subject(models.RoleAdmin), ObjectInvites, ActionIssue},
	{subject(models.RoleAdmin), ObjectInvites, ActionList},
	{subject(models.RoleAdmin), ObjectInvites, ActionRevoke},
	{subject(models.RoleAdmin), ObjectOrganizations, ActionList},
}

// AuthorizationService answers role permission questions
type AuthorizationService struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizationService builds an in-memory enforcer with the built-in policies
func NewAuthorizationService() (*AuthorizationService, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorization model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(subject(models.RoleAdmin), subject(models.RoleTeacher)); err != nil {
		return nil, fmt.Errorf("failed to load role hierarchy: %w", err)
	}
	return &AuthorizationService{enforcer: enforcer}, nil
}

// Authorize returns ErrPermissionDenied unless role may perform action on object
func (s *AuthorizationService) Authorize(role models.RoleType, object, action string) error {
	if !role.Valid() {
		return apperrors.ErrPermissionDenied
	}
	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return fmt.Errorf("authorization check failed: %w", err)
	}
	if !allowed {
		return apperrors.NewForbiddenError(fmt.Sprintf("%s may not %s %s", role, action, object))
	}
	return nil
}
