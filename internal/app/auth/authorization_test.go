package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

func TestAuthorize(t *testing.T) {
	authz, err := NewAuthorizationService()
	require.NoError(t, err)

	cases := []struct {
		role    models.RoleType
		object  string
		action  string
		allowed bool
	}{
		{models.RoleAdmin, ObjectAccounts, ActionCreate, true},
		{models.RoleAdmin, ObjectInvites, ActionIssue, true},
		{models.RoleAdmin, ObjectInvites, ActionRevoke, true},
		{models.RoleAdmin, ObjectOrganizations, ActionList, true},
		{models.RoleAdmin, ObjectProfile, ActionRead, true},
		{models.RoleTeacher, ObjectProfile, ActionUpdate, true},
		{models.RoleTeacher, ObjectAccounts, ActionCreate, false},
		{models.RoleTeacher, ObjectInvites, ActionIssue, false},
		{models.RoleTeacher, ObjectOrganizations, ActionList, false},
		{"superuser", ObjectProfile, ActionRead, false},
		{models.RoleAdmin, "attendance", ActionList, false},
	}
	for _, tc := range cases {
		err := authz.Authorize(tc.role, tc.object, tc.action)
		if tc.allowed {
			assert.NoError(t, err, "%s %s %s", tc.role, tc.action, tc.object)
		} else {
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "%s %s %s", tc.role, tc.action, tc.object)
		}
	}
}
