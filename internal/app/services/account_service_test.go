package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

func TestAccountCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Oakridge High", "a@oak.edu")

	account, err := f.account.Create(ctx, org.OrgCode, CreateAccountInput{
		Username:      "ms.frizzle",
		Password:      "bus-ride",
		Role:          "Teacher",
		DisplayName:   "Valerie Frizzle",
		ClassDivision: "3-B",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, account.Role)
	assert.Equal(t, org.OrgCode, account.OrgCode)
	require.NotNil(t, account.ClassDivision)
	assert.Equal(t, "3-B", *account.ClassDivision)

	_, err = f.account.Create(ctx, org.OrgCode, CreateAccountInput{Username: "ms.frizzle", Password: "x1", Role: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)

	_, err = f.account.Create(ctx, org.OrgCode, CreateAccountInput{Username: "bob", Password: "x1", Role: "janitor"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	_, err = f.account.Create(ctx, "SCH-NONE-000000", CreateAccountInput{Username: "bob", Password: "x1", Role: "teacher"})
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
}

func TestAccountUsernameScopedToOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	oak := f.register(t, "Oakridge High", "a@oak.edu")
	maple := f.register(t, "Oakridge High", "b@oak.edu")

	// Both organizations already hold an "admin".
	a, err := f.account.FindByOrgAndUsername(ctx, oak.OrgCode, "admin")
	require.NoError(t, err)
	b, err := f.account.FindByOrgAndUsername(ctx, maple.OrgCode, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, a.OrgCode, b.OrgCode)
}

func TestAccountPasswords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Oakridge High", "a@oak.edu")

	err := f.account.ChangePassword(ctx, org.OrgCode, "admin", "wrong", "new-pass")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, f.account.ChangePassword(ctx, org.OrgCode, "admin", "admin-pass", "new-pass"))
	_, err = f.auth.Login(ctx, LoginInput{OrgCode: org.OrgCode, Username: "admin", Password: "new-pass"})
	require.NoError(t, err)

	require.NoError(t, f.account.ResetPassword(ctx, org.OrgCode, "admin", "reset-pass"))
	_, err = f.auth.Login(ctx, LoginInput{OrgCode: org.OrgCode, Username: "admin", Password: "new-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.account.ResetPassword(ctx, org.OrgCode, "ghost", "reset-pass")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestAccountProfilePicture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Oakridge High", "a@oak.edu")

	account, err := f.account.UpdateProfilePicture(ctx, org.OrgCode, "admin", "https://cdn.example/p.png")
	require.NoError(t, err)
	require.NotNil(t, account.ProfilePicture)
	assert.Equal(t, "https://cdn.example/p.png", *account.ProfilePicture)

	account, err = f.account.UpdateProfilePicture(ctx, org.OrgCode, "admin", "")
	require.NoError(t, err)
	assert.Nil(t, account.ProfilePicture)
}

func TestAccountList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org := f.register(t, "Oakridge High", "a@oak.edu")
	for _, name := range []string{"t1", "t2", "t3"} {
		_, err := f.account.Create(ctx, org.OrgCode, CreateAccountInput{Username: name, Password: "pw", Role: "teacher"})
		require.NoError(t, err)
	}

	accounts, total, err := f.account.List(ctx, org.OrgCode, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, accounts, 2)
}
