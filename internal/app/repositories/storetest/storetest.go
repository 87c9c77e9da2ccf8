// Package storetest holds behaviour tests every store implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/app/repositories"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
)

// Factory returns an empty set of stores
type Factory func(t *testing.T) *repositories.Repositories

// Run executes the shared store behaviour suite
func Run(t *testing.T, newRepos Factory) {
	t.Run("CreateWithAdmin", func(t *testing.T) { testCreateWithAdmin(t, newRepos(t)) })
	t.Run("DuplicateOrganization", func(t *testing.T) { testDuplicateOrganization(t, newRepos(t)) })
	t.Run("AccountScopedUniqueness", func(t *testing.T) { testAccountScopedUniqueness(t, newRepos(t)) })
	t.Run("ConcurrentAccountCreate", func(t *testing.T) { testConcurrentAccountCreate(t, newRepos(t)) })
	t.Run("AccountUpdates", func(t *testing.T) { testAccountUpdates(t, newRepos(t)) })
	t.Run("InviteConsume", func(t *testing.T) { testInviteConsume(t, newRepos(t)) })
	t.Run("InviteConsumeRollsBack", func(t *testing.T) { testInviteConsumeRollsBack(t, newRepos(t)) })
	t.Run("ConcurrentInviteConsume", func(t *testing.T) { testConcurrentInviteConsume(t, newRepos(t)) })
	t.Run("InviteDeleteScopedToOrg", func(t *testing.T) { testInviteDeleteScopedToOrg(t, newRepos(t)) })
	t.Run("Listing", func(t *testing.T) { testListing(t, newRepos(t)) })
}

func digest() models.PasswordDigest {
	return models.PasswordDigest{Scheme: models.SchemeBcrypt, Hash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold"}
}

// SeedOrganization registers an organization with an admin named "admin"
func SeedOrganization(t *testing.T, repos *repositories.Repositories, code, email string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		OrgCode:         code,
		InstitutionName: "Institution " + code,
		InstitutionType: models.InstitutionSchool,
		Email:           email,
	}
	admin := &models.Account{Username: "admin", Password: digest()}
	require.NoError(t, repos.Organizations.CreateWithAdmin(context.Background(), org, admin))
	return org
}

func newInvite(orgCode, token string, created time.Time) *models.Invite {
	return &models.Invite{Token: token, OrgCode: orgCode, CreatedAt: created, ExpiresAt: created.Add(30 * time.Minute)}
}

func testCreateWithAdmin(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	org := SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	assert.NotZero(t, org.ID)
	assert.False(t, org.CreatedAt.IsZero())

	found, err := repos.Organizations.FindByCode(ctx, "SCH-OAK-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "oak@example.com", found.Email)

	found, err = repos.Organizations.FindByEmail(ctx, "oak@example.com")
	require.NoError(t, err)
	assert.Equal(t, "SCH-OAK-AAAAAA", found.OrgCode)

	exists, err := repos.Organizations.CodeExists(ctx, "SCH-OAK-AAAAAA")
	require.NoError(t, err)
	assert.True(t, exists)

	admin, err := repos.Accounts.FindByOrgAndUsername(ctx, "SCH-OAK-AAAAAA", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, digest(), admin.Password)

	_, err = repos.Organizations.FindByCode(ctx, "SCH-NONE-AAAAAA")
	assert.ErrorIs(t, err, apperrors.ErrOrganizationNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func testDuplicateOrganization(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")

	err := repos.Organizations.CreateWithAdmin(ctx,
		&models.Organization{OrgCode: "SCH-OAK-AAAAAA", InstitutionName: "Oak 2", InstitutionType: models.InstitutionSchool, Email: "other@example.com"},
		&models.Account{Username: "admin", Password: digest()})
	assert.ErrorIs(t, err, apperrors.ErrOrgCodeAlreadyExists)

	err = repos.Organizations.CreateWithAdmin(ctx,
		&models.Organization{OrgCode: "SCH-OAK-BBBBBB", InstitutionName: "Oak 2", InstitutionType: models.InstitutionSchool, Email: "oak@example.com"},
		&models.Account{Username: "admin", Password: digest()})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	// A failed registration leaves nothing behind.
	exists, err := repos.Organizations.CodeExists(ctx, "SCH-OAK-BBBBBB")
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = repos.Accounts.FindByOrgAndUsername(ctx, "SCH-OAK-BBBBBB", "admin")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func testAccountScopedUniqueness(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	SeedOrganization(t, repos, "CLG-ELM-AAAAAA", "elm@example.com")

	teacher := func(org string) *models.Account {
		return &models.Account{OrgCode: org, Username: "jane", Password: digest(), Role: models.RoleTeacher}
	}
	require.NoError(t, repos.Accounts.Create(ctx, teacher("SCH-OAK-AAAAAA")))
	require.NoError(t, repos.Accounts.Create(ctx, teacher("CLG-ELM-AAAAAA")))
	assert.ErrorIs(t, repos.Accounts.Create(ctx, teacher("SCH-OAK-AAAAAA")), apperrors.ErrUsernameAlreadyExists)
	assert.ErrorIs(t, repos.Accounts.Create(ctx, teacher("SCH-NONE-AAAAAA")), apperrors.ErrOrganizationNotFound)
}

func testConcurrentAccountCreate(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repos.Accounts.Create(ctx, &models.Account{
				OrgCode: "SCH-OAK-AAAAAA", Username: "race", Password: digest(), Role: models.RoleTeacher,
			})
		}()
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)
	}
	assert.Equal(t, 1, ok)
}

func testAccountUpdates(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")

	next := models.PasswordDigest{Scheme: models.SchemeBcrypt, Hash: "new-hash"}
	require.NoError(t, repos.Accounts.UpdatePassword(ctx, "SCH-OAK-AAAAAA", "admin", next))

	pic := "avatars/admin.png"
	require.NoError(t, repos.Accounts.UpdateProfilePicture(ctx, "SCH-OAK-AAAAAA", "admin", &pic))

	admin, err := repos.Accounts.FindByOrgAndUsername(ctx, "SCH-OAK-AAAAAA", "admin")
	require.NoError(t, err)
	assert.Equal(t, next, admin.Password)
	require.NotNil(t, admin.ProfilePicture)
	assert.Equal(t, pic, *admin.ProfilePicture)

	assert.ErrorIs(t, repos.Accounts.UpdatePassword(ctx, "SCH-OAK-AAAAAA", "ghost", next), apperrors.ErrAccountNotFound)
}

func testInviteConsume(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	created := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "tok-live", created)))
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "tok-old", created.Add(-time.Hour))))

	name := "Jane Doe"
	account := &models.Account{Username: "jane", Password: digest(), DisplayName: &name}
	invite, err := repos.Invites.Consume(ctx, "tok-live", account, created.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, invite.Used)
	require.NotNil(t, invite.UsedBy)
	assert.Equal(t, "jane", *invite.UsedBy)
	assert.Equal(t, "SCH-OAK-AAAAAA", account.OrgCode)
	assert.Equal(t, models.RoleTeacher, account.Role)

	stored, err := repos.Invites.FindByToken(ctx, "tok-live")
	require.NoError(t, err)
	assert.Equal(t, models.InviteUsed, stored.StatusAt(created.Add(time.Minute)))
	require.NotNil(t, stored.UsedAt)

	_, err = repos.Invites.Consume(ctx, "tok-live", &models.Account{Username: "john", Password: digest()}, created.Add(2*time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrInviteAlreadyUsed)

	_, err = repos.Invites.Consume(ctx, "tok-old", &models.Account{Username: "john", Password: digest()}, created)
	assert.ErrorIs(t, err, apperrors.ErrInviteExpired)

	_, err = repos.Invites.Consume(ctx, "tok-missing", &models.Account{Username: "john", Password: digest()}, created)
	assert.ErrorIs(t, err, apperrors.ErrInviteNotFound)

	_, err = repos.Accounts.FindByOrgAndUsername(ctx, "SCH-OAK-AAAAAA", "john")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func testInviteConsumeRollsBack(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	created := time.Now().UTC()
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "tok", created)))

	// "admin" already exists, so the account insert fails and the invite must stay active.
	_, err := repos.Invites.Consume(ctx, "tok", &models.Account{Username: "admin", Password: digest()}, created)
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)

	invite, err := repos.Invites.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, invite.Used)
	assert.Nil(t, invite.UsedAt)
	assert.Nil(t, invite.UsedBy)
}

func testConcurrentInviteConsume(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	created := time.Now().UTC()
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "tok", created)))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repos.Invites.Consume(ctx, "tok", &models.Account{
				Username: fmt.Sprintf("teacher%d", i), Password: digest(),
			}, created.Add(time.Minute))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInviteAlreadyUsed)
	}
	assert.Equal(t, 1, ok)

	accounts, total, err := repos.Accounts.ListByOrganization(ctx, "SCH-OAK-AAAAAA", 0, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, accounts, 2)
}

func testInviteDeleteScopedToOrg(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	SeedOrganization(t, repos, "CLG-ELM-AAAAAA", "elm@example.com")
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "tok", time.Now().UTC())))

	assert.ErrorIs(t, repos.Invites.Delete(ctx, "CLG-ELM-AAAAAA", "tok"), apperrors.ErrInviteNotFound)
	require.NoError(t, repos.Invites.Delete(ctx, "SCH-OAK-AAAAAA", "tok"))
	assert.ErrorIs(t, repos.Invites.Delete(ctx, "SCH-OAK-AAAAAA", "tok"), apperrors.ErrInviteNotFound)

	_, err := repos.Invites.FindByToken(ctx, "tok")
	assert.ErrorIs(t, err, apperrors.ErrInviteNotFound)
}

func testListing(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()
	SeedOrganization(t, repos, "SCH-OAK-AAAAAA", "oak@example.com")
	SeedOrganization(t, repos, "CLG-ELM-AAAAAA", "elm@example.com")

	for _, name := range []string{"carol", "bob", "alice"} {
		require.NoError(t, repos.Accounts.Create(ctx, &models.Account{
			OrgCode: "SCH-OAK-AAAAAA", Username: name, Password: digest(), Role: models.RoleTeacher,
		}))
	}

	accounts, total, err := repos.Accounts.ListByOrganization(ctx, "SCH-OAK-AAAAAA", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Equal(t, "bob", accounts[1].Username)

	orgs, total, err := repos.Organizations.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orgs, 2)

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "first", base)))
	require.NoError(t, repos.Invites.Create(ctx, newInvite("SCH-OAK-AAAAAA", "second", base.Add(time.Minute))))
	require.NoError(t, repos.Invites.Create(ctx, newInvite("CLG-ELM-AAAAAA", "other", base)))

	invites, err := repos.Invites.ListByOrganization(ctx, "SCH-OAK-AAAAAA")
	require.NoError(t, err)
	require.Len(t, invites, 2)
	assert.Equal(t, "second", invites[0].Token)
	assert.Equal(t, "first", invites[1].Token)
}
