package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/rollcall/internal/app/repositories/memory"
	appServices "github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/config"
	"github.com/yigit/rollcall/internal/pkg/auth"
	"github.com/yigit/rollcall/internal/pkg/orgcode"
	"golang.org/x/crypto/bcrypt"
)

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Seed.Enabled = true
	cfg.Seed.InstitutionName = "Demo School"
	cfg.Seed.InstitutionType = "school"
	cfg.Seed.Email = "demo@rollcall.test"
	cfg.Seed.AdminPassword = "admin123"
	return cfg
}

func TestCreateDefaultOrganizationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost, zerolog.Nop())
	orgs := appServices.NewOrganizationService(repos.Organizations, hasher, orgcode.NewGenerator(), nil, "", zerolog.Nop())
	cfg := seedConfig()

	require.NoError(t, CreateDefaultOrganization(ctx, cfg, orgs, zerolog.Nop()))
	require.NoError(t, CreateDefaultOrganization(ctx, cfg, orgs, zerolog.Nop()))

	list, total, err := orgs.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	admin, err := repos.Accounts.FindByOrgAndUsername(ctx, list[0].OrgCode, "admin")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("admin123", admin.Password))
}

func TestCreateDefaultOrganizationDisabled(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost, zerolog.Nop())
	orgs := appServices.NewOrganizationService(repos.Organizations, hasher, orgcode.NewGenerator(), nil, "", zerolog.Nop())

	cfg := seedConfig()
	cfg.Seed.Enabled = false
	require.NoError(t, CreateDefaultOrganization(ctx, cfg, orgs, zerolog.Nop()))

	_, total, err := orgs.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}
