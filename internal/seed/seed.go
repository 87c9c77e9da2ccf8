package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	appServices "github.com/yigit/rollcall/internal/app/services"
	"github.com/yigit/rollcall/internal/config"
)

// Registrar is the part of the organization service the seed needs
type Registrar interface {
	EmailRegistered(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, in appServices.RegisterOrganizationInput) (*appServices.RegisteredOrganization, error)
}

// CreateDefaultOrganization registers the configured seed organization unless an
// organization with its email already exists. It goes through normal
// registration, so the admin password is hashed like any other.
func CreateDefaultOrganization(ctx context.Context, cfg *config.Config, orgs Registrar, lgr zerolog.Logger) error {
	if !cfg.Seed.Enabled {
		return nil
	}

	exists, err := orgs.EmailRegistered(ctx, cfg.Seed.Email)
	if err != nil {
		return fmt.Errorf("failed to check seed organization: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", cfg.Seed.Email).Msg("Seed organization already present")
		return nil
	}

	adminUsername := cfg.Seed.AdminUsername
	if adminUsername == "" {
		adminUsername = "admin"
	}

	reg, err := orgs.Register(ctx, appServices.RegisterOrganizationInput{
		InstitutionName: cfg.Seed.InstitutionName,
		InstitutionType: cfg.Seed.InstitutionType,
		Email:           cfg.Seed.Email,
		AdminUsername:   adminUsername,
		AdminPassword:   cfg.Seed.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to register seed organization: %w", err)
	}

	lgr.Info().
		Str("org_code", reg.Organization.OrgCode).
		Str("admin_username", reg.AdminUsername).
		Msg("Seed organization created")
	return nil
}
