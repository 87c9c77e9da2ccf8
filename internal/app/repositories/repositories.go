package repositories

import (
	"context"
	"time"

	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/db"
)

// OrganizationStore persists organizations. Organizations are written once
// together with their bootstrap admin and never updated.
type OrganizationStore interface {
	// CreateWithAdmin inserts org and admin in one transaction. It fills the
	// generated IDs and timestamps. Fails with ErrOrgCodeAlreadyExists,
	// ErrEmailAlreadyExists or ErrUsernameAlreadyExists.
	CreateWithAdmin(ctx context.Context, org *models.Organization, admin *models.Account) error
	FindByCode(ctx context.Context, orgCode string) (*models.Organization, error)
	FindByEmail(ctx context.Context, email string) (*models.Organization, error)
	CodeExists(ctx context.Context, orgCode string) (bool, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.Organization, int64, error)
}

// AccountStore persists accounts scoped by organization code
type AccountStore interface {
	// Create inserts the account. The (org_code, username) constraint decides
	// conflicts: ErrUsernameAlreadyExists. Unknown org: ErrOrganizationNotFound.
	Create(ctx context.Context, account *models.Account) error
	FindByOrgAndUsername(ctx context.Context, orgCode, username string) (*models.Account, error)
	ListByOrganization(ctx context.Context, orgCode string, offset uint64, limit int) ([]*models.Account, int64, error)
	UpdatePassword(ctx context.Context, orgCode, username string, digest models.PasswordDigest) error
	UpdateProfilePicture(ctx context.Context, orgCode, username string, ref *string) error
}

// InviteStore persists teacher invites
type InviteStore interface {
	Create(ctx context.Context, invite *models.Invite) error
	FindByToken(ctx context.Context, token string) (*models.Invite, error)
	// Consume validates the invite at now, creates account as a teacher of the
	// invite's organization and marks the invite used, all atomically.
	Consume(ctx context.Context, token string, account *models.Account, now time.Time) (*models.Invite, error)
	// Delete removes the invite only when it belongs to orgCode, else ErrInviteNotFound
	Delete(ctx context.Context, orgCode, token string) error
	ListByOrganization(ctx context.Context, orgCode string) ([]*models.Invite, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Organizations OrganizationStore
	Accounts      AccountStore
	Invites       InviteStore
}

// NewRepositories initializes the Postgres repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Organizations: NewOrganizationRepository(database),
		Accounts:      NewAccountRepository(database),
		Invites:       NewInviteRepository(database),
	}
}
