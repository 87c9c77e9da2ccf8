package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/db"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/dberrors"
)

var organizationColumns = []string{"id", "org_code", "institution_name", "institution_type", "email", "created_at"}

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(database *db.PostgresDB) *OrganizationRepository {
	return &OrganizationRepository{db: database, sb: psql()}
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	if err := row.Scan(&o.ID, &o.OrgCode, &o.InstitutionName, &o.InstitutionType, &o.Email, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateWithAdmin inserts the organization and its first admin account in one transaction
func (r *OrganizationRepository) CreateWithAdmin(ctx context.Context, org *models.Organization, admin *models.Account) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("organizations").
			Columns("org_code", "institution_name", "institution_type", "email").
			Values(org.OrgCode, org.InstitutionName, string(org.InstitutionType), org.Email).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert organization query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&org.ID, &org.CreatedAt); err != nil {
			switch {
			case dberrors.IsDuplicateConstraintError(err, dberrors.OrganizationsOrgCodeKey):
				return apperrors.ErrOrgCodeAlreadyExists
			case dberrors.IsDuplicateConstraintError(err, dberrors.OrganizationsEmailKey):
				return apperrors.ErrEmailAlreadyExists
			}
			return fmt.Errorf("error creating organization: %w", err)
		}

		admin.OrgCode = org.OrgCode
		admin.Role = models.RoleAdmin
		return insertAccount(ctx, tx, r.sb, admin)
	})
}

func (r *OrganizationRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Organization, error) {
	sql, args, err := r.sb.Select(organizationColumns...).From("organizations").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find organization query: %w", err)
	}

	org, err := scanOrganization(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("error retrieving organization: %w", err)
	}
	return org, nil
}

// FindByCode retrieves an organization by its code
func (r *OrganizationRepository) FindByCode(ctx context.Context, orgCode string) (*models.Organization, error) {
	return r.findOne(ctx, squirrel.Eq{"org_code": orgCode})
}

// FindByEmail retrieves an organization by its contact email
func (r *OrganizationRepository) FindByEmail(ctx context.Context, email string) (*models.Organization, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// CodeExists reports whether orgCode is taken
func (r *OrganizationRepository) CodeExists(ctx context.Context, orgCode string) (bool, error) {
	sql, args, err := r.sb.Select("1").From("organizations").Where(squirrel.Eq{"org_code": orgCode}).Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build org code exists query: %w", err)
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking org code: %w", err)
	}
	return exists, nil
}

// List returns one page of organizations, newest first, plus the total count
func (r *OrganizationRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Organization, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM organizations").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting organizations: %w", err)
	}

	sql, args, err := r.sb.Select(organizationColumns...).
		From("organizations").
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list organizations query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0, limit)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning organization row: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating organization rows: %w", err)
	}
	return orgs, total, nil
}
