package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/rollcall/internal/app/models"
	"github.com/yigit/rollcall/internal/db"
	"github.com/yigit/rollcall/internal/pkg/apperrors"
	"github.com/yigit/rollcall/internal/pkg/dberrors"
	"github.com/yigit/rollcall/internal/pkg/logger"
)

var accountColumns = []string{
	"id", "org_code", "username", "password_hash", "password_scheme", "role",
	"display_name", "class_division", "profile_picture", "created_at", "updated_at",
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AccountRepository handles account database operations
type AccountRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database *db.PostgresDB) *AccountRepository {
	return &AccountRepository{db: database, sb: psql()}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.OrgCode, &a.Username, &a.Password.Hash, &a.Password.Scheme, &a.Role,
		&a.DisplayName, &a.ClassDivision, &a.ProfilePicture, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// insertAccount runs inside whatever transaction or pool q belongs to
func insertAccount(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, a *models.Account) error {
	sql, args, err := sb.Insert("accounts").
		Columns("org_code", "username", "password_hash", "password_scheme", "role",
			"display_name", "class_division", "profile_picture").
		Values(a.OrgCode, a.Username, a.Password.Hash, string(a.Password.Scheme), string(a.Role),
			a.DisplayName, a.ClassDivision, a.ProfilePicture).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert account query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.AccountsOrgCodeUsernameKey):
			return apperrors.ErrUsernameAlreadyExists
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrOrganizationNotFound
		}
		return fmt.Errorf("error creating account: %w", err)
	}
	return nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return insertAccount(ctx, r.db.Pool, r.sb, account)
}

// FindByOrgAndUsername retrieves an account by its scoped key
func (r *AccountRepository) FindByOrgAndUsername(ctx context.Context, orgCode, username string) (*models.Account, error) {
	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"org_code": orgCode, "username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find account query: %w", err)
	}

	account, err := scanAccount(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Str("org_code", orgCode).Msg("Error scanning account row")
		return nil, fmt.Errorf("error retrieving account: %w", err)
	}
	return account, nil
}

// ListByOrganization returns one page of accounts ordered by username, plus the total count
func (r *AccountRepository) ListByOrganization(ctx context.Context, orgCode string, offset uint64, limit int) ([]*models.Account, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("accounts").Where(squirrel.Eq{"org_code": orgCode}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count accounts query: %w", err)
	}
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting accounts: %w", err)
	}

	sql, args, err := r.sb.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"org_code": orgCode}).
		OrderBy("username").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list accounts query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, total, nil
}

// UpdatePassword replaces the stored digest
func (r *AccountRepository) UpdatePassword(ctx context.Context, orgCode, username string, digest models.PasswordDigest) error {
	return r.update(ctx, orgCode, username, map[string]interface{}{
		"password_hash":   digest.Hash,
		"password_scheme": string(digest.Scheme),
	})
}

// UpdateProfilePicture sets or clears the profile picture reference
func (r *AccountRepository) UpdateProfilePicture(ctx context.Context, orgCode, username string, ref *string) error {
	return r.update(ctx, orgCode, username, map[string]interface{}{"profile_picture": ref})
}

func (r *AccountRepository) update(ctx context.Context, orgCode, username string, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("accounts").
		SetMap(values).
		Where(squirrel.Eq{"org_code": orgCode, "username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update account query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
