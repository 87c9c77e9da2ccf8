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
)

var inviteColumns = []string{"id", "token", "org_code", "created_at", "expires_at", "used", "used_at", "used_by"}

// InviteRepository handles teacher invite database operations
type InviteRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(database *db.PostgresDB) *InviteRepository {
	return &InviteRepository{db: database, sb: psql()}
}

func scanInvite(row pgx.Row) (*models.Invite, error) {
	var i models.Invite
	if err := row.Scan(&i.ID, &i.Token, &i.OrgCode, &i.CreatedAt, &i.ExpiresAt, &i.Used, &i.UsedAt, &i.UsedBy); err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new invite
func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	sql, args, err := r.sb.Insert("teacher_invites").
		Columns("token", "org_code", "created_at", "expires_at").
		Values(invite.Token, invite.OrgCode, invite.CreatedAt, invite.ExpiresAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert invite query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&invite.ID); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.TeacherInvitesTokenKey):
			return fmt.Errorf("invite token collision: %w", apperrors.ErrResourceAlreadyExists)
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrOrganizationNotFound
		}
		return fmt.Errorf("error creating invite: %w", err)
	}
	return nil
}

func (r *InviteRepository) selectByToken(token string) squirrel.SelectBuilder {
	return r.sb.Select(inviteColumns...).From("teacher_invites").Where(squirrel.Eq{"token": token}).Limit(1)
}

// FindByToken retrieves an invite by its token
func (r *InviteRepository) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	sql, args, err := r.selectByToken(token).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find invite query: %w", err)
	}

	invite, err := scanInvite(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, fmt.Errorf("error retrieving invite: %w", err)
	}
	return invite, nil
}

// Consume locks the invite row, re-checks it, creates the teacher account
// and marks the invite used. Any failure rolls everything back.
func (r *InviteRepository) Consume(ctx context.Context, token string, account *models.Account, now time.Time) (*models.Invite, error) {
	var consumed *models.Invite
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.selectByToken(token).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock invite query: %w", err)
		}

		invite, err := scanInvite(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrInviteNotFound
			}
			return fmt.Errorf("error locking invite: %w", err)
		}

		switch invite.StatusAt(now) {
		case models.InviteUsed:
			return apperrors.ErrInviteAlreadyUsed
		case models.InviteExpired:
			return apperrors.ErrInviteExpired
		}

		account.OrgCode = invite.OrgCode
		account.Role = models.RoleTeacher
		if err := insertAccount(ctx, tx, r.sb, account); err != nil {
			return err
		}

		sql, args, err = r.sb.Update("teacher_invites").
			Set("used", true).
			Set("used_at", now).
			Set("used_by", account.Username).
			Where(squirrel.Eq{"token": token, "used": false}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build mark invite used query: %w", err)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error marking invite used: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrInviteAlreadyUsed
		}

		invite.Used = true
		invite.UsedAt = &now
		invite.UsedBy = &account.Username
		consumed = invite
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

// Delete removes an invite owned by orgCode
func (r *InviteRepository) Delete(ctx context.Context, orgCode, token string) error {
	sql, args, err := r.sb.Delete("teacher_invites").
		Where(squirrel.Eq{"token": token, "org_code": orgCode}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete invite query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting invite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInviteNotFound
	}
	return nil
}

// ListByOrganization returns every invite of the organization, newest first
func (r *InviteRepository) ListByOrganization(ctx context.Context, orgCode string) ([]*models.Invite, error) {
	sql, args, err := r.sb.Select(inviteColumns...).
		From("teacher_invites").
		Where(squirrel.Eq{"org_code": orgCode}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list invites query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing invites: %w", err)
	}
	defer rows.Close()

	invites := make([]*models.Invite, 0)
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning invite row: %w", err)
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invite rows: %w", err)
	}
	return invites, nil
}
