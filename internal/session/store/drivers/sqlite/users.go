package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fixplanhq/fixplan/internal/session/domain"
)

type usersRepo struct {
	q dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, tenant_id, email, password_hash, email_verified_at, totp_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.TenantID, strings.ToLower(u.Email), u.PasswordHash,
		u.EmailVerifiedAt, u.TOTPSecret, u.CreatedAt, u.UpdatedAt,
	)
	return mapErr(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.q.QueryRowContext(ctx, userSelect+` WHERE email = ?`, strings.ToLower(email)))
}

const userSelect = `
	SELECT id, tenant_id, email, password_hash, email_verified_at, totp_secret, created_at, updated_at
	FROM users`

func (r *usersRepo) scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var verifiedAt sql.NullTime
	var totpSecret sql.NullString

	err := row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash,
		&verifiedAt, &totpSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	if totpSecret.Valid {
		s := totpSecret.String
		u.TOTPSecret = &s
	}
	return u, nil
}
