package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/domain"
)

type refreshTokensRepo struct {
	q dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, tenant_id, session_id, token_hash, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TenantID, t.SessionID, t.TokenHash,
		t.ExpiresAt, t.RevokedAt, t.CreatedAt,
	)
	return mapErr(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, tenant_id, session_id, token_hash, expires_at, revoked_at, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	var revokedAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.TenantID, &t.SessionID, &t.TokenHash,
		&t.ExpiresAt, &revokedAt, &t.CreatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapErr(err)
	}
	if revokedAt.Valid {
		at := revokedAt.Time
		t.RevokedAt = &at
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE token_hash = ? AND revoked_at IS NULL`,
		time.Now().UTC(), hash)
	return mapErr(err)
}

func (r *refreshTokensRepo) RevokeSession(ctx context.Context, sessionID string) error {
	// Intentionally not an error when nothing matches; sign-out must be
	// idempotent.
	_, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE session_id = ? AND revoked_at IS NULL`,
		time.Now().UTC(), sessionID)
	return mapErr(err)
}

func (r *refreshTokensRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}
