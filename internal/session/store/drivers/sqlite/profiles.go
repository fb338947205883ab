package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fixplanhq/fixplan/internal/session/domain"
	"github.com/fixplanhq/fixplan/internal/session/store"
)

type profilesRepo struct {
	q dbtx
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (user_id, tenant_id, name, role, state, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.TenantID, p.Name, p.Role, string(p.State),
		p.LastLoginAt, p.CreatedAt, p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *profilesRepo) GetProfile(ctx context.Context, tenantID, userID string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT user_id, tenant_id, name, role, state, last_login_at, created_at, updated_at
		FROM profiles WHERE tenant_id = ? AND user_id = ?`,
		tenantID, userID)

	var p domain.Profile
	var state string
	var lastLogin sql.NullTime
	err := row.Scan(
		&p.UserID, &p.TenantID, &p.Name, &p.Role, &state,
		&lastLogin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, mapErr(err)
	}
	p.State = domain.ProfileState(state)
	if lastLogin.Valid {
		t := lastLogin.Time
		p.LastLoginAt = &t
	}
	return p, nil
}

func (r *profilesRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE profiles SET last_login_at = ?, updated_at = ? WHERE user_id = ?`,
		at, at, userID)
	if err != nil {
		return mapErr(err)
	}
	return requireRows(res)
}

func (r *profilesRepo) SetState(ctx context.Context, userID string, state domain.ProfileState) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE profiles SET state = ?, updated_at = ? WHERE user_id = ?`,
		string(state), time.Now().UTC(), userID)
	if err != nil {
		return mapErr(err)
	}
	return requireRows(res)
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
