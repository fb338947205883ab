package sqlite

import (
	"context"

	"github.com/fixplanhq/fixplan/internal/session/domain"
)

type tenantsRepo struct {
	q dbtx
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tenants (id, name, status, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Status), t.CreatedAt,
	)
	return mapErr(err)
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, status, created_at
		FROM tenants WHERE id = ?`, id)

	var t domain.Tenant
	var status string
	if err := row.Scan(&t.ID, &t.Name, &status, &t.CreatedAt); err != nil {
		return domain.Tenant{}, mapErr(err)
	}
	t.Status = domain.TenantStatus(status)
	return t, nil
}

func (r *tenantsRepo) SetTenantStatus(ctx context.Context, id string, status domain.TenantStatus) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tenants SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return mapErr(err)
	}
	return requireRows(res)
}

func (r *tenantsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return false, mapErr(err)
	}
	return count == 0, nil
}
