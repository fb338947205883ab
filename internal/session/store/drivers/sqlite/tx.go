package sqlite

import (
	"database/sql"

	"github.com/fixplanhq/fixplan/internal/session/store"
)

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Tenants() store.Tenants             { return &tenantsRepo{q: t.tx} }
func (t *storeTx) Users() store.Users                 { return &usersRepo{q: t.tx} }
func (t *storeTx) Profiles() store.Profiles           { return &profilesRepo{q: t.tx} }
func (t *storeTx) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.tx} }

func (t *storeTx) Commit() error   { return t.tx.Commit() }
func (t *storeTx) Rollback() error { return t.tx.Rollback() }
