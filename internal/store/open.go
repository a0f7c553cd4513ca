package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Open connects to the ledger for the given driver. SQLite DSNs are file
// paths; Postgres DSNs are connection strings. pool is ignored for SQLite.
func Open(ctx context.Context, driver, dsn string, pool *PoolConfig) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn, pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
