package store

import (
	"context"
	"database/sql"
)

// Querier represents the minimal database operations used by services.
// Both *sql.DB and *sql.Tx satisfy this interface, so a service call can
// run standalone or inside a transaction.
//
// SQL throughout the project writes placeholders as $1..$N in order of
// first use, a form both the pgx and go-sqlite3 drivers accept.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
