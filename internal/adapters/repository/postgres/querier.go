package postgres

import (
	"context"
	"database/sql"
)

// SQLQuerier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// repositories work the same inside and outside a transaction.
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
