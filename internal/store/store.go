// Package store persists packzen data in SQLite.
//
// Getters return (nil, nil) when a row does not exist. Business-rule
// violations are reported as domain errors from internal/errors.
package store

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// psql builds SQLite-compatible queries with ? placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
