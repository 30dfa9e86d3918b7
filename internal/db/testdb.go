package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns an in-memory packing database with every table created.
// The database is closed when the test ends.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	database, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open in-memory db: %v", err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := Migrate(database); err != nil {
		tb.Fatalf("migrate in-memory db: %v", err)
	}
	return database
}

// MustExec runs raw statements against a test database, failing on the first error.
func MustExec(tb testing.TB, database *sql.DB, stmts ...string) {
	tb.Helper()
	for _, s := range stmts {
		if _, err := database.Exec(s); err != nil {
			tb.Fatalf("exec %q: %v", s, err)
		}
	}
}
