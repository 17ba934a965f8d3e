package sqlite

import (
	"database/sql"
	"testing"
)

func openMemory(t testing.TB) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("cannot open in-memory database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}
