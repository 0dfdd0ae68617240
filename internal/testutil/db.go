// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/certportal/internal/db"
)

// NewDB returns a migrated in-memory SQLite database that is closed when the
// test ends. Every call gets its own database.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Connect("sqlite://:memory:", db.PoolConfig{})
	if err != nil {
		t.Fatalf("testutil: connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("testutil: migrate: %v", err)
	}
	return conn
}
