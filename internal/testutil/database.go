// Package testutil provides test utilities shared across packages.
package testutil

import (
	"context"
	"testing"

	"github.com/rbgleisson/contas-a-pagar/internal/storage"
)

// TestDB wraps an in-memory ledger store for tests.
type TestDB struct {
	Store *storage.SQLiteStorage
	t     *testing.T
}

// SetupTestDB creates a migrated in-memory ledger database. Cleanup is
// registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Store: store, t: t}
}

// MustCreateAccount creates an account or fails the test.
func (db *TestDB) MustCreateAccount(name string) int64 {
	db.t.Helper()
	acc, err := db.Store.CreateAccount(context.Background(), name)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return acc.ID
}
