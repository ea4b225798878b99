package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/rbgleisson/contas-a-pagar/internal/config"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/storage"
)

// initStorage initializes the ledger store with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/financeiro/financeiro.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseKind converts the --kind flag value to a ledger type.
func parseKind(s string) (model.EntryKind, error) {
	kind := model.EntryKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid ledger type %q (expected %q or %q)", s, model.KindPayable, model.KindReceivable)
	}
	return kind, nil
}

// settledLabel renders an entry's status column for list output.
func settledLabel(kind model.EntryKind, settled bool) string {
	if !settled {
		return "Pendente"
	}
	if kind == model.KindPayable {
		return "Pago"
	}
	return "Recebido"
}
