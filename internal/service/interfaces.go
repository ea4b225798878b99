// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// EntryFilter defines filtering options for entry searches. Zero values
// mean "no constraint" for their field.
type EntryFilter struct {
	Kind        model.EntryKind // empty means both ledgers
	Description string          // case-insensitive substring
	DateFrom    string          // YYYY-MM-DD inclusive
	DateTo      string          // YYYY-MM-DD inclusive
	Category    string          // exact match
	Status      string          // "", "pendente" or "liquidado"
	AmountMin   *float64
	AmountMax   *float64
	AccountID   int64
	Month       int // 1-12
	Year        int
}

// LedgerStore defines the contract for our persistence layer.
type LedgerStore interface {
	// Import engine boundary
	ResolveOrCreateAccount(ctx context.Context, accountID int64, accountName string) (int64, error)
	ExistsByExternalID(ctx context.Context, kind model.EntryKind, accountID int64, externalID string) (bool, error)
	ExistsByNaturalKey(ctx context.Context, kind model.EntryKind, description string, amount float64, date string, accountID int64) (bool, error)
	InsertEntry(ctx context.Context, entry *model.Entry) (int64, error)
	RegisterCategoryIfAbsent(ctx context.Context, name string) error

	// Entry operations
	ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error)
	GetEntry(ctx context.Context, kind model.EntryKind, id int64) (*model.Entry, error)
	AddEntry(ctx context.Context, entry *model.Entry) (int64, error)
	UpdateEntry(ctx context.Context, entry *model.Entry) error
	DeleteEntry(ctx context.Context, kind model.EntryKind, id int64) error
	SetSettled(ctx context.Context, kind model.EntryKind, id int64, settled bool) error
	SearchEntries(ctx context.Context, filter EntryFilter) ([]model.Entry, error)

	// Account operations
	ListAccounts(ctx context.Context) ([]model.Account, error)
	CreateAccount(ctx context.Context, name string) (*model.Account, error)
	RenameAccount(ctx context.Context, id int64, newName string) error
	DeleteAccount(ctx context.Context, id int64) error
	AccountHasEntries(ctx context.Context, id int64) (bool, error)

	// Category operations
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	RenameCategory(ctx context.Context, oldName, newName string) error
	DeleteCategory(ctx context.Context, name string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
