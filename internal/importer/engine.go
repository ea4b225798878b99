// Package importer merges parsed statement transactions into the ledger.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/service"
	"github.com/rbgleisson/contas-a-pagar/internal/storage"
)

// Result summarizes one import run. Only Imported is part of the import
// contract; the other counters feed logging.
type Result struct {
	Imported   int
	Duplicates int
	Failed     int
}

// Engine merges transaction candidates into a LedgerStore with duplicate
// suppression. It is stateless: all state lives in the store, all results
// are returned to the caller.
type Engine struct {
	store    service.LedgerStore
	progress func(done, total int)
}

// NewEngine creates an import engine backed by the given store.
func NewEngine(store service.LedgerStore) *Engine {
	return &Engine{store: store}
}

// WithProgress registers a callback invoked after each processed candidate.
func (e *Engine) WithProgress(fn func(done, total int)) *Engine {
	e.progress = fn
	return e
}

// Import merges each candidate into the ledger and returns how many entries
// were actually inserted. Duplicates are skipped silently; a failure on one
// candidate never aborts the batch, and entries inserted before a later
// failure stay committed.
func (e *Engine) Import(ctx context.Context, transactions []model.Transaction) (Result, error) {
	var result Result

	for i := range transactions {
		txn := transactions[i]
		if err := e.importOne(ctx, &txn, &result); err != nil {
			result.Failed++
			slog.Warn("skipping transaction",
				"description", txn.Description,
				"date", txn.Date,
				"error", err)
		}
		if e.progress != nil {
			e.progress(i+1, len(transactions))
		}
	}

	slog.Info("import finished",
		"candidates", len(transactions),
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"failed", result.Failed)

	return result, nil
}

func (e *Engine) importOne(ctx context.Context, txn *model.Transaction, result *Result) error {
	if !txn.Kind.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidKind, txn.Kind)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("amount %v is not a number", txn.Amount)
	}

	nativeID := txn.ExternalID != ""
	txn.EnsureExternalID()

	accountID, err := e.store.ResolveOrCreateAccount(ctx, txn.AccountID, txn.AccountName)
	if err != nil {
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	dup, err := e.isDuplicate(ctx, txn, accountID, nativeID)
	if err != nil {
		return err
	}
	if dup {
		result.Duplicates++
		return nil
	}

	entry := &model.Entry{
		Kind:        txn.Kind,
		Description: txn.Description,
		Amount:      txn.Amount,
		Date:        model.NormalizeDate(txn.Date),
		AccountID:   accountID,
		Category:    txn.Category,
		Settled:     false,
		ExternalID:  txn.ExternalID,
	}

	if _, err := e.store.InsertEntry(ctx, entry); err != nil {
		// The partial unique index on (conta_id, fitid) is the duplicate
		// prevention mechanism of record; the existence probe above only
		// avoids constraint noise. A violation here means another run won
		// the race, not a failure.
		if storage.IsUniqueViolation(err) {
			result.Duplicates++
			return nil
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	result.Imported++

	if txn.Category != "" {
		// Best-effort: a lost race on the category name is not a problem.
		if err := e.store.RegisterCategoryIfAbsent(ctx, txn.Category); err != nil {
			slog.Debug("could not register category", "category", txn.Category, "error", err)
		}
	}

	return nil
}

// isDuplicate probes the external identifier. Candidates whose identifier
// was generated rather than taken from the statement are also checked by
// natural key, which catches entries that were typed in by hand before the
// statement arrived.
func (e *Engine) isDuplicate(ctx context.Context, txn *model.Transaction, accountID int64, nativeID bool) (bool, error) {
	exists, err := e.store.ExistsByExternalID(ctx, txn.Kind, accountID, txn.ExternalID)
	if err != nil {
		return false, fmt.Errorf("failed to check external ID: %w", err)
	}
	if exists || nativeID {
		return exists, nil
	}

	exists, err = e.store.ExistsByNaturalKey(ctx, txn.Kind, txn.Description, txn.Amount, model.NormalizeDate(txn.Date), accountID)
	if err != nil {
		return false, fmt.Errorf("failed to check natural key: %w", err)
	}
	return exists, nil
}
