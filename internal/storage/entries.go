package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// tableFor maps a ledger type to its table and settled-status column.
// Payables and receivables are deliberately separate tables so their
// uniqueness scopes stay independent.
func tableFor(kind model.EntryKind) (table, statusCol string) {
	if kind == model.KindPayable {
		return "contas_a_pagar", "pago"
	}
	return "contas_a_receber", "recebido"
}

// externalID converts an entry's external identifier to its stored form.
// Empty means "no identifier" and must be NULL so the partial unique index
// on (conta_id, fitid) ignores it.
func externalID(id string) sql.NullString {
	id = strings.TrimSpace(id)
	return sql.NullString{String: id, Valid: id != ""}
}

// InsertEntry inserts a new ledger entry and returns its row ID. The unique
// index on (conta_id, fitid) rejects duplicate external identifiers; callers
// classify that with IsUniqueViolation.
func (s *SQLiteStorage) InsertEntry(ctx context.Context, entry *model.Entry) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateEntry(entry); err != nil {
		return 0, err
	}

	table, statusCol := tableFor(entry.Kind)
	query := fmt.Sprintf(`
		INSERT INTO %s (descricao, valor, data, conta_id, categoria, %s, fitid)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, table, statusCol)

	res, err := s.db.ExecContext(ctx, query,
		entry.Description,
		entry.Amount,
		entry.Date,
		entry.AccountID,
		entry.Category,
		boolToInt(entry.Settled),
		externalID(entry.ExternalID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s entry: %w", entry.Kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted entry ID: %w", err)
	}
	entry.ID = id
	return id, nil
}

// ExistsByExternalID checks whether an entry with the given external
// identifier already exists for the account in the given ledger.
func (s *SQLiteStorage) ExistsByExternalID(ctx context.Context, kind model.EntryKind, accountID int64, extID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateKind(kind); err != nil {
		return false, err
	}
	if err := validateString(extID, "externalID"); err != nil {
		return false, err
	}

	table, _ := tableFor(kind)
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE conta_id = ? AND fitid = ? LIMIT 1`, table)

	var one int
	err := s.db.QueryRowContext(ctx, query, accountID, extID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check external ID: %w", err)
	}
	return true, nil
}

// ExistsByNaturalKey checks for an entry matching description, magnitude
// (within float tolerance), date and account. Fallback dedup path for
// candidates with no identifier at all.
func (s *SQLiteStorage) ExistsByNaturalKey(ctx context.Context, kind model.EntryKind, description string, amount float64, date string, accountID int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateKind(kind); err != nil {
		return false, err
	}

	table, _ := tableFor(kind)
	query := fmt.Sprintf(`
		SELECT 1 FROM %s
		WHERE descricao = ? AND ABS(valor - ?) < 1e-6 AND data = ? AND conta_id = ?
		LIMIT 1`, table)

	var one int
	err := s.db.QueryRowContext(ctx, query, description, amount, date, accountID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check natural key: %w", err)
	}
	return true, nil
}

// AddEntry validates and inserts a manually created entry.
func (s *SQLiteStorage) AddEntry(ctx context.Context, entry *model.Entry) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateEntry(entry); err != nil {
		return 0, err
	}
	if err := validateString(entry.Description, "description"); err != nil {
		return 0, err
	}

	entry.Date = model.NormalizeDate(entry.Date)
	id, err := s.InsertEntry(ctx, entry)
	if err != nil {
		return 0, err
	}

	if entry.Category != "" {
		if catErr := s.RegisterCategoryIfAbsent(ctx, entry.Category); catErr != nil {
			slog.Debug("could not register category", "category", entry.Category, "error", catErr)
		}
	}
	return id, nil
}

// GetEntry returns a single entry by ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetEntry(ctx context.Context, kind model.EntryKind, id int64) (*model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	table, statusCol := tableFor(kind)
	query := fmt.Sprintf(`
		SELECT e.id, e.descricao, e.valor, e.data, e.conta_id, cf.nome, e.categoria, e.%s, e.fitid
		  FROM %s e
		  JOIN contas_financeiras cf ON cf.id = e.conta_id
		 WHERE e.id = ?`, statusCol, table)

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, id), kind)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns all entries of one ledger type ordered by date then ID.
func (s *SQLiteStorage) ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	table, statusCol := tableFor(kind)
	query := fmt.Sprintf(`
		SELECT e.id, e.descricao, e.valor, e.data, e.conta_id, cf.nome, e.categoria, e.%s, e.fitid
		  FROM %s e
		  JOIN contas_financeiras cf ON cf.id = e.conta_id
		 ORDER BY date(e.data) ASC, e.id ASC`, statusCol, table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s entries: %w", kind, err)
	}
	defer func() { _ = rows.Close() }()

	return collectEntries(rows, kind)
}

// UpdateEntry updates description, amount, date, account and category of an
// existing entry. The settled flag and external identifier are not touched.
func (s *SQLiteStorage) UpdateEntry(ctx context.Context, entry *model.Entry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	if err := validateID(entry.ID, "entry.ID"); err != nil {
		return err
	}

	table, _ := tableFor(entry.Kind)
	query := fmt.Sprintf(`
		UPDATE %s SET descricao = ?, valor = ?, data = ?, conta_id = ?, categoria = ?
		 WHERE id = ?`, table)

	res, err := s.db.ExecContext(ctx, query,
		entry.Description,
		entry.Amount,
		model.NormalizeDate(entry.Date),
		entry.AccountID,
		entry.Category,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s entry %d: %w", entry.Kind, entry.ID, err)
	}
	if err := requireRow(res, entry.ID); err != nil {
		return err
	}

	if entry.Category != "" {
		if catErr := s.RegisterCategoryIfAbsent(ctx, entry.Category); catErr != nil {
			slog.Debug("could not register category", "category", entry.Category, "error", catErr)
		}
	}
	return nil
}

// DeleteEntry removes an entry by ID.
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, kind model.EntryKind, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	table, _ := tableFor(kind)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry %d: %w", kind, id, err)
	}
	return requireRow(res, id)
}

// SetSettled toggles the pago/recebido flag of an entry.
func (s *SQLiteStorage) SetSettled(ctx context.Context, kind model.EntryKind, id int64, settled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	table, statusCol := tableFor(kind)
	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id = ?`, table, statusCol)

	res, err := s.db.ExecContext(ctx, query, boolToInt(settled), id)
	if err != nil {
		return fmt.Errorf("failed to update %s status for entry %d: %w", kind, id, err)
	}
	return requireRow(res, id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
