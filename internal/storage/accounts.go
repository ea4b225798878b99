package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

// DefaultAccountName is the account created when an import has no usable
// account reference and the database holds no accounts at all.
const DefaultAccountName = "Conta Importada"

// ListAccounts returns all financial accounts ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, nome FROM contas_financeiras ORDER BY nome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.ID, &acc.Name); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount creates a new financial account with a unique name.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO contas_financeiras (nome) VALUES (?)`, name)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("account %q: %w", name, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ID: %w", err)
	}

	slog.Info("created account", "name", name, "id", id)
	return &model.Account{ID: id, Name: name}, nil
}

// RenameAccount changes an account's name, keeping names unique.
func (s *SQLiteStorage) RenameAccount(ctx context.Context, id int64, newName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if err := validateString(newName, "newName"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE contas_financeiras SET nome = ? WHERE id = ?`, newName, id)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("account %q: %w", newName, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to rename account %d: %w", id, err)
	}
	return requireRow(res, id)
}

// AccountHasEntries reports whether any ledger entry references the account.
func (s *SQLiteStorage) AccountHasEntries(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateID(id, "id"); err != nil {
		return false, err
	}

	query := `
		SELECT 1 FROM contas_a_pagar WHERE conta_id = ?
		UNION
		SELECT 1 FROM contas_a_receber WHERE conta_id = ?
		LIMIT 1`

	var one int
	err := s.db.QueryRowContext(ctx, query, id, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check account references: %w", err)
	}
	return true, nil
}

// DeleteAccount removes an account. Accounts referenced by entries cannot be
// deleted; the foreign key RESTRICT is the backstop for the explicit check.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	inUse, err := s.AccountHasEntries(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("account %d: %w", id, common.ErrAccountInUse)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM contas_financeiras WHERE id = ?`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("account %d: %w", id, common.ErrAccountInUse)
		}
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	return requireRow(res, id)
}

// ResolveOrCreateAccount turns a statement's account reference into a
// concrete account ID. Preference order: explicit ID, exact name match
// (created when missing), first account by ascending ID, a default-named
// account created from scratch.
func (s *SQLiteStorage) ResolveOrCreateAccount(ctx context.Context, accountID int64, accountName string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	if accountID > 0 {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM contas_financeiras WHERE id = ?`, accountID).Scan(&one)
		if err == nil {
			return accountID, nil
		}
		if err != sql.ErrNoRows {
			return 0, fmt.Errorf("failed to look up account %d: %w", accountID, err)
		}
		// Unknown ID falls through to name resolution.
	}

	name := strings.TrimSpace(accountName)
	if name != "" {
		var id int64
		err := s.db.QueryRowContext(ctx, `SELECT id FROM contas_financeiras WHERE nome = ?`, name).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, fmt.Errorf("failed to look up account %q: %w", name, err)
		}
		acc, err := s.CreateAccount(ctx, name)
		if err != nil {
			return 0, err
		}
		return acc.ID, nil
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM contas_financeiras ORDER BY id LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up fallback account: %w", err)
	}

	acc, err := s.CreateAccount(ctx, DefaultAccountName)
	if err != nil {
		return 0, err
	}
	return acc.ID, nil
}
