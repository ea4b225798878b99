package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS contas_financeiras (
					id   INTEGER PRIMARY KEY AUTOINCREMENT,
					nome TEXT NOT NULL UNIQUE
				)`,

				`CREATE TABLE IF NOT EXISTS categorias (
					id   INTEGER PRIMARY KEY AUTOINCREMENT,
					nome TEXT NOT NULL UNIQUE
				)`,

				`CREATE TABLE IF NOT EXISTS contas_a_pagar (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					descricao  TEXT,
					valor      REAL,
					data       TEXT,
					conta_id   INTEGER NOT NULL,
					categoria  TEXT,
					pago       INTEGER DEFAULT 0,
					fitid      TEXT,
					FOREIGN KEY(conta_id) REFERENCES contas_financeiras(id) ON DELETE RESTRICT
				)`,

				`CREATE TABLE IF NOT EXISTS contas_a_receber (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					descricao  TEXT,
					valor      REAL,
					data       TEXT,
					conta_id   INTEGER NOT NULL,
					categoria  TEXT,
					recebido   INTEGER DEFAULT 0,
					fitid      TEXT,
					FOREIGN KEY(conta_id) REFERENCES contas_financeiras(id) ON DELETE RESTRICT
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Upgrade legacy databases in place",
		Up: func(tx *sql.Tx) error {
			// Databases created before the statement import feature lack the
			// data, status and fitid columns and store due dates in a
			// "vencimento" column. Add what is missing and copy vencimento
			// into data without dropping anything.
			columns := map[string][][2]string{
				"contas_a_pagar": {
					{"data", "TEXT"},
					{"pago", "INTEGER DEFAULT 0"},
					{"fitid", "TEXT"},
				},
				"contas_a_receber": {
					{"data", "TEXT"},
					{"recebido", "INTEGER DEFAULT 0"},
					{"fitid", "TEXT"},
				},
			}

			for _, table := range []string{"contas_a_pagar", "contas_a_receber"} {
				for _, col := range columns[table] {
					if err := addColumnIfMissing(tx, table, col[0], col[1]); err != nil {
						return err
					}
				}

				hasLegacy, err := columnExists(tx, table, "vencimento")
				if err != nil {
					return err
				}
				if !hasLegacy {
					continue
				}
				query := fmt.Sprintf(`
					UPDATE %s
					   SET data = COALESCE(NULLIF(data, ''), vencimento)
					 WHERE (data IS NULL OR data = '')`, table)
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to backfill data from vencimento on %s: %w", table, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Unique indexes on (conta_id, fitid) for statement dedup",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS ux_pagar_conta_fitid
					ON contas_a_pagar (conta_id, fitid)
					WHERE fitid IS NOT NULL`,
				`CREATE UNIQUE INDEX IF NOT EXISTS ux_receber_conta_fitid
					ON contas_a_receber (conta_id, fitid)
					WHERE fitid IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_pagar_data ON contas_a_pagar(data)`,
				`CREATE INDEX IF NOT EXISTS idx_receber_data ON contas_a_receber(data)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// addColumnIfMissing issues ALTER TABLE ADD COLUMN when the column is absent.
func addColumnIfMissing(tx *sql.Tx, table, column, columnType string) error {
	exists, err := columnExists(tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnType)
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}

// columnExists checks PRAGMA table_info for the given column.
func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("failed to scan table info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
