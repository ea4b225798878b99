package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rbgleisson/contas-a-pagar/internal/common"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/service"
)

// rowScanner abstracts sql.Row and sql.Rows for entry scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one entry row in the column order used by all entry
// queries: id, descricao, valor, data, conta_id, conta nome, categoria,
// status, fitid.
func scanEntry(row rowScanner, kind model.EntryKind) (*model.Entry, error) {
	var (
		entry       model.Entry
		description sql.NullString
		amount      sql.NullFloat64
		date        sql.NullString
		category    sql.NullString
		settled     sql.NullInt64
		extID       sql.NullString
	)

	err := row.Scan(&entry.ID, &description, &amount, &date, &entry.AccountID,
		&entry.AccountName, &category, &settled, &extID)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	entry.Kind = kind
	entry.Description = description.String
	entry.Amount = amount.Float64
	entry.Date = date.String
	entry.Category = category.String
	entry.Settled = settled.Int64 != 0
	entry.ExternalID = extID.String
	return &entry, nil
}

// collectEntries drains rows into a slice.
func collectEntries(rows *sql.Rows, kind model.EntryKind) ([]model.Entry, error) {
	var entries []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows, kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// requireRow converts a zero-row update or delete into common.ErrNotFound.
func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// buildWhere assembles WHERE clauses and arguments for one ledger table from
// a filter. The settled-status clause depends on the table's status column.
func buildWhere(filter service.EntryFilter, statusCol string) (string, []any) {
	var (
		where []string
		args  []any
	)

	if filter.Description != "" {
		where = append(where, "UPPER(e.descricao) LIKE UPPER(?)")
		args = append(args, "%"+filter.Description+"%")
	}
	if filter.DateFrom != "" {
		where = append(where, "date(e.data) >= date(?)")
		args = append(args, model.NormalizeDate(filter.DateFrom))
	}
	if filter.DateTo != "" {
		where = append(where, "date(e.data) <= date(?)")
		args = append(args, model.NormalizeDate(filter.DateTo))
	}
	if filter.AmountMin != nil {
		where = append(where, "e.valor >= ?")
		args = append(args, *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		where = append(where, "e.valor <= ?")
		args = append(args, *filter.AmountMax)
	}
	if filter.Month != 0 {
		where = append(where, "strftime('%m', e.data) = ?")
		args = append(args, fmt.Sprintf("%02d", filter.Month))
	}
	if filter.Year != 0 {
		where = append(where, "strftime('%Y', e.data) = ?")
		args = append(args, fmt.Sprintf("%d", filter.Year))
	}
	if filter.AccountID != 0 {
		where = append(where, "e.conta_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.Category != "" {
		where = append(where, "e.categoria = ?")
		args = append(args, filter.Category)
	}

	switch filter.Status {
	case "pendente":
		where = append(where, fmt.Sprintf("e.%s = 0", statusCol))
	case "liquidado":
		where = append(where, fmt.Sprintf("e.%s = 1", statusCol))
	}

	if len(where) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

// SearchEntries returns entries matching the filter. An empty filter kind
// searches both ledgers, merged in date order.
func (s *SQLiteStorage) SearchEntries(ctx context.Context, filter service.EntryFilter) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	kinds := []model.EntryKind{filter.Kind}
	if filter.Kind == "" {
		kinds = []model.EntryKind{model.KindPayable, model.KindReceivable}
	}

	var results []model.Entry
	for _, kind := range kinds {
		if err := validateKind(kind); err != nil {
			return nil, err
		}
		table, statusCol := tableFor(kind)
		whereSQL, args := buildWhere(filter, statusCol)

		query := fmt.Sprintf(`
			SELECT e.id, e.descricao, e.valor, e.data, e.conta_id, cf.nome, e.categoria, e.%s, e.fitid
			  FROM %s e
			  JOIN contas_financeiras cf ON cf.id = e.conta_id
			%s
			ORDER BY date(e.data) ASC, e.id ASC`, statusCol, table, whereSQL)

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s entries: %w", kind, err)
		}
		entries, err := collectEntries(rows, kind)
		_ = rows.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, entries...)
	}

	if len(kinds) > 1 {
		sortEntriesByDate(results)
	}
	return results, nil
}

// sortEntriesByDate orders a merged payable/receivable result set the same
// way the per-table queries do.
func sortEntriesByDate(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
}
