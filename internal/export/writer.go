// Package export renders ledger entries to XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/service"
)

// Sheet and header layout of the exported workbook.
var headerCells = []string{"Descrição", "Valor", "Data", "Conta", "Categoria", "Status"}

const (
	sheetPayable    = "Pagar"
	sheetReceivable = "Receber"
	currencyFormat  = "R$ #,##0.00"
	maxColumnWidth  = 50
)

// Writer exports ledger entries to spreadsheet files.
type Writer struct {
	store service.LedgerStore
}

// NewWriter creates an export writer backed by the given store.
func NewWriter(store service.LedgerStore) *Writer {
	return &Writer{store: store}
}

// ExportAll writes every payable and receivable entry to an XLSX workbook at
// path, one sheet per ledger type.
func (w *Writer) ExportAll(ctx context.Context, path string) error {
	payable, err := w.store.ListEntries(ctx, model.KindPayable)
	if err != nil {
		return fmt.Errorf("failed to load payables: %w", err)
	}
	receivable, err := w.store.ListEntries(ctx, model.KindReceivable)
	if err != nil {
		return fmt.Errorf("failed to load receivables: %w", err)
	}

	return w.write(path, payable, receivable)
}

// ExportMonthly writes a month/year report, optionally filtered by category,
// and returns the generated file name.
func (w *Writer) ExportMonthly(ctx context.Context, month, year int, category string) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month %d", month)
	}
	if year <= 0 {
		return "", fmt.Errorf("invalid year %d", year)
	}

	filter := service.EntryFilter{Month: month, Year: year}
	if category != "" && !strings.EqualFold(category, "todas") {
		filter.Category = category
	}

	filter.Kind = model.KindPayable
	payable, err := w.store.SearchEntries(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("failed to search payables: %w", err)
	}
	filter.Kind = model.KindReceivable
	receivable, err := w.store.SearchEntries(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("failed to search receivables: %w", err)
	}

	catSlug := "Todas"
	if filter.Category != "" {
		catSlug = strings.ReplaceAll(filter.Category, " ", "_")
	}
	path := fmt.Sprintf("Relatorio_%d-%02d_%s.xlsx", year, month, catSlug)

	if err := w.write(path, payable, receivable); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) write(path string, payable, receivable []model.Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetPayable); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetReceivable); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := w.fillSheet(f, sheetPayable, payable, "Pago"); err != nil {
		return err
	}
	if err := w.fillSheet(f, sheetReceivable, receivable, "Recebido"); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("exported workbook",
		"path", path,
		"payables", len(payable),
		"receivables", len(receivable))
	return nil
}

// fillSheet writes the header and entry rows of one ledger type.
// settledLabel is the status text for settled entries on this sheet.
func (w *Writer) fillSheet(f *excelize.File, sheet string, entries []model.Entry, settledLabel string) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	widths := make([]int, len(headerCells))
	for col, title := range headerCells {
		cell, cellErr := excelize.CoordinatesToCellName(col+1, 1)
		if cellErr != nil {
			return fmt.Errorf("failed to build cell name: %w", cellErr)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[col] = len(title)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headerCells), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, entry := range entries {
		status := "Pendente"
		if entry.Settled {
			status = settledLabel
		}
		values := []any{
			entry.Description,
			entry.Amount,
			brazilianDate(entry.Date),
			entry.AccountName,
			entry.Category,
			status,
		}
		for col, v := range values {
			cell, cellErr := excelize.CoordinatesToCellName(col+1, i+2)
			if cellErr != nil {
				return fmt.Errorf("failed to build cell name: %w", cellErr)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
			if n := len(fmt.Sprint(v)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	if len(entries) > 0 {
		numFmt := currencyFormat
		currencyStyle, styleErr := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if styleErr != nil {
			return fmt.Errorf("failed to create currency style: %w", styleErr)
		}
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", len(entries)+1), currencyStyle); err != nil {
			return fmt.Errorf("failed to style amount column: %w", err)
		}
	}

	for col, width := range widths {
		name, colErr := excelize.ColumnNumberToName(col + 1)
		if colErr != nil {
			return fmt.Errorf("failed to build column name: %w", colErr)
		}
		w := width + 2
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return nil
}

// brazilianDate renders an ISO date as DD/MM/YYYY, passing through values
// that do not parse (including the empty dates imports may produce).
func brazilianDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
