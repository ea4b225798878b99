package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
	"github.com/rbgleisson/contas-a-pagar/internal/export"
)

func exportCmd() *cobra.Command {
	var (
		output   string
		month    int
		year     int
		category string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries to an XLSX workbook",
		Long: `Export ledger entries to a spreadsheet with one sheet per ledger type.

With --month/--year a filtered monthly report is generated instead; the
output file name carries the period and category.

Examples:
  financeiro export
  financeiro export --output contas.xlsx
  financeiro export --month 8 --year 2026 --category Mercado`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			writer := export.NewWriter(store)

			if month != 0 || year != 0 {
				if month == 0 {
					month = int(time.Now().Month())
				}
				if year == 0 {
					year = time.Now().Year()
				}
				path, expErr := writer.ExportMonthly(ctx, month, year, category)
				if expErr != nil {
					return fmt.Errorf("failed to generate report: %w", expErr)
				}
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Report generated: %s", path)))
				return nil
			}

			if err := writer.ExportAll(ctx, output); err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("File generated: %s", output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "export_financeiro.xlsx", "output file for the full export")
	cmd.Flags().IntVar(&month, "month", 0, "report month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "report year")
	cmd.Flags().StringVar(&category, "category", "", "report category filter (default all)")

	return cmd
}
