package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
	"github.com/rbgleisson/contas-a-pagar/internal/service"
)

func searchCmd() *cobra.Command {
	var (
		kindFlag    string
		description string
		dateFrom    string
		dateTo      string
		amountMin   string
		amountMax   string
		month       int
		year        int
		accountID   int64
		category    string
		status      string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search entries with filters",
		Long: `Search payable and receivable entries.

All filters are optional and combine with AND. With no --kind, both ledgers
are searched and merged in date order.

Examples:
  financeiro search --description mercado --month 8 --year 2026
  financeiro search --kind pagar --status pendente --amount-min 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.EntryFilter{
				Description: description,
				DateFrom:    dateFrom,
				DateTo:      dateTo,
				Month:       month,
				Year:        year,
				AccountID:   accountID,
				Category:    category,
				Status:      status,
			}

			if kindFlag != "" {
				kind, err := parseKind(kindFlag)
				if err != nil {
					return err
				}
				filter.Kind = kind
			}
			if amountMin != "" {
				v, err := model.ParseAmount(amountMin)
				if err != nil {
					return err
				}
				filter.AmountMin = &v
			}
			if amountMax != "" {
				v, err := model.ParseAmount(amountMax)
				if err != nil {
					return err
				}
				filter.AmountMax = &v
			}
			switch status {
			case "", "pendente", "liquidado":
			default:
				return fmt.Errorf("invalid status %q (expected pendente or liquidado)", status)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.SearchEntries(ctx, filter)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println(cli.InfoStyle.Render("No entries match the given filters."))
				return nil
			}

			printEntries(entries)
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d entries.", len(entries))))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "ledger type (pagar or receber; default both)")
	cmd.Flags().StringVar(&description, "description", "", "description substring (case-insensitive)")
	cmd.Flags().StringVar(&dateFrom, "from", "", "start date")
	cmd.Flags().StringVar(&dateTo, "to", "", "end date")
	cmd.Flags().StringVar(&amountMin, "amount-min", "", "minimum amount")
	cmd.Flags().StringVar(&amountMax, "amount-max", "", "maximum amount")
	cmd.Flags().IntVar(&month, "month", 0, "calendar month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year")
	cmd.Flags().Int64Var(&accountID, "account-id", 0, "account ID")
	cmd.Flags().StringVar(&category, "category", "", "exact category name")
	cmd.Flags().StringVar(&status, "status", "", "pendente or liquidado")

	return cmd
}
