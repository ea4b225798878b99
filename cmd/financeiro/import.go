package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
	"github.com/rbgleisson/contas-a-pagar/internal/importer"
	"github.com/rbgleisson/contas-a-pagar/internal/ofx"
)

func importCmd() *cobra.Command {
	var (
		accountID   int64
		accountName string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import transactions from a bank statement file",
		Long: `Import transactions from a bank statement exported by your bank.

Each transaction becomes a payable or receivable entry depending on the sign
of its amount. Re-importing the same statement is safe: entries already in
the ledger are skipped.

Examples:
  # Import into an existing account by ID
  financeiro import ~/Downloads/extrato_jan.ofx --account-id 1

  # Import into an account by name, creating it if needed
  financeiro import ~/Downloads/extrato_jan.ofx --account-name "Banco do Brasil"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			parser := ofx.NewParser()
			result, err := parser.ParseFile(ctx, path, accountID, accountName)
			if err != nil {
				return fmt.Errorf("could not read statement: %w", err)
			}

			slog.Info("parsed statement",
				"file", filepath.Base(path),
				"transactions", len(result.Transactions),
				"skipped_blocks", result.Skipped)

			if len(result.Transactions) == 0 {
				fmt.Println(cli.WarningStyle.Render("No transactions found in statement."))
				return nil
			}

			if dryRun {
				for _, txn := range result.Transactions {
					fmt.Printf("%-8s  %10.2f  %-10s  %s\n", txn.Kind, txn.Amount, txn.Date, txn.Description)
				}
				fmt.Println(cli.InfoStyle.Render("Dry run complete - no data saved."))
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.Default(int64(len(result.Transactions)), "importing")
			engine := importer.NewEngine(store).WithProgress(func(_, _ int) {
				_ = bar.Add(1)
			})

			res, err := engine.Import(ctx, result.Transactions)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Imported %d entries (%d duplicates skipped, %d failed).",
					res.Imported, res.Duplicates, res.Failed)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account-id", 0, "target account ID")
	cmd.Flags().StringVar(&accountName, "account-name", "", "target account name (created if missing)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")

	return cmd
}
