package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
	"github.com/rbgleisson/contas-a-pagar/internal/model"
)

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage payable and receivable entries",
		Long: `Add, edit, delete, settle, and list ledger entries.

All subcommands take --kind pagar or --kind receber to pick the ledger.`,
	}

	cmd.AddCommand(listEntriesCmd())
	cmd.AddCommand(addEntryCmd())
	cmd.AddCommand(editEntryCmd())
	cmd.AddCommand(deleteEntryCmd())
	cmd.AddCommand(settleEntryCmd())

	return cmd
}

func listEntriesCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries of one ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.ListEntries(ctx, kind)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println(cli.InfoStyle.Render("No entries found."))
				return nil
			}

			printEntries(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindPayable), "ledger type (pagar or receber)")
	return cmd
}

func addEntryCmd() *cobra.Command {
	var (
		kindFlag    string
		amountFlag  string
		dateFlag    string
		accountID   int64
		accountName string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Add an entry",
		Long: `Add a payable or receivable entry.

Examples:
  financeiro entries add "Aluguel" --kind pagar --amount 1.500,00 --date 05/09/2026 --account-id 1
  financeiro entries add "Salário" --kind receber --amount 8000 --date 2026-09-01 --account-name Nubank`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			amount, err := model.ParseAmount(amountFlag)
			if err != nil {
				return err
			}
			if amount < 0 {
				amount = -amount
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			resolvedID, err := store.ResolveOrCreateAccount(ctx, accountID, accountName)
			if err != nil {
				return fmt.Errorf("failed to resolve account: %w", err)
			}

			entry := &model.Entry{
				Kind:        kind,
				Description: args[0],
				Amount:      amount,
				Date:        model.NormalizeDate(dateFlag),
				AccountID:   resolvedID,
				Category:    category,
			}
			id, err := store.AddEntry(ctx, entry)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added %s entry %d.", kind, id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindPayable), "ledger type (pagar or receber)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "entry amount (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "due date (YYYY-MM-DD, DD/MM/YYYY or YYYYMMDD)")
	cmd.Flags().Int64Var(&accountID, "account-id", 0, "account ID")
	cmd.Flags().StringVar(&accountName, "account-name", "", "account name (created if missing)")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func editEntryCmd() *cobra.Command {
	var (
		kindFlag    string
		description string
		amountFlag  string
		dateFlag    string
		accountID   int64
		accountName string
		category    string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an entry",
		Long:  `Update fields of an existing entry. Only flags that are set are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entry, err := store.GetEntry(ctx, kind, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("description") {
				entry.Description = description
			}
			if cmd.Flags().Changed("amount") {
				amount, amtErr := model.ParseAmount(amountFlag)
				if amtErr != nil {
					return amtErr
				}
				if amount < 0 {
					amount = -amount
				}
				entry.Amount = amount
			}
			if cmd.Flags().Changed("date") {
				entry.Date = model.NormalizeDate(dateFlag)
			}
			if cmd.Flags().Changed("account-id") || cmd.Flags().Changed("account-name") {
				resolvedID, accErr := store.ResolveOrCreateAccount(ctx, accountID, accountName)
				if accErr != nil {
					return fmt.Errorf("failed to resolve account: %w", accErr)
				}
				entry.AccountID = resolvedID
			}
			if cmd.Flags().Changed("category") {
				entry.Category = category
			}

			if err := store.UpdateEntry(ctx, entry); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Updated %s entry %d.", kind, id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindPayable), "ledger type (pagar or receber)")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "new amount")
	cmd.Flags().StringVar(&dateFlag, "date", "", "new due date")
	cmd.Flags().Int64Var(&accountID, "account-id", 0, "new account ID")
	cmd.Flags().StringVar(&accountName, "account-name", "", "new account name")
	cmd.Flags().StringVar(&category, "category", "", "new category")

	return cmd
}

func deleteEntryCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete entries by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted := 0
			for _, arg := range args {
				id, idErr := strconv.ParseInt(arg, 10, 64)
				if idErr != nil {
					return fmt.Errorf("invalid entry ID %q", arg)
				}
				if err := store.DeleteEntry(ctx, kind, id); err != nil {
					return err
				}
				deleted++
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted %d %s entries.", deleted, kind)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindPayable), "ledger type (pagar or receber)")
	return cmd
}

func settleEntryCmd() *cobra.Command {
	var (
		kindFlag string
		undo     bool
	)

	cmd := &cobra.Command{
		Use:   "settle [id]",
		Short: "Mark an entry as paid or received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetSettled(ctx, kind, id, !undo); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Entry %d marked as %s.", id, settledLabel(kind, !undo))))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.KindPayable), "ledger type (pagar or receber)")
	cmd.Flags().BoolVar(&undo, "undo", false, "mark as pending instead")
	return cmd
}

// printEntries renders entries as a table.
func printEntries(entries []model.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Description"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Account"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Status"))

	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\tR$ %.2f\t%s\t%s\t%s\t%s\n",
			e.ID, e.Description, e.Amount, e.Date, e.AccountName, e.Category,
			settledLabel(e.Kind, e.Settled))
	}
}
