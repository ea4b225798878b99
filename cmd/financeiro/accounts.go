package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
	"github.com/rbgleisson/contas-a-pagar/internal/common"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage financial accounts",
		Long:  `List, add, rename, and delete the financial accounts that entries reference.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(renameAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'financeiro accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\n", cli.HeaderStyle.Render("ID"), cli.HeaderStyle.Render("Name"))
			for _, acc := range accounts {
				fmt.Fprintf(w, "%d\t%s\n", acc.ID, acc.Name)
			}
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			acc, err := store.CreateAccount(ctx, args[0])
			if err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return fmt.Errorf("account %q already exists", args[0])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created account %q (ID %d).", acc.Name, acc.ID)))
			return nil
		},
	}
}

func renameAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id] [new-name]",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RenameAccount(ctx, id, args[1]); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return fmt.Errorf("account %q already exists", args[1])
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Renamed account %d to %q.", id, args[1])))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an account",
		Long:  `Delete an account. Accounts still referenced by entries cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteAccount(ctx, id); err != nil {
				if errors.Is(err, common.ErrAccountInUse) {
					return fmt.Errorf("account %d still has entries; delete or move them first", id)
				}
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Deleted account %d.", id)))
			return nil
		},
	}
}
