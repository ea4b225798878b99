package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbgleisson/contas-a-pagar/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Apply pending schema migrations.

Every command runs migrations automatically on startup; this command exists
to upgrade a database explicitly, for example before a backup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// initStorage migrates as part of opening the database.
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(cli.SuccessStyle.Render("Database schema is up to date."))
			return nil
		},
	}
}
