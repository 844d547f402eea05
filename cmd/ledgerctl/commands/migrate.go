package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var withSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		}
		for _, v := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
		}

		if withSeed {
			if err := db.Seed(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sample data loaded")
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample customers, invoices and revenue",
	Long: `Load the sample customers, invoices and revenue series.

Customers and revenue months are upserted; invoices are only inserted when the
invoices table is empty, so running seed twice does not duplicate them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := db.Migrate(ctx); err != nil {
			return err
		}
		if err := db.Seed(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sample data loaded")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&withSeed, "seed", false, "Load sample data after migrating")
	rootCmd.AddCommand(migrateCmd, seedCmd)
}
