package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sportsreg/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and header columns",
	Long: `Create every table the application uses and append any missing header
columns. Existing columns and rows are never touched, so running it again is
a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		for _, t := range store.Tables() {
			cols, _ := store.Columns(t)
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d columns\n", t, len(cols))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
