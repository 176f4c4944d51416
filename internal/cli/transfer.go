package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <table> <file>",
		Short: "Write a table to a JSONL file",
		Long: `Export writes every record of a table to file, one JSON object per line
keyed by column name. Stored values are written as they are, so password
columns carry their hashes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := catalog.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, validTableNames)
			}
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			n, err := b.ExportJSONL(cmd.Context(), s, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) from %s to %s\n", n, s.Table, args[1])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <file>",
		Short: "Load records from a JSONL file",
		Long: `Import inserts the records of a JSONL file into a table in one
transaction. Lines that are not JSON objects, carry no known column, or
violate a constraint are skipped and counted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := catalog.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%w (valid: %s)", err, validTableNames)
			}
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			imported, skipped, err := b.ImportJSONL(cmd.Context(), s, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) into %s, skipped %d\n", imported, s.Table, skipped)
			return nil
		},
	}
}
