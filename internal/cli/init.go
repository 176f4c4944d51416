package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/internal/codec"
)

func newInitCmd(a *app) *cobra.Command {
	var sample bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and the database",
		Long: `Init writes a default config.yaml if none exists and creates every table
of the store database that is missing. Existing data is never touched.

With --sample an empty database is filled with a small demo store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database ready at %s\n", b.Path())
			if !sample {
				return nil
			}
			seeded, err := b.SeedSample(cmd.Context(), catalog.Lookup, codec.SHA256{}.Hash)
			if err != nil {
				return fmt.Errorf("load sample data: %w", err)
			}
			if seeded {
				fmt.Fprintln(out, "Sample data loaded")
			} else {
				fmt.Fprintln(out, "Sample data skipped: database is not empty")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "load sample data into an empty database")
	return cmd
}
