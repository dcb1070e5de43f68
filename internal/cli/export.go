package cli

import (
	"github.com/spf13/cobra"

	"inspectorcore/internal/export/xlsx"
)

func exportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the inspection state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "xlsx <file>",
		Short: "Write the status matrix, comments and reports as a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			snap := store.Snapshot()
			if err := xlsx.WriteFile(args[0], snap); err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "wrote %s (%d visible locations)", args[0], len(snap.VisibleLocations()))
			return nil
		},
	})
	return cmd
}
