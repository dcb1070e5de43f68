package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inspectorcore/pkg/domain"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the inspection configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the configuration as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), store.Configuration())
			},
		},
		&cobra.Command{
			Use:   "add-category <name> [sub-element]...",
			Short: "Add an inspection category with optional sub-elements",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				name := strings.TrimSpace(args[0])
				id := domain.Slug(name)
				if store.Configuration().Taxonomy.FindCategory(id) >= 0 {
					return fmt.Errorf("category %q already exists", name)
				}
				store.AddCategory(cmd.Context(), name)
				for _, sub := range args[1:] {
					store.AddSubElement(cmd.Context(), id, sub)
				}
				tax := store.Configuration().Taxonomy
				i := tax.FindCategory(id)
				if i < 0 {
					return fmt.Errorf("category %q was not added", name)
				}
				done(cmd.OutOrStdout(), "added category %s with %d sub-element(s)", id, len(tax.Categories[i].SubElements))
				return nil
			},
		},
	)
	return cmd
}
