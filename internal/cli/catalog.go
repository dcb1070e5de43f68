package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inspectorcore/internal/locations"
)

func catalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the location catalog",
	}
	var module, level, typ string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the locations available for a module, level and type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadSettings(); err != nil {
				return err
			}
			catalog, err := locations.Load(a.settings.CatalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if module == "" {
				fmt.Fprintf(out, "modules: %s\n", strings.Join(catalog.ModuleNames(), ", "))
				return nil
			}
			found := catalog.Available(module, level, strings.ToUpper(typ))
			if len(found) == 0 {
				fmt.Fprintf(out, "(no locations; levels of %s: %s)\n", module, strings.Join(catalog.LevelNames(module), ", "))
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, headColor.Sprint("CODE\tNAME"))
			for _, loc := range found {
				fmt.Fprintf(w, "%s\t%s\n", loc.Code, loc.Name)
			}
			return w.Flush()
		},
	}
	flags := list.Flags()
	flags.StringVar(&module, "module", "", "building module (lists modules when empty)")
	flags.StringVar(&level, "level", "000", "level (e.g. -100, 000, 100, TECHO)")
	flags.StringVar(&typ, "type", locations.TypeInterior, "INTERIOR, EXTERIOR or ESCALERA")
	cmd.AddCommand(list)
	return cmd
}
