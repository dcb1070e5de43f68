package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"inspectorcore/pkg/domain"
)

func locationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"loc"},
		Short:   "Work with inspected locations",
	}
	cmd.AddCommand(
		locationsListCmd(a),
		locationsSelectCmd(a),
		locationsShowCmd(a),
		locationsStatusCmd(a),
		locationsCommentCmd(a),
		locationsCloneCmd(a),
		locationsDeleteCmd(a),
		locationsRenameCmd(a),
		locationsToggleCmd(a),
	)
	return cmd
}

func locationsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every persisted location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			records := store.Records()
			out := cmd.OutOrStdout()
			active := store.ActiveLocations()
			if len(active) == 0 {
				fmt.Fprintln(out, "(no locations)")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, headColor.Sprint("ID\tNAME\tDATE\tVISIBLE\tSTATUSES"))
			for _, id := range active {
				rec := records[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n", id, rec.DisplayName(id), rec.Date, yesNo(rec.Visible), filled(rec.State), leaves(rec.State))
			}
			return w.Flush()
		},
	}
}

func leaves(g domain.StatusGrid) int {
	n := 0
	for _, subs := range g {
		n += len(subs)
	}
	return n
}

func filled(g domain.StatusGrid) int {
	n := 0
	for _, subs := range g {
		for _, s := range subs {
			if s != domain.StatusUnset {
				n++
			}
		}
	}
	return n
}

func locationsSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <location>",
		Short: "Open a location, creating it with default values if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			store.SelectLocation(cmd.Context(), args[0])
			done(cmd.OutOrStdout(), "selected %s", store.Selected())
			return nil
		},
	}
}

func locationsShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <location>",
		Short: "Print the inspection record of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			rec, ok := store.Record(args[0])
			if !ok {
				return fmt.Errorf("location %s not found", args[0])
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, rec)
			}
			fmt.Fprintf(out, "%s %s (%s)\n", headColor.Sprint(rec.DisplayName(args[0])), dimColor.Sprint(args[0]), rec.Date)
			categories := make([]string, 0, len(rec.State))
			for cat := range rec.State {
				categories = append(categories, cat)
			}
			sort.Strings(categories)
			w := newTable(out)
			for _, cat := range categories {
				subs := make([]string, 0, len(rec.State[cat]))
				for sub := range rec.State[cat] {
					subs = append(subs, sub)
				}
				sort.Strings(subs)
				hidden := ""
				if !rec.CategoryVisible(cat) {
					hidden = dimColor.Sprint(" (hidden)")
				}
				for _, sub := range subs {
					fmt.Fprintf(w, "  %s%s\t%s\t%s\n", cat, hidden, sub, statusText(rec.State[cat][sub]))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if rec.Comments != "" {
				fmt.Fprintf(out, "\n%s\n", rec.Comments)
			}
			fmt.Fprintf(out, "images: %d  layout: %s  visible: %s\n", len(rec.Images), rec.Layout, yesNo(rec.Visible))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw record as JSON")
	return cmd
}

func locationsStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <location> <category> <sub-element> <status>",
		Short: "Record the status of one sub-element",
		Long: `Record the status of one sub-element.

Common statuses are ✅, ❌, ⚠️ and N/A; any other value is stored as given.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			status := domain.Status(args[3])
			if !status.Known() {
				a.logger.Warn("storing unrecognised status", "status", args[3])
			}
			store.SetStatus(cmd.Context(), args[0], args[1], args[2], status)
			done(cmd.OutOrStdout(), "%s %s/%s = %s", args[0], args[1], args[2], statusText(status))
			return nil
		},
	}
}

func locationsCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <location> <text>",
		Short: "Replace the comments of a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			store.SetComments(cmd.Context(), args[0], args[1])
			done(cmd.OutOrStdout(), "comments updated for %s", args[0])
			return nil
		},
	}
}

func locationsCloneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <location>",
		Short: "Copy a location under a fresh id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			id := store.CloneLocation(cmd.Context(), args[0])
			if id == "" {
				return fmt.Errorf("location %s not found", args[0])
			}
			done(cmd.OutOrStdout(), "cloned %s as %s", args[0], id)
			return nil
		},
	}
}

func locationsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <location>",
		Short: "Delete a location and its persisted draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			store.DeleteLocation(cmd.Context(), args[0])
			done(cmd.OutOrStdout(), "deleted %s", args[0])
			return nil
		},
	}
}

func locationsRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <location> <name>",
		Short: "Set the display name of a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := store.Record(args[0]); !ok {
				return fmt.Errorf("location %s not found", args[0])
			}
			store.RenameLocation(cmd.Context(), args[0], args[1])
			done(cmd.OutOrStdout(), "renamed %s to %q", args[0], args[1])
			return nil
		},
	}
}

func locationsToggleCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "toggle <location>",
		Short: "Toggle whether a location, or one of its categories, is exported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			id := args[0]
			if category != "" {
				store.SetCategoryVisible(cmd.Context(), id, category)
				rec, _ := store.Record(id)
				done(cmd.OutOrStdout(), "%s %s visible: %s", id, category, yesNo(rec.CategoryVisible(category)))
				return nil
			}
			store.ToggleVisibility(cmd.Context(), id)
			rec, _ := store.Record(id)
			done(cmd.OutOrStdout(), "%s visible: %s", id, yesNo(rec.Visible))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "toggle this category instead of the whole location")
	return cmd
}
