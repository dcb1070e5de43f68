package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inspectorcore/internal/core"
	"inspectorcore/internal/locations"
	"inspectorcore/pkg/domain"
)

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage quick-capture and element reports",
	}
	cmd.AddCommand(
		reportGroupCmd(a, reportKind[domain.QuickItem]{
			use:        "quick",
			short:      "Quick-capture reports",
			collection: (*core.Store).QuickReports,
			addItem:    quickItemCmd,
		}),
		reportGroupCmd(a, reportKind[domain.ElementItem]{
			use:        "elements",
			short:      "Element-based reports",
			collection: (*core.Store).ElementReports,
			scoped:     true,
			addItem:    elementItemCmd,
		}),
	)
	return cmd
}

// reportKind describes one report collection to the shared subcommands.
type reportKind[I any] struct {
	use        string
	short      string
	collection func(*core.Store) *core.Reports[I]
	// scoped reports carry module, level and type.
	scoped  bool
	addItem func(*app, func(*core.Store) *core.Reports[I]) *cobra.Command
}

func reportGroupCmd[I any](a *app, kind reportKind[I]) *cobra.Command {
	cmd := &cobra.Command{Use: kind.use, Short: kind.short}
	cmd.AddCommand(
		reportCreateCmd(a, kind),
		reportListCmd(a, kind),
		reportActivateCmd(a, kind),
		reportDeleteCmd(a, kind),
		kind.addItem(a, kind.collection),
	)
	return cmd
}

func reportCreateCmd[I any](a *app, kind reportKind[I]) *cobra.Command {
	var rep domain.Report[I]
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a report and make it the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if kind.scoped {
				session := applyScope(cmd.Context(), store, rep.Module, rep.Level, rep.Type)
				rep.Module, rep.Level, rep.Type = session.Module, session.Level, session.Type
			}
			id := kind.collection(store).Create(cmd.Context(), rep)
			if id == "" {
				return fmt.Errorf("report %s already exists", rep.ID)
			}
			done(cmd.OutOrStdout(), "created report %s", id)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&rep.ID, "id", "", "report id (generated when empty)")
	flags.StringVar(&rep.Title, "title", "", "report title")
	flags.StringVar(&rep.Date, "date", "", "report date, YYYY-MM-DD (today when empty)")
	if kind.scoped {
		flags.StringVar(&rep.Module, "module", "", "building module")
		flags.StringVar(&rep.Level, "level", "", "level")
		flags.StringVar(&rep.Type, "type", "", "location type (INTERIOR, EXTERIOR, ESCALERA)")
	}
	return cmd
}

func reportListCmd[I any](a *app, kind reportKind[I]) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			coll := kind.collection(store)
			out := cmd.OutOrStdout()
			reports := coll.List()
			if len(reports) == 0 {
				fmt.Fprintln(out, "(no reports)")
				return nil
			}
			active := coll.ActiveID()
			w := newTable(out)
			fmt.Fprintln(w, headColor.Sprint("\tID\tTITLE\tDATE\tITEMS"))
			for _, r := range reports {
				marker := ""
				if r.ID == active {
					marker = okColor.Sprint("*")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", marker, r.ID, r.Title, r.Date, len(r.Items))
			}
			return w.Flush()
		},
	}
}

func reportActivateCmd[I any](a *app, kind reportKind[I]) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a report the one new items are added to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			coll := kind.collection(store)
			if _, ok := coll.Get(args[0]); !ok {
				return fmt.Errorf("report %s not found", args[0])
			}
			coll.SetActive(cmd.Context(), args[0])
			done(cmd.OutOrStdout(), "active report is %s", args[0])
			return nil
		},
	}
}

func reportDeleteCmd[I any](a *app, kind reportKind[I]) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			kind.collection(store).Delete(cmd.Context(), args[0])
			done(cmd.OutOrStdout(), "deleted report %s", args[0])
			return nil
		},
	}
}

func requireActive[I any](coll *core.Reports[I]) error {
	if _, ok := coll.Active(); !ok {
		return fmt.Errorf("no active report; create or activate one first")
	}
	return nil
}

func quickItemCmd(a *app, collection func(*core.Store) *core.Reports[domain.QuickItem]) *cobra.Command {
	var (
		item   domain.QuickItem
		status string
		image  string

		module, level, typ string
	)
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Append an item to the active quick-capture report",
		Long: `Append an item to the active quick-capture report.

The item is stamped with the module, level and type given by the flags. When
none is given they are recovered from the --location code, falling back to
the session defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			coll := collection(store)
			if err := requireActive(coll); err != nil {
				return err
			}
			if image != "" {
				imgs, err := loadImages([]string{image}, item.Category, item.SubElement)
				if err != nil {
					return err
				}
				item.Image = imgs[0]
			}
			if module == "" && level == "" && typ == "" {
				module, level, typ, _ = locations.Scope(item.Location)
			}
			session := applyScope(cmd.Context(), store, module, level, typ)
			item.Module, item.Level, item.Type = session.Module, session.Level, session.Type
			item.Status = domain.Status(status)
			coll.AddItemToActive(cmd.Context(), item)
			done(cmd.OutOrStdout(), "item added to %s", coll.ActiveID())
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&item.Location, "location", "", "location id")
	flags.StringVar(&item.Category, "category", "", "category")
	flags.StringVar(&item.SubElement, "sub", "", "sub-element")
	flags.StringVar(&status, "status", "", "status")
	flags.StringVar(&item.Comment, "comment", "", "comment")
	flags.StringVar(&image, "image", "", "photo file")
	flags.StringVar(&module, "module", "", "building module")
	flags.StringVar(&level, "level", "", "level")
	flags.StringVar(&typ, "type", "", "location type (INTERIOR, EXTERIOR, ESCALERA)")
	return cmd
}

// applyScope moves the session selectors to the non-empty values given and
// returns the resulting session.
func applyScope(ctx context.Context, store *core.Store, module, level, typ string) core.Session {
	if module != "" {
		store.SetModule(ctx, module)
	}
	if level != "" {
		store.SetLevel(ctx, level)
	}
	if typ != "" {
		store.SetType(ctx, strings.ToUpper(typ))
	}
	return store.Session()
}

func elementItemCmd(a *app, collection func(*core.Store) *core.Reports[domain.ElementItem]) *cobra.Command {
	var (
		item   domain.ElementItem
		status string
		image  string
	)
	cmd := &cobra.Command{
		Use:   "add-item",
		Short: "Append an item to the active element report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			coll := collection(store)
			if err := requireActive(coll); err != nil {
				return err
			}
			if image != "" {
				imgs, err := loadImages([]string{image}, item.Category, item.SubElement)
				if err != nil {
					return err
				}
				item.Image = &imgs[0]
			}
			item.Status = domain.Status(status)
			coll.AddItemToActive(cmd.Context(), item)
			done(cmd.OutOrStdout(), "item added to %s", coll.ActiveID())
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&item.Location, "location", "", "location id")
	flags.StringVar(&item.Category, "category", "", "category")
	flags.StringVar(&item.SubElement, "sub", "", "sub-element")
	flags.StringVar(&status, "status", "", "status")
	flags.StringVar(&item.Observation, "observation", "", "observation")
	flags.StringVar(&image, "image", "", "photo file")
	return cmd
}
