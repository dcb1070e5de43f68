package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func checkpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkpoint",
		Aliases: []string{"cp"},
		Short:   "Capture and restore point-in-time copies of the records",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Capture every record and quick-capture report",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				ts := store.CreateCheckpoint(cmd.Context())
				done(cmd.OutOrStdout(), "checkpoint %d (%s)", ts, formatMillis(ts))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List checkpoints, oldest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				list := store.Checkpoints()
				if len(list) == 0 {
					fmt.Fprintln(out, "(no checkpoints)")
					return nil
				}
				w := newTable(out)
				fmt.Fprintln(w, headColor.Sprint("TIMESTAMP\tTAKEN\tLOCATIONS\tQUICK REPORTS"))
				for _, cp := range list {
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", cp.Timestamp, formatMillis(cp.Timestamp), cp.Locations, cp.QuickReports)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "rollback <timestamp>",
			Short: "Restore the records and quick-capture reports of a checkpoint",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ts, err := parseTimestamp(args[0])
				if err != nil {
					return err
				}
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				if !store.Rollback(cmd.Context(), ts) {
					return fmt.Errorf("checkpoint %d not found", ts)
				}
				done(cmd.OutOrStdout(), "rolled back to %d", ts)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <timestamp>",
			Short: "Delete a checkpoint",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ts, err := parseTimestamp(args[0])
				if err != nil {
					return err
				}
				store, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				if !store.DeleteCheckpoint(cmd.Context(), ts) {
					return fmt.Errorf("checkpoint %d not found", ts)
				}
				done(cmd.OutOrStdout(), "deleted checkpoint %d", ts)
				return nil
			},
		},
	)
	return cmd
}

func parseTimestamp(s string) (int64, error) {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("checkpoint timestamp %q: %w", s, err)
	}
	return ts, nil
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}
