package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"inspectorcore/internal/archive"
)

func archiveCmd(a *app) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Back up the inspection state to blob storage",
	}
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			blobs, err := a.openBlobStore(cmd.Context())
			if err != nil {
				return err
			}
			arch := archive.New(blobs, archive.WithLogger(a.logger), archive.WithConcurrency(concurrency))
			m, err := arch.Backup(cmd.Context(), store.Snapshot())
			if err != nil {
				return err
			}
			done(cmd.OutOrStdout(), "backup %s: %d locations, %d images (%d new)", m.ID, m.Locations, len(m.Images), m.Uploaded)
			if m.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d image(s) kept inline\n", warnColor.Sprint("!"), m.Skipped)
			}
			return nil
		},
	}
	backup.Flags().IntVar(&concurrency, "concurrency", 4, "parallel image uploads")

	list := &cobra.Command{
		Use:   "list",
		Short: "List backups, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blobs, err := a.openBlobStore(cmd.Context())
			if err != nil {
				return err
			}
			manifests, err := archive.New(blobs, archive.WithLogger(a.logger)).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(manifests) == 0 {
				fmt.Fprintln(out, "(no backups)")
				return nil
			}
			w := newTable(out)
			fmt.Fprintln(w, headColor.Sprint("ID\tLOCATIONS\tQUICK\tELEMENTS\tCHECKPOINTS\tIMAGES"))
			for _, m := range manifests {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", m.ID, m.Locations, m.QuickReports, m.ElementReports, m.Checkpoints, len(m.Images))
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(backup, list)
	return cmd
}
