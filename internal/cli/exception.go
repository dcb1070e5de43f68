package cli

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"inspectorcore/internal/core"
	"inspectorcore/pkg/domain"
)

func exceptionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exception",
		Short: "Record one finding across many locations",
	}
	cmd.AddCommand(exceptionApplyCmd(a))
	return cmd
}

func exceptionApplyCmd(a *app) *cobra.Command {
	var (
		exc    core.Exception
		status string
		images []string
	)
	cmd := &cobra.Command{
		Use:   "apply <location>...",
		Short: "Set a status, append an observation and attach photos on every location",
		Example: `  inspectorctl exception apply --category PAREDES --sub Pintura --status ❌ \
    --observation "manchas de humedad" --image muro.jpg A-101 A-102`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgs, err := loadImages(images, exc.Category, exc.SubElement)
			if err != nil {
				return err
			}
			store, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			exc.Status = domain.Status(status)
			exc.Images = imgs
			exc.Locations = args
			store.ApplyException(cmd.Context(), exc)
			done(cmd.OutOrStdout(), "exception applied to %d location(s)", len(args))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&exc.Category, "category", "", "category to mark")
	flags.StringVar(&exc.SubElement, "sub", "", "sub-element to mark")
	flags.StringVar(&status, "status", string(domain.StatusFail), "status to record")
	flags.StringVar(&exc.Observation, "observation", "", "observation appended to the comments")
	flags.StringArrayVar(&images, "image", nil, "photo file to attach (repeatable)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

// loadImages reads photo files into data-URI images.
func loadImages(paths []string, category, sub string) ([]domain.Image, error) {
	out := make([]domain.Image, 0, len(paths))
	for _, path := range paths {
		// #nosec G304 -- photo paths are chosen by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		out = append(out, domain.Image{
			Src:        "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data),
			Label:      filepath.Base(path),
			Category:   category,
			SubElement: sub,
			CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}
