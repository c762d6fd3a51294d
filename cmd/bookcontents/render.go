package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookcontents/internal/app"
	"bookcontents/internal/toc"
)

func renderCmd(envFile *string) *cobra.Command {
	var (
		catalogPath string
		edition     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the table of contents fragment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd.Context(), cfg, catalogPath)
			if err != nil {
				return err
			}

			if edition == "" {
				edition = snap.DefaultName()
			}
			contents, ok := snap.Edition(edition)
			if !ok {
				return fmt.Errorf("unknown edition %q", edition)
			}

			r, err := toc.NewRenderer()
			if err != nil {
				return err
			}
			return r.Render(cmd.OutOrStdout(), contents)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (overrides CATALOG)")
	cmd.Flags().StringVar(&edition, "edition", "", "edition to render (default: the catalog's default edition)")
	return cmd
}
