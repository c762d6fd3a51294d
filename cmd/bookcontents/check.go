package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"bookcontents/internal/app"
	"bookcontents/internal/toc"
)

func checkCmd(envFile *string) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and verify every rendered edition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd.Context(), cfg, catalogPath)
			if err != nil {
				for _, problem := range multierr.Errors(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), problem)
				}
				return fmt.Errorf("catalog is invalid (%d problems)", len(multierr.Errors(err)))
			}

			r, err := toc.NewRenderer()
			if err != nil {
				return err
			}
			for _, name := range snap.Names() {
				contents, _ := snap.Edition(name)
				fragment, err := r.RenderString(contents)
				if err != nil {
					return err
				}
				if err := toc.Verify(contents, fragment); err != nil {
					return fmt.Errorf("edition %q: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sections, %d links\n", name, len(contents.Sections()), contents.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (overrides CATALOG)")
	return cmd
}
