package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookcontents/internal/app"
)

func editionsCmd(envFile *string) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "editions",
		Short: "List catalog editions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cmd.Context(), cfg, catalogPath)
			if err != nil {
				return err
			}
			for _, name := range snap.Names() {
				marker := " "
				if name == snap.DefaultName() {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (overrides CATALOG)")
	return cmd
}
