package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookcontents/internal/app"
	"bookcontents/internal/catalog"
)

func importCmd(envFile *string) *cobra.Command {
	var (
		catalogPath string
		dsn         string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a catalog in MySQL, replacing the stored one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}

			var c *catalog.Catalog
			if catalogPath != "" {
				c, err = catalog.LoadFile(catalogPath)
			} else {
				c, err = catalog.Default()
			}
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := catalog.SaveMySQL(cmd.Context(), db, c.WithBasePath(cfg.BasePath)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d editions\n", len(c.Editions))
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (default: the embedded catalog)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN or mysql:// URL (overrides MYSQL_DSN)")
	return cmd
}

func exportCmd(envFile *string) *cobra.Command {
	var (
		dsn string
		out string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog stored in MySQL as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			c, err := catalog.LoadMySQL(cmd.Context(), db)
			if err != nil {
				return err
			}
			data, err := catalog.Encode(c)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN or mysql:// URL (overrides MYSQL_DSN)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	return cmd
}
