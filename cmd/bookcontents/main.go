// Command bookcontents renders and serves a book's table of contents.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookcontents/internal/app"
	"bookcontents/internal/catalog"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "bookcontents",
		Short:         "Render the table of contents of the online book",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file (default: .env in current directory)")

	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(renderCmd(&envFile))
	cmd.AddCommand(checkCmd(&envFile))
	cmd.AddCommand(editionsCmd(&envFile))
	cmd.AddCommand(importCmd(&envFile))
	cmd.AddCommand(exportCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// openSource picks the catalog source: an explicit file wins, then a
// configured database, then the embedded catalog. The returned closer
// releases the database, if one was opened.
func openSource(ctx context.Context, cfg app.Config, path string) (catalog.Source, func(), error) {
	if path == "" {
		path = cfg.Catalog
	}
	if path != "" {
		return catalog.FileSource{Path: path}, func() {}, nil
	}
	if cfg.DSN != "" {
		db, err := app.OpenDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return catalog.MySQLSource{DB: db}, func() { db.Close() }, nil
	}
	return catalog.EmbeddedSource{}, func() {}, nil
}

// loadSnapshot loads and compiles the catalog for one-shot commands.
func loadSnapshot(ctx context.Context, cfg app.Config, path string) (*catalog.Snapshot, error) {
	src, closeSrc, err := openSource(ctx, cfg, path)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	c, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.WithBasePath(cfg.BasePath).Compile()
}

func openDatabase(ctx context.Context, cfg app.Config, dsn string) (*sql.DB, error) {
	cfg, err := cfg.WithDSN(dsn)
	if err != nil {
		return nil, err
	}
	return app.OpenDB(ctx, cfg)
}
