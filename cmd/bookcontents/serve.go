package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookcontents/internal/app"
)

func serveCmd(envFile *string) *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered table of contents over HTTP",
		Long:  "Serve the table of contents fragment for each edition. Send SIGHUP to reload the catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			log, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			src, closeSrc, err := openSource(ctx, cfg, catalogPath)
			if err != nil {
				return err
			}
			defer closeSrc()

			srv, err := app.NewServer(ctx, src, cfg, log)
			if err != nil {
				log.Error("catalog rejected", zap.Error(err))
				return err
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			return srv.Run(ctx, hup)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog file (overrides CATALOG)")
	return cmd
}
