package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"pocketpal/internal/cli"
	apphttp "pocketpal/internal/http"
	"pocketpal/internal/log"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.logger.WithComponent(log.ComponentApp)

			ledger, err := cli.OpenLedger(cmd.Context(), a.cfg, logger)
			if err != nil {
				return err
			}

			stopRelay, err := cli.StartRelay(cmd.Context(), a.cfg, ledger, logger)
			if err != nil {
				ledger.Close()
				return err
			}

			srv := apphttp.NewServer(apphttp.Options{
				Addr:                      ":" + a.cfg.Port,
				RecentLimit:               a.cfg.RecentLimit,
				RequestsPerMinute:         a.cfg.RateLimitPerMinute,
				CategoryRequestsPerMinute: a.cfg.CategoryRateLimitPerMinute,
				Logger:                    a.logger,
			}, ledger.Service, ledger.Reports)
			srv.MaxHeaderBytes = 1 << 16 // 64KB

			ctx, done := cli.GracefulShutdown(logger, a.cfg.ShutdownTimeout, func(ctx context.Context) {
				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Server shutdown error", log.FieldError, err)
				}
				stopRelay()
				if ledger.Cache != nil {
					hits, misses := ledger.Cache.Stats()
					logger.Info("Report cache stats", "hits", hits, "misses", misses)
				}
				if err := ledger.Close(); err != nil {
					logger.Error("Ledger close error", log.FieldError, err)
				}
			})

			logger.Info("Starting pocketpal server",
				"port", a.cfg.Port,
				"db", a.cfg.DBPath,
				"relay", a.cfg.RelayEnabled())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				stopRelay()
				ledger.Close()
				return err
			}

			cli.WaitForShutdown(ctx, done)
			logger.Info("Server stopped gracefully")
			return nil
		},
	}
}
