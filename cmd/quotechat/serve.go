package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/helpcar/quotechat"
	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/internal/config"
	httpadapter "github.com/helpcar/quotechat/pkg/adapters/http"
	"github.com/helpcar/quotechat/pkg/adapters/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API used by the web widget",
	Long: `Serves the session API (JSON plus server-sent events), its OpenAPI document and
Prometheus metrics. With redis.addr set, sessions are shared between instances.
When telegram.token is set the Telegram bot runs in the same process.

Edits to the config file apply to sessions started afterwards; edits to the locales
directory apply immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr = addr
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		engine, cleanup, err := cli.NewEngine(ctx, cfg, logger, quotechat.WithMetrics(prometheus.DefaultRegisterer))
		if err != nil {
			return err
		}
		defer cleanup()

		if err := engine.WatchLocales(ctx); err != nil {
			logger.Warn("Locale hot reload disabled", "err", err)
		}
		loader.Watch(func(c *config.Config) { cli.Reconfigure(engine, c) })

		handler, err := httpadapter.NewHandler(engine.Sessions, engine.Bundle,
			httpadapter.WithAddressResolver(engine.AddressResolver()),
			httpadapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 2)
		go func() {
			logger.Info("Starting QuoteChat server", "addr", srv.Addr, "version", version())
			serverErrors <- srv.ListenAndServe()
		}()
		if cfg.Telegram.Token != "" {
			bot := telegram.New(engine.Sessions, engine.Bundle, telegram.WithLogger(logger))
			go func() {
				if err := bot.Run(ctx, cfg.Telegram.Token); err != nil {
					serverErrors <- fmt.Errorf("telegram bot: %w", err)
				}
			}()
		}

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("QuoteChat server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
