package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/neuroledger/internal/adapters/transport/ws"
	"github.com/bnema/neuroledger/internal/application"
	"github.com/bnema/neuroledger/internal/logging"
	"github.com/bnema/neuroledger/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket command server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := app.cfg.Server.Listen
			if listen != "" {
				addr = listen
			}

			logger := logging.New(app.cfg.Log, cmd.ErrOrStderr())

			opts := ws.Options{
				RateLimit:       app.cfg.Server.RateLimit,
				Burst:           app.cfg.Server.Burst,
				ShutdownTimeout: app.cfg.Server.ShutdownTimeout,
			}
			if app.cfg.Metrics.Enabled {
				opts.MetricsPath = app.cfg.Metrics.Path
				opts.MetricsHandler = app.metrics.Handler()
			}

			server := ws.NewServer(application.NewDispatcher(), app.metrics, logger, opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("version", version.Version).
				Str("listen", addr).
				Bool("metrics", app.cfg.Metrics.Enabled).
				Msg("starting command server")

			if err := server.ListenAndServe(ctx, addr); err != nil {
				logger.Error().Err(err).Msg("command server stopped")
				return err
			}

			logger.Info().Msg("command server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default: server.listen)")

	return cmd
}
