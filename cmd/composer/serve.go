package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm/composer/lib/display"
	"github.com/pthm/composer/lib/protocol"
	"github.com/pthm/composer/lib/server"
	"github.com/spf13/cobra"
)

var serveTitle string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP host",
	Long: `Start the composer HTTP host.

Routes:
  GET  /          Page showing the current output, live-updated over SSE
  GET  /ui        Current output fragment
  GET  /schema    Catalog handshake
  POST /messages  Inbound render command (always answered 202)
  GET  /events    Server-Sent Events: catalog, then every displayed output
  GET  /healthz   Health check
  GET  /metrics   Prometheus metrics (when enabled)

Examples:
  composer serve
  composer serve --config /etc/composer/composer.yaml
  COMPOSER_SERVER_PORT=9000 composer serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTitle, "title", "Composer", "page title")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(os.Stdout)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	d := display.New(cfg.Render.Placeholder,
		display.WithLogger(rt.logger),
		display.WithMetrics(rt.metrics),
	)
	session := protocol.NewSession(rt.composer, d,
		protocol.WithCodec(cfg.Codec()),
		protocol.WithRootKey(cfg.Render.RootKey),
		protocol.WithLogger(rt.logger),
		protocol.WithMetrics(rt.metrics),
	)

	opts := []server.Option{
		server.WithLogger(rt.logger),
		server.WithSigner(cfg.Signer()),
		server.WithTitle(serveTitle),
	}
	if rt.metrics != nil {
		opts = append(opts, server.WithMetrics(rt.metrics, cfg.Metrics.Path))
	}
	srv := server.New(session, d, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Addr(), cfg.Server.ReadTimeout, cfg.Server.ShutdownTimeout)
}
