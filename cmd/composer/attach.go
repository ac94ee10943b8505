package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/a-h/templ"
	"github.com/pthm/composer/lib/display"
	"github.com/pthm/composer/lib/protocol"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var attachOut string

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Exchange messages with a host over stdin/stdout",
	Long: `Attach to a host process over stdio.

The catalog handshake is written to stdout, then render commands are read
from stdin until it closes. Framing is "lines" (one JSON message per line)
or "length" (4-byte big-endian length prefix), set by protocol.framing.
The msgpack codec always uses "length".

Logs are written to stderr. With --out, the displayed HTML is rewritten to
that file after every render.

Examples:
  host-process | composer attach --out ui.html
  COMPOSER_CODEC=msgpack COMPOSER_FRAMING=length composer attach`,
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().StringVarP(&attachOut, "out", "o", "", "file to write the displayed HTML to")
}

func runAttach(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(os.Stderr)
	if err != nil {
		return err
	}
	cfg := rt.cfg

	d := display.New(cfg.Render.Placeholder,
		display.WithLogger(rt.logger),
		display.WithMetrics(rt.metrics),
	)
	sink := &fileSink{display: d, path: attachOut, logger: rt.logger}
	if err := sink.write(); err != nil {
		return err
	}

	session := protocol.NewSession(rt.composer, sink,
		protocol.WithCodec(cfg.Codec()),
		protocol.WithRootKey(cfg.Render.RootKey),
		protocol.WithLogger(rt.logger),
		protocol.WithMetrics(rt.metrics),
	)

	transport, err := protocol.NewTransport(cfg.Protocol.Framing, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return protocol.Serve(ctx, session, transport)
}

// fileSink shows nodes on a display and mirrors the output to a file.
type fileSink struct {
	display *display.Display
	path    string
	logger  zerolog.Logger
}

func (s *fileSink) Show(ctx context.Context, node templ.Component) error {
	if err := s.display.Show(ctx, node); err != nil {
		return err
	}
	if err := s.write(); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("write output failed")
		return err
	}
	return nil
}

func (s *fileSink) write() error {
	if s.path == "" {
		return nil
	}
	if err := os.WriteFile(s.path, []byte(s.display.HTML()), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
