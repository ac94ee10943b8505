package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pthm/composer"
	"github.com/pthm/composer/lib/config"
	"github.com/pthm/composer/lib/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "Declarative UI composer driven by an external host",
	Long: `Composer renders UI from component descriptions sent by an external host.

At startup it publishes a catalog of component types. The host answers
with JSON descriptions, which are rendered and displayed.

Hosting:
  composer serve     # HTTP host with a live browser view
  composer attach    # Exchange messages over stdin/stdout

Tools:
  composer schema    # Print the catalog
  composer render    # Render one description to HTML
  composer validate  # Validate configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "composer.yaml", "config file path")
}

// app is the assembled core shared by the hosting commands.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	metrics  *metrics.Collector
	composer *composer.Composer
}

// loadRuntime loads configuration (file, else COMPOSER_* environment) and
// builds the composer. Logs go to logOut.
func loadRuntime(logOut io.Writer) (*app, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := config.NewLogger(cfg.Logging, logOut)

	var m *metrics.Collector
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	c, err := cfg.Composer(composer.WithLogger(logger), composer.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	logger.Debug().
		Strs("types", c.Names()).
		Str("codec", cfg.Protocol.Codec).
		Msg("composer ready")

	return &app{cfg: cfg, logger: logger, metrics: m, composer: c}, nil
}
