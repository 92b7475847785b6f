// Command piggy-viewer shows the piggy model standing on a checkered plane
// under a spot light, with a live control panel and an optional pixelation
// pass.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"piggy-viewer/internal/config"
	"piggy-viewer/internal/logger"
)

type options struct {
	configPath string
	variant    string
	assets     string
	remote     string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "piggy-viewer",
		Short:        "Interactive viewer for the piggy model on a checkered plane",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.LogLevel); err != nil {
				return err
			}
			defer logger.Sync()
			return run(cmd.Context(), cfg, opts.configPath)
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "TOML config file; its [params] table is reloaded on save")
	f.StringVar(&opts.variant, "variant", def.Variant, "scene variant: pixel or classic")
	f.StringVar(&opts.assets, "assets", def.Assets.Dir, "directory holding piggy.obj, piggy.mtl and checker.png")
	f.StringVar(&opts.remote, "remote", "", "serve the remote control panel on this address, e.g. :8090")
	f.StringVar(&opts.logLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	return cmd
}

// loadConfig reads the config file, if any, and lets explicitly set flags
// override it.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Variant = opts.variant
	}
	if flags.Changed("assets") {
		cfg.Assets.Dir = opts.assets
	}
	if flags.Changed("remote") {
		cfg.Remote = opts.remote
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, cfg.Validate()
}
