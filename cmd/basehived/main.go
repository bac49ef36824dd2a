package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"basehive/config"
	"basehive/daemon"
	"basehive/internal/buildinfo"
	"basehive/internal/logging"
)

func main() {
	if err := logging.Configure(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("Daemon failed.", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var debug bool
	var logJSON bool

	cmd := &cobra.Command{
		Use:     "basehived",
		Short:   "Basehive fleet daemon",
		Version: buildinfo.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDaemon(configPath)
			if err != nil {
				return err
			}

			level := cfg.LogLevel
			if debug {
				level = logging.LevelDebug
			}
			configure := logging.Configure
			if logJSON {
				configure = logging.ConfigureJSON
			}
			if err := configure(level); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return daemon.Run(ctx, &cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultDaemonPath, "Daemon config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Emit JSON log records")
	return cmd
}
