package main

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"basehive"
	"basehive/api"
	backupcmd "basehive/cmd/basehive/backup"
	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/contextcmd"
	credentialscmd "basehive/cmd/basehive/credentials"
	projectcmd "basehive/cmd/basehive/project"
	"basehive/cmd/basehive/ui"
	"basehive/internal/buildinfo"
	"basehive/internal/logging"
)

func main() {
	var debug bool
	var conn cmdutil.ConnFlags

	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "basehive",
		Short:         "Fleet management for hosted database projects",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Connection flags — available to all subcommands.
	root.PersistentFlags().StringVar(&conn.Server, "server", "", "Daemon base URL (overrides context)")
	root.PersistentFlags().StringVar(&conn.Token, "token", "", "API bearer token (with --server)")
	root.PersistentFlags().StringVar(&conn.Context, "context", "", "Context name to use")

	root.AddCommand(projectcmd.Cmd(&conn))
	root.AddCommand(backupcmd.Cmd(&conn))
	root.AddCommand(credentialscmd.Cmd(&conn))
	root.AddCommand(contextcmd.Cmd())
	root.AddCommand(statsCmd(&conn))
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}

func statsCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate fleet statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Projects", fmt.Sprintf("%d", stats.Projects)},
				{"Running", fmt.Sprintf("%d", stats.ByStatus[basehive.StatusRunning])},
				{"Stopped", fmt.Sprintf("%d", stats.ByStatus[basehive.StatusStopped])},
				{"Error", fmt.Sprintf("%d", stats.ByStatus[basehive.StatusError])},
				{"Storage", units.HumanSize(float64(stats.Storage.TotalBytes))},
				{"Memory", units.HumanSize(float64(stats.MemoryBytes))},
			}
			fmt.Println(ui.Table([]string{"Metric", "Value"}, rows))
			return nil
		},
	}
}

// tokenCmd mints API bearer tokens for operators holding the daemon's
// auth secret.
func tokenCmd() *cobra.Command {
	var secret, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("BASEHIVE_AUTH_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or BASEHIVE_AUTH_SECRET is required")
			}

			token, err := api.IssueToken(subject, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Daemon auth secret")
	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
