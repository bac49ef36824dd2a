package contextcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/ui"
	"basehive/config"
)

func addCmd() *cobra.Command {
	var server, token string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			if server == "" {
				return fmt.Errorf("--server is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cfg.Set(name, config.Context{
				Server: server,
				Token:  token,
			})

			// First context becomes current automatically.
			if cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}

			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Context %s saved.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Daemon base URL (e.g. http://127.0.0.1:8085)")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	return cmd
}
