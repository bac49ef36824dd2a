package contextcmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/ui"
	"basehive/config"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available contexts",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if len(cfg.Contexts) == 0 {
				fmt.Println(ui.InfoMsg("No contexts configured."))
				return nil
			}

			names := make([]string, 0, len(cfg.Contexts))
			for name := range cfg.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			var rows [][]string
			for _, name := range names {
				c := cfg.Contexts[name]

				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}

				auth := "-"
				if c.Token != "" {
					auth = "token"
				}

				rows = append(rows, []string{current, name, c.Server, auth})
			}

			fmt.Println(ui.Table([]string{"", "NAME", "SERVER", "AUTH"}, rows))
			return nil
		},
	}
}
