package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
)

func logsCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs <project>",
		Short: "Show a project's container logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			logs, err := c.Logs(cmd.Context(), args[0], tail)
			if err != nil {
				return err
			}
			fmt.Print(logs)
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 100, "Number of log lines")
	return cmd
}
