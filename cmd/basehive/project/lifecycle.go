package project

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
	"basehive/pkg/sdk"
)

func startCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return lifecycleCmd(conn, "start", "Start a stopped project", (*sdk.Client).StartProject)
}

func stopCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return lifecycleCmd(conn, "stop", "Stop a running project", (*sdk.Client).StopProject)
}

func restartCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return lifecycleCmd(conn, "restart", "Restart a project", (*sdk.Client).RestartProject)
}

func lifecycleCmd(conn *cmdutil.ConnFlags, verb, short string, op func(*sdk.Client, context.Context, string) (*sdk.Project, error)) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <project>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			p, err := op(c, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Project %s is %s.", ui.Bold(p.Slug), ui.Status(p.Status)))
			return nil
		},
	}
}
