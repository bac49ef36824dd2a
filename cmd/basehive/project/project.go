// Package project holds the CLI commands for managing fleet projects.
package project

import (
	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
)

// Cmd returns the parent "basehive project" command.
func Cmd(conn *cmdutil.ConnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage fleet projects",
	}

	cmd.AddCommand(createCmd(conn))
	cmd.AddCommand(listCmd(conn))
	cmd.AddCommand(getCmd(conn))
	cmd.AddCommand(updateCmd(conn))
	cmd.AddCommand(deleteCmd(conn))
	cmd.AddCommand(startCmd(conn))
	cmd.AddCommand(stopCmd(conn))
	cmd.AddCommand(restartCmd(conn))
	cmd.AddCommand(logsCmd(conn))
	return cmd
}
