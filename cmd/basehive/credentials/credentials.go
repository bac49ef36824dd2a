// Package credentials holds the CLI commands for stored admin
// credentials.
package credentials

import (
	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
)

// Cmd returns the parent "basehive credentials" command.
func Cmd(conn *cmdutil.ConnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage stored admin credentials",
	}

	cmd.AddCommand(showCmd(conn))
	cmd.AddCommand(updateCmd(conn))
	cmd.AddCommand(exportCmd(conn))
	return cmd
}
