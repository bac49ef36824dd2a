// Package backup holds the CLI commands for project archives.
package backup

import (
	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
)

// Cmd returns the parent "basehive backup" command.
func Cmd(conn *cmdutil.ConnFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage project backups",
	}

	cmd.AddCommand(createCmd(conn))
	cmd.AddCommand(listCmd(conn))
	cmd.AddCommand(restoreCmd(conn))
	return cmd
}
