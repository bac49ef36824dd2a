package backup

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func restoreCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <project> <filename>",
		Short: "Replace a project's data with a backup archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("restoring overwrites current data for %q: pass --yes to confirm", args[0])
			}

			c, err := conn.Client()
			if err != nil {
				return err
			}
			if err := c.Restore(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Project %s restored from %s.", ui.Bold(args[0]), ui.Bold(args[1])))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation check")
	return cmd
}
