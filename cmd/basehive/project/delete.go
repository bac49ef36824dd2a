package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func deleteCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var keepData, yes bool

	cmd := &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !keepData {
				return fmt.Errorf("deleting %q removes its data permanently: pass --yes to confirm or --keep-data to retain files", args[0])
			}

			c, err := conn.Client()
			if err != nil {
				return err
			}
			if err := c.DeleteProject(cmd.Context(), args[0], keepData); err != nil {
				return err
			}

			if keepData {
				fmt.Println(ui.SuccessMsg("Project %s deleted; data retained on disk.", ui.Bold(args[0])))
			} else {
				fmt.Println(ui.SuccessMsg("Project %s deleted.", ui.Bold(args[0])))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepData, "keep-data", false, "Keep the record and data directory")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation check")
	return cmd
}
