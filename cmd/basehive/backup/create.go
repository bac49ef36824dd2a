package backup

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func createCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <project>",
		Short: "Snapshot a project's data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			rec, err := c.Backup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Backup %s created (%s).",
				ui.Bold(rec.Filename), units.HumanSize(float64(rec.SizeBytes))))
			return nil
		},
	}
}
