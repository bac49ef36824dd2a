package backup

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func listCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list <project>",
		Aliases: []string{"ls"},
		Short:   "List a project's backups, newest first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			backups, err := c.ListBackups(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println(ui.Muted("no backups"))
				return nil
			}

			rows := make([][]string, len(backups))
			for i, b := range backups {
				rows[i] = []string{
					b.Filename,
					units.HumanSize(float64(b.SizeBytes)),
					b.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}
			fmt.Println(ui.Table([]string{"File", "Size", "Created"}, rows))
			return nil
		},
	}
}
