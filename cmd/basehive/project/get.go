package project

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func getCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get <project>",
		Aliases: []string{"show", "inspect"},
		Short:   "Show one project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}

			p, err := c.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := [][]string{
				{"ID", p.ID},
				{"Name", p.Name},
				{"Slug", p.Slug},
				{"Client", orDash(p.ClientName)},
				{"Status", ui.Status(p.Status)},
				{"Container", orDash(p.ContainerName)},
				{"Port", strconv.Itoa(p.Port)},
				{"URL", p.URL},
				{"Admin", p.AdminURL},
				{"Memory", orDash(p.Config.MemoryLimit)},
				{"CPU", orDash(p.Config.CPULimit)},
				{"Created", p.CreatedAt.Format("2006-01-02 15:04:05")},
			}
			fmt.Println(ui.Table([]string{"Field", "Value"}, rows))
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
