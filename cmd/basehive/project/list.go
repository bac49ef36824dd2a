package project

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"basehive"
	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
	"basehive/pkg/sdk"
)

func listCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var status, client, search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}

			projects, total, err := c.ListProjects(cmd.Context(), sdk.ListOptions{
				Status: basehive.Status(status),
				Client: client,
				Search: search,
			})
			if err != nil {
				return err
			}
			if total == 0 {
				fmt.Println(ui.Muted("no projects"))
				return nil
			}

			rows := make([][]string, len(projects))
			for i, p := range projects {
				clientName := p.ClientName
				if clientName == "" {
					clientName = "-"
				}
				rows[i] = []string{
					p.Slug,
					p.Name,
					clientName,
					ui.Status(p.Status),
					strconv.Itoa(p.Port),
					p.URL,
				}
			}

			fmt.Println(ui.Table(
				[]string{"Slug", "Name", "Client", "Status", "Port", "URL"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&client, "client", "", "Filter by client name")
	cmd.Flags().StringVar(&search, "search", "", "Substring search across name, slug, client")
	return cmd
}
