package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive"
	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
	"basehive/pkg/sdk"
)

func createCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var slug, client, memory, cpu string
	var autoBackup bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Provision a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}

			p, err := c.CreateProject(cmd.Context(), sdk.CreateProjectRequest{
				Name:       args[0],
				Slug:       slug,
				ClientName: client,
				Config: basehive.ProjectConfig{
					MemoryLimit: memory,
					CPULimit:    cpu,
					AutoBackup:  autoBackup,
				},
			})
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Project %s is %s.", ui.Bold(p.Slug), ui.Status(p.Status)))
			fmt.Println(ui.InfoMsg("URL:   %s", p.URL))
			fmt.Println(ui.InfoMsg("Admin: %s", p.AdminURL))
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Explicit slug (derived from name when omitted)")
	cmd.Flags().StringVar(&client, "client", "", "Client name")
	cmd.Flags().StringVar(&memory, "memory", "", "Memory limit (e.g. 512m)")
	cmd.Flags().StringVar(&cpu, "cpu", "", "CPU limit (e.g. 0.5)")
	cmd.Flags().BoolVar(&autoBackup, "auto-backup", false, "Enable automatic backups")
	return cmd
}
