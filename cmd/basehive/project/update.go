package project

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive"
	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
	"basehive/pkg/sdk"
)

func updateCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var name, client, memory, cpu string

	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Update project metadata or limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}

			var req sdk.UpdateProjectRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("client") {
				req.ClientName = &client
			}
			if memory != "" || cpu != "" {
				req.Config = &basehive.ProjectConfig{MemoryLimit: memory, CPULimit: cpu}
			}
			if req.Name == nil && req.ClientName == nil && req.Config == nil {
				return fmt.Errorf("nothing to update: pass --name, --client, --memory or --cpu")
			}

			p, err := c.UpdateProject(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Project %s updated.", ui.Bold(p.Slug)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&client, "client", "", "New client name")
	cmd.Flags().StringVar(&memory, "memory", "", "New memory limit")
	cmd.Flags().StringVar(&cpu, "cpu", "", "New CPU limit")
	return cmd
}
