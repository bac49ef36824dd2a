package credentials

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func showCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's admin credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			creds, err := c.Credentials(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			password := "********"
			if reveal {
				password = creds.AdminPassword
			}
			rows := [][]string{
				{"Project", creds.ProjectName},
				{"Domain", creds.Domain},
				{"Email", creds.AdminEmail},
				{"Password", password},
			}
			fmt.Println(ui.Table([]string{"Field", "Value"}, rows))
			if !reveal {
				fmt.Println(ui.Muted("pass --reveal to print the password"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password in clear text")
	return cmd
}
