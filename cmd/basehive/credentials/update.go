package credentials

import (
	"fmt"

	"github.com/spf13/cobra"

	"basehive"
	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func updateCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Update a project's stored admin credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update basehive.CredentialUpdate
			if cmd.Flags().Changed("email") {
				update.AdminEmail = &email
			}
			if cmd.Flags().Changed("password") {
				update.AdminPassword = &password
			}
			if update.AdminEmail == nil && update.AdminPassword == nil {
				return fmt.Errorf("nothing to update: pass --email or --password")
			}

			c, err := conn.Client()
			if err != nil {
				return err
			}
			creds, err := c.UpdateCredentials(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Credentials for %s updated.", ui.Bold(creds.Slug)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New admin email")
	cmd.Flags().StringVar(&password, "password", "", "New admin password")
	return cmd
}
