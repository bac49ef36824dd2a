package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"basehive/cmd/basehive/cmdutil"
	"basehive/cmd/basehive/ui"
)

func exportCmd(conn *cmdutil.ConnFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := conn.Client()
			if err != nil {
				return err
			}
			creds, err := c.ExportCredentials(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(creds)
			}

			if len(creds) == 0 {
				fmt.Println(ui.Muted("no credentials stored"))
				return nil
			}
			rows := make([][]string, len(creds))
			for i, cr := range creds {
				rows[i] = []string{cr.Slug, cr.Domain, cr.AdminEmail, cr.AdminPassword}
			}
			fmt.Println(ui.Table([]string{"Slug", "Domain", "Email", "Password"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
