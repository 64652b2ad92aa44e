package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/pkg/authsdk"
)

var rolesJSON bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the role to permission catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if rolesJSON {
			var resp authsdk.RolesResponse
			for _, role := range rbac.Roles() {
				resp.Roles = append(resp.Roles, authsdk.RoleInfo{
					Role:        role.String(),
					Permissions: rbac.PermissionsFor(role).Slice(),
				})
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLE\tPERMISSIONS")
		for _, role := range rbac.Roles() {
			fmt.Fprintf(w, "%s\t%s\n", role, strings.Join(rbac.PermissionsFor(role).Slice(), ","))
		}
		return w.Flush()
	},
}

func init() {
	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "Print as JSON")
}
