package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/hospitalauth/internal/auth/domain"
	"github.com/aussiebroadwan/hospitalauth/internal/auth/rbac"
	"github.com/aussiebroadwan/hospitalauth/pkg/cryptox"
)

var (
	createEmail        string
	createName         string
	createRole         string
	createNationalID   string
	createOrganization string
	createPassword     string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an identity",
	Long: `Creates an active identity. The password comes from --password, then
AUTH_NEW_USER_PASSWORD; when neither is set a random one is generated and
printed once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := rbac.ParseRoleTag(createRole)
		if err != nil {
			return err
		}

		password := createPassword
		if password == "" {
			password = os.Getenv("AUTH_NEW_USER_PASSWORD")
		}
		generated := password == ""
		if generated {
			if password, err = cryptox.GeneratePassword(); err != nil {
				return err
			}
		}

		ctx := commandContext(cmd)
		users, st, err := openUsers(ctx)
		if err != nil {
			return err
		}
		defer closeQuietly(ctx, st)

		u, err := users.CreateUser(ctx, domain.NewUser{
			DisplayName:    createName,
			Email:          createEmail,
			NationalID:     createNationalID,
			Role:           role,
			OrganizationID: createOrganization,
			Password:       password,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
		if generated {
			fmt.Fprintf(out, "password: %s\n", password)
		}
		return nil
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active <email> <true|false>",
	Short: "Activate or deactivate an identity",
	Long:  `Deactivation applies to the user's very next request; issued tokens stop working at once.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var active bool
		switch args[1] {
		case "true":
			active = true
		case "false":
		default:
			return errors.New("second argument must be true or false")
		}

		ctx := commandContext(cmd)
		users, st, err := openUsers(ctx)
		if err != nil {
			return err
		}
		defer closeQuietly(ctx, st)

		u, err := st.Users().GetUserByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("find %s: %w", args[0], err)
		}
		if err := users.SetActive(ctx, u.ID, active); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", u.Email, active)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createEmail, "email", "", "Email address (required)")
	createUserCmd.Flags().StringVar(&createName, "name", "", "Display name (required)")
	createUserCmd.Flags().StringVar(&createRole, "role", "", "Role tag, e.g. MEDICO (required)")
	createUserCmd.Flags().StringVar(&createNationalID, "national-id", "", "CPF, punctuation allowed")
	createUserCmd.Flags().StringVar(&createOrganization, "organization", "", "Organization id")
	createUserCmd.Flags().StringVar(&createPassword, "password", "", "Initial password")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("role")
}
