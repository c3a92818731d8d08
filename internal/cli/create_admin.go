package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookbrief/bookbrief/internal/auth"
	"github.com/bookbrief/bookbrief/internal/entities"
	"github.com/bookbrief/bookbrief/internal/entrypoint"
)

func newCreateAdminCommand(opts *options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: "Create an administrator account for the back-office.\n\n" +
			"The password may be passed with --password or the BOOKBRIEF_ADMIN_PASSWORD\n" +
			"environment variable.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BOOKBRIEF_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			app, err := entrypoint.Open(opts.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			user, err := app.Auth.CreateUser(cmd.Context(), name, email, password, entities.UserRoleAdmin)
			if errors.Is(err, auth.ErrUserExists) {
				return fmt.Errorf("an account with email %s already exists", email)
			}
			if err != nil {
				return err
			}

			app.Audit.LogUser(user.ID, "create_admin", user.ID, "administrator created from the command line")
			fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	return cmd
}
