package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-music-platform/internal/auth"
)

func newCreateAdminCmd() *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:     "create-admin [username]",
		Short:   "Create an admin account, or promote an existing one.",
		Long:    "Creates an ADMIN identity. An existing identity with the same username is promoted and its password replaced. The password is read from $" + adminPasswordEnv + ".",
		Example: adminPasswordEnv + "=changeme music-platform create-admin root",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv(adminPasswordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", adminPasswordEnv)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.pg == nil {
				return errors.New("create-admin requires the postgres driver; use serve --admin-user with the memory driver")
			}

			identity, err := a.gateway.EnsureAdmin(cmd.Context(), auth.Registration{
				Handle:    args[0],
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (id %d)\n", identity.Handle, identity.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "firstname", "", "first name")
	cmd.Flags().StringVar(&lastName, "lastname", "", "last name")
	return cmd
}
