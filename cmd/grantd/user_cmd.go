package main

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/spf13/cobra"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage resource owners",
	}
	cmd.AddCommand(newUserCreateCommand())
	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a user for the password and authorization code grants",
		Long: `Create a user. Without --password a random password is generated and
printed once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				u, pw, err := svcs.Users.CreateUser(ctx, args[0], password)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "user_id:  %s\n", u.ID)
				if password == "" {
					fmt.Fprintf(out, "password: %s\n", pw)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password to set instead of a generated one")
	return cmd
}
