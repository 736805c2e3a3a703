package main

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"github.com/spf13/cobra"
)

func newPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired tokens of every kind once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				n, err := svcs.Housekeeping(slogx.FromContext(ctx), 0).Purge(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired tokens\n", n)
				return nil
			})
		},
	}
}
