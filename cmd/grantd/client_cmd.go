package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/spf13/cobra"
)

func newClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage OAuth2 clients",
	}
	cmd.AddCommand(
		newClientCreateCommand(),
		newClientListCommand(),
		newClientDeleteCommand(),
	)
	return cmd
}

func newClientCreateCommand() *cobra.Command {
	var p service.NewClientParams

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Register a client",
		Long: `Register a client. Confidential clients receive a secret that is printed
once and cannot be retrieved again. Without --scope the client may request
any registered scope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				client, secret, err := svcs.Clients.CreateClient(ctx, p)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "client_id:     %s\n", client.ID)
				if secret != "" {
					fmt.Fprintf(out, "client_secret: %s\n", secret)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&p.Confidential, "confidential", false, "generate a client secret")
	cmd.Flags().StringArrayVar(&p.RedirectURIs, "redirect-uri", nil, "registered redirect URI (repeatable)")
	cmd.Flags().StringArrayVar(&p.Scopes, "scope", nil, "allowed scope (repeatable)")
	return cmd
}

func newClientListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				clients, err := svcs.Clients.ListClients(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSCOPES\tCREATED")
				for _, c := range clients {
					kind := "confidential"
					if c.IsPublic() {
						kind = "public"
					}
					scopes := strings.Join(c.Scopes, " ")
					if scopes == "" {
						scopes = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, kind, scopes, c.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newClientDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a client and every token issued to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				if err := svcs.Clients.DeleteClient(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
