package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/spf13/cobra"
)

func newScopeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Manage the scope registry",
	}
	cmd.AddCommand(
		newScopeCreateCommand(),
		newScopeListCommand(),
		newScopeSeedCommand(),
	)
	return cmd
}

func newScopeCreateCommand() *cobra.Command {
	var def domain.ScopeDefinition

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Register a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def.Name = args[0]
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				sc, err := svcs.Scopes.CreateScope(ctx, def)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", sc.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&def.Description, "description", "", "human readable description")
	cmd.Flags().BoolVar(&def.Default, "default", false, "grant when a client requests no scope")
	return cmd
}

func newScopeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered scopes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				scopes, err := svcs.Scopes.GetAll(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tDEFAULT\tDESCRIPTION")
				for _, sc := range scopes {
					fmt.Fprintf(tw, "%s\t%t\t%s\n", sc.Name, sc.IsDefault, sc.Description)
				}
				return tw.Flush()
			})
		},
	}
}

func newScopeSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Register the scopes listed in a YAML file",
		Long: `Register the scopes listed in a YAML file. Existing scopes are left alone.

  scopes:
    - name: read
      description: Read access
      default: true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services) error {
				n, err := svcs.Scopes.SeedFromFile(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d scopes\n", n)
				return nil
			})
		},
	}
}
