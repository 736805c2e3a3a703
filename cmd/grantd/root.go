package main

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantd",
		Short: "OAuth2 authorization server issuing opaque bearer tokens",
		Long: `grantd issues, validates and revokes opaque OAuth2 bearer tokens.

Configuration is read from the environment (and a .env file when present).
The administration commands operate directly on the configured store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCommand(),
		newClientCommand(),
		newScopeCommand(),
		newUserCommand(),
		newPurgeCommand(),
		newVersionCommand(),
	)
	return cmd
}

// withServices opens the configured store for an administration command and
// closes it once fn returns. Logs go to stderr so stdout stays parseable.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svcs *app.Services) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	logger := slogx.New(slogx.Config{
		Service: "grantd",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  cmd.ErrOrStderr(),
	})
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(cmd, db)

	ctx := slogx.WithContext(cmd.Context(), logger)
	return fn(ctx, app.NewServices(db, cfg, nil))
}

func closeStore(cmd *cobra.Command, db store.Store) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "closing store: %v\n", err)
	}
}
