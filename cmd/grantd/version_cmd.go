package main

import (
	"fmt"

	"github.com/aussiebroadwan/grantd/internal/auth/app"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the grantd version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "grantd %s\n", app.BuildVersion)
			return err
		},
	}
}
