// Package cli wires the rustbot commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X rustbot/internal/cli.Version=..."
var Version = "dev"

const flagEnvFile = "env-file"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rustbot",
		Short:         "Discord bot that shows Rust server status and info cards",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().String(flagEnvFile, ".env", "File with environment variables, ignored when missing")

	root.AddCommand(ServeCmd())
	root.AddCommand(ServersCmd())
	root.AddCommand(VersionCmd())
	return root
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rustbot %s\n", Version)
		},
	}
}
