package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uapibot/uapibot/pkg/sockpath"
)

var (
	socketPath string

	// Version is set by the main package via ldflags.
	Version = "dev"
)

// NewRootCmd creates the root uapibotctl command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "uapibotctl",
		Short:   "Uapibot CLI — control the uapibotd daemon",
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", sockpath.DefaultSocketPath(), "uapibotd Unix socket path")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLookupsCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newSecretsCmd())

	return rootCmd
}
