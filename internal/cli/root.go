// Package cli wires the ckctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/clusterkit-dev/clusterkit/internal/config"
)

var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:          "ckctl",
	Short:        "ClusterKit command line interface",
	Long:         `ckctl sets up and manages ClusterKit service endpoints.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Validate(cfg)
	},
}

func init() {
	cobra.OnInitialize(func() { cfg = config.NewConfig() })
	RootCmd.AddCommand(InitCmd, PingCmd, VersionCmd)
}

// Root returns the assembled command tree.
func Root() *cobra.Command { return RootCmd }
