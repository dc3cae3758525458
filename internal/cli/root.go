// Package cli holds the opsd command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// DefaultConfigPath is used when neither --config nor CONFIG_PATH is set.
const DefaultConfigPath = "./config/config.yaml"

// NewRootCommand creates the root command for opsd.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opsd",
		Short: "Freight broker operations dashboard",
		Long: `opsd evaluates in-transit loads for GPS and appointment-window
exceptions, keeps a prioritized action queue and raises notifications
when a load escalates.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewEvaluateCommand())

	return cmd
}
