// Package cli implements the attrfilter command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// configFile is bound to the persistent --config flag.
var configFile string

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attrfilter",
		Short: "Attribute release policy evaluation",
		Long: `attrfilter evaluates attribute release policies.

Given a policy configuration and a set of resolved attributes, it decides
which attributes, and which of their values, may be released to a relying
party.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the policy configuration file")

	cmd.AddCommand(NewEvalCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
