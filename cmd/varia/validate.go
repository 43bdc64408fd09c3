package main

import (
	"github.com/aretw0/varia/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Check a scenario's rules for consistency",
	Long:  `Registers the scenario's nodes and rules and reports unresolved targets, listeners of unknown nodes, degenerate toggles and invalid timings.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ValidateScenario(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
