package main

import (
	"fmt"

	"github.com/aretw0/varia"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of varia",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "varia version %s\n", varia.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
