package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/varia/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "varia",
	Short: "Varia is a declarative variant transition engine",
	Long: `Varia decides which named variant each node of a component tree displays,
driven by declarative rules, user events, timers and cross-node signals.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerFromFlags builds the logger selected by --log-level.
func loggerFromFlags(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return cli.CreateLogger(level)
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error or off")
}
