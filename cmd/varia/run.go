package main

import (
	"github.com/aretw0/varia/internal/cli"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Replay a scenario and print the resulting variants",
	Long: `Loads a scenario (nodes, rules and scripted steps), replays it on a virtual clock and
prints the final variant of every node. Exits non-zero when an expect step does not hold.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		noColor, _ := cmd.Flags().GetBool("no-color")

		profile := termenv.EnvColorProfile()
		if noColor {
			profile = termenv.Ascii
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunScenario(sigCtx, cmd.OutOrStdout(), cli.RunOptions{
			Path:    args[0],
			Logger:  logger,
			Profile: profile,
			JSON:    jsonMode,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Print the final snapshot as JSON")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
}
