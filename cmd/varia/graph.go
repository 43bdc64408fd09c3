package main

import (
	"github.com/aretw0/varia/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scenario.yaml>",
	Short: "Export the node forest and rules as a Mermaid diagram",
	Long: `Registers the scenario's nodes and rules and outputs a Mermaid diagram (graph TD) of the
node forest, with one labelled edge per rule. With --replay the steps run first and the
nodes they changed are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		replay, _ := cmd.Flags().GetBool("replay")

		return cli.RenderGraph(cmd.Context(), cmd.OutOrStdout(), cli.GraphOptions{
			Path:   args[0],
			Replay: replay,
			Logger: logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("replay", false, "Run the scenario steps and highlight changed nodes")
}
