package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/internal/presentation/graph"
	"github.com/aretw0/varia/internal/scenario"
)

// GraphOptions configures RenderGraph.
type GraphOptions struct {
	Path string
	// Replay runs the scenario steps first and highlights the nodes they changed.
	Replay bool
	Logger *slog.Logger
}

// RenderGraph writes the Mermaid diagram of the scenario's node forest and rules to w.
func RenderGraph(ctx context.Context, w io.Writer, opts GraphOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	sc, err := scenario.Load(opts.Path)
	if err != nil {
		return err
	}
	if !opts.Replay {
		sc.Steps = nil
	}

	report, err := scenario.NewRunner(scenario.WithLogger(logger)).Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer report.Engine.Close()

	var overlay *graph.GraphOverlay
	if opts.Replay {
		overlay = &graph.GraphOverlay{
			ChangedNodes: report.Changed(),
			CurrentNode:  report.LastSource,
		}
	}
	_, err = fmt.Fprint(w, graph.GenerateMermaid(report.Engine.Inspect(), overlay))
	return err
}
