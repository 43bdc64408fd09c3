package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/varia/internal/scenario"
	"github.com/aretw0/varia/internal/validator"
)

// ValidateScenario registers the scenario's nodes and rules and reports rules that can never apply.
// Steps are not run.
func ValidateScenario(ctx context.Context, w io.Writer, path string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	sc.Steps = nil

	report, err := scenario.NewRunner().Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer report.Engine.Close()

	if err := validator.ValidateForest(report.Engine.Inspect()); err != nil {
		return err
	}
	printSystemMessage(w, "Scenario %s is valid (%d nodes)", sc.Name, len(sc.Nodes))
	return nil
}
