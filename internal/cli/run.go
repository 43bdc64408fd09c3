package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/internal/presentation/tui"
	"github.com/aretw0/varia/internal/scenario"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/observability"
	"github.com/muesli/termenv"
)

// ErrExpectationsFailed is returned by RunScenario when an expect step did not hold.
var ErrExpectationsFailed = errors.New("scenario expectations failed")

// RunOptions configures RunScenario.
type RunOptions struct {
	Path    string
	Logger  *slog.Logger
	Profile termenv.Profile
	JSON    bool
}

// runResult is the JSON form of a replay.
type runResult struct {
	Name     string                 `json:"name"`
	Elapsed  string                 `json:"elapsed"`
	Nodes    []domain.NodeSnapshot  `json:"nodes"`
	Actions  []domain.ActionRequest `json:"actions,omitempty"`
	Failures []string               `json:"failures,omitempty"`
}

// RunScenario replays the scenario at opts.Path and writes the final variant table to w.
func RunScenario(ctx context.Context, w io.Writer, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	sc, err := scenario.Load(opts.Path)
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(
		scenario.WithLogger(logger),
		scenario.WithLifecycleHooks(observability.LoggingHooks(logger)),
	)
	report, err := runner.Run(ctx, sc)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer report.Engine.Close()

	if opts.JSON {
		if err := writeJSONReport(w, report); err != nil {
			return err
		}
	} else {
		tui.RenderTable(w, opts.Profile, reportRows(report))
		for _, a := range report.Actions {
			printSystemMessage(w, "%s requested by %s%s", a.Type, a.SourceID, actionDetail(a))
		}
		for _, f := range report.Failures {
			printSystemMessage(w, "FAIL %s", f)
		}
	}

	if !report.Passed() {
		return fmt.Errorf("%w: %d unmet", ErrExpectationsFailed, len(report.Failures))
	}
	return nil
}

func writeJSONReport(w io.Writer, report *scenario.Report) error {
	res := runResult{
		Name:    report.Name,
		Elapsed: report.Elapsed.String(),
		Nodes:   report.Engine.Inspect(),
		Actions: report.Actions,
	}
	for _, f := range report.Failures {
		res.Failures = append(res.Failures, f.String())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func reportRows(report *scenario.Report) []tui.Row {
	changed := make(map[string]bool)
	for _, id := range report.Changed() {
		changed[id] = true
	}

	snaps := report.Engine.Inspect()
	rows := make([]tui.Row, 0, len(snaps))
	for _, snap := range snaps {
		row := tui.Row{
			ID:       snap.Node.ID,
			ParentID: snap.Node.ParentID,
			Variant:  snap.Node.LogicalVariant,
			Visual:   snap.Node.VisualVariant,
			Changed:  changed[snap.Node.ID],
		}
		if props, ok := report.Engine.AnimationProps(snap.Node.ID); ok {
			row.Animation = &props
		}
		rows = append(rows, row)
	}
	return rows
}

func actionDetail(a domain.ActionRequest) string {
	switch {
	case a.URL != "":
		return " (" + a.URL + ")"
	case a.OverlayID != "":
		return " (" + a.OverlayID + ")"
	case a.ScrollTargetID != "":
		return " (" + a.ScrollTargetID + ")"
	}
	return ""
}
