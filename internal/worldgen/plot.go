package worldgen

import (
	"context"
	"strings"
	"time"

	"airogue/internal/llm"
	"airogue/internal/logging"
)

const plotMaxTokens = 600

// PlotGenerator derives a plot from a (theme, title) pair. The narrative
// constraints (linear, under an hour) are prompt-level and advisory.
type PlotGenerator struct {
	stageBase
}

func NewPlotGenerator(c Completer, opts Options) *PlotGenerator {
	return &PlotGenerator{stageBase: newStageBase(c, opts)}
}

func (g *PlotGenerator) Generate(ctx context.Context, theme, title string) (string, error) {
	userPrompt := plotPrompt(theme, title)
	ctx = llm.WithOperationType(ctx, "worldgen.plot")

	startTime := time.Now()
	raw, err := g.completer.CompleteText(ctx, llm.TextCompletionRequest{
		SystemPrompt: designPreamble,
		UserPrompt:   userPrompt,
		MaxTokens:    plotMaxTokens,
		Temperature:  g.opts.Temperature,
		Model:        g.opts.Model,
	})
	g.record(StagePlot, logging.KindInitial, designPreamble, userPrompt, raw, time.Since(startTime), err)
	if err != nil {
		return "", &ServiceError{Op: "plot", Err: err}
	}

	plot := strings.TrimSpace(raw)
	if plot == "" {
		return "", &SchemaViolation{Field: "plot", Constraint: "plot must be non-empty"}
	}
	return plot, nil
}
