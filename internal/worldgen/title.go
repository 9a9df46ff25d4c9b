package worldgen

import (
	"context"
	"strings"
	"time"

	"airogue/internal/llm"
	"airogue/internal/logging"
)

const titleMaxTokens = 60

// TitleGenerator derives a title from exactly one theme.
type TitleGenerator struct {
	stageBase
}

func NewTitleGenerator(c Completer, opts Options) *TitleGenerator {
	return &TitleGenerator{stageBase: newStageBase(c, opts)}
}

// Generate returns a non-empty title. An empty response is a schema
// violation and fatal for the run.
func (g *TitleGenerator) Generate(ctx context.Context, theme string) (string, error) {
	userPrompt := titlePrompt(theme)
	ctx = llm.WithOperationType(ctx, "worldgen.title")

	startTime := time.Now()
	raw, err := g.completer.CompleteText(ctx, llm.TextCompletionRequest{
		SystemPrompt: designPreamble,
		UserPrompt:   userPrompt,
		MaxTokens:    titleMaxTokens,
		Temperature:  g.opts.Temperature,
		Model:        g.opts.Model,
	})
	g.record(StageTitle, logging.KindInitial, designPreamble, userPrompt, raw, time.Since(startTime), err)
	if err != nil {
		return "", &ServiceError{Op: "title", Err: err}
	}

	title := strings.Trim(strings.TrimSpace(raw), `"`)
	if title == "" {
		return "", &SchemaViolation{Field: "title", Constraint: "title must be non-empty"}
	}
	return title, nil
}
