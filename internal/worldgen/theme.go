package worldgen

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"airogue/internal/llm"
	"airogue/internal/logging"
)

const themesMaxTokens = 600

// ThemeGenerator produces a batch of ten candidate themes and selects one
// uniformly at random as the theme for the run.
type ThemeGenerator struct {
	stageBase
	rng *rand.Rand
}

func NewThemeGenerator(c Completer, opts Options) *ThemeGenerator {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ThemeGenerator{stageBase: newStageBase(c, opts), rng: rng}
}

// Generate returns the selected theme and the full batch it came from.
// userContext is optional free-text steering from the caller. An
// ExtractionError here is fatal for the run: no reasonable default theme
// exists.
func (g *ThemeGenerator) Generate(ctx context.Context, userContext string) (string, ThemeBatch, error) {
	userPrompt := themesPrompt(userContext)
	ctx = llm.WithOperationType(ctx, "worldgen.themes")

	startTime := time.Now()
	raw, err := g.completer.CompleteJSON(ctx, llm.JSONCompletionRequest{
		SystemPrompt: designPreamble,
		UserPrompt:   userPrompt,
		MaxTokens:    themesMaxTokens,
		Temperature:  g.opts.Temperature,
		Model:        g.opts.Model,
	})
	g.record(StageTheme, logging.KindInitial, designPreamble, userPrompt, raw, time.Since(startTime), err)
	if err != nil {
		return "", ThemeBatch{}, &ServiceError{Op: "themes", Err: err}
	}

	var batch ThemeBatch
	schema := Schema{
		Name:         "themes",
		Instructions: themesFormatInstructions,
		Decode: func(raw string) error {
			var tb ThemeBatch
			if err := json.Unmarshal([]byte(raw), &tb); err != nil {
				return err
			}
			if err := tb.Validate(); err != nil {
				return err
			}
			batch = tb
			return nil
		},
	}
	if err := g.extractor.Extract(ctx, raw, schema); err != nil {
		return "", ThemeBatch{}, err
	}

	theme := batch.Themes[g.rng.Intn(len(batch.Themes))]
	g.opts.Debug.Printf("theme selected: %q (from batch of %d)", theme, len(batch.Themes))
	return theme, batch, nil
}
