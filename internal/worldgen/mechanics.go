package worldgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"airogue/internal/llm"
	"airogue/internal/logging"
)

const mechanicsMaxTokens = 900

// MechanicsGenerator derives a set of 2-7 uniquely named mechanics from the
// theme, title and plot. When extraction fails it degrades through a raw
// JSON decode of the original response and finally a single synthetic
// mechanic, trading correctness for availability rather than failing the
// whole run.
type MechanicsGenerator struct {
	stageBase
}

func NewMechanicsGenerator(c Completer, opts Options) *MechanicsGenerator {
	return &MechanicsGenerator{stageBase: newStageBase(c, opts)}
}

func (g *MechanicsGenerator) Generate(ctx context.Context, theme, title, plot string) (Mechanics, error) {
	userPrompt := mechanicsPrompt(theme, title, plot)
	ctx = llm.WithOperationType(ctx, "worldgen.mechanics")

	startTime := time.Now()
	raw, err := g.completer.CompleteJSON(ctx, llm.JSONCompletionRequest{
		SystemPrompt: designPreamble,
		UserPrompt:   userPrompt,
		MaxTokens:    mechanicsMaxTokens,
		Temperature:  g.opts.Temperature,
		Model:        g.opts.Model,
	})
	g.record(StageMechanics, logging.KindInitial, designPreamble, userPrompt, raw, time.Since(startTime), err)
	if err != nil {
		return Mechanics{}, &ServiceError{Op: "mechanics", Err: err}
	}

	var result Mechanics
	schema := Schema{
		Name:         "mechanics",
		Instructions: mechanicsFormatInstructions,
		Decode: func(raw string) error {
			var ms Mechanics
			if err := json.Unmarshal([]byte(raw), &ms); err != nil {
				return err
			}
			if err := ms.Validate(); err != nil {
				return err
			}
			result = ms
			return nil
		},
	}

	extractErr := g.extractor.Extract(ctx, raw, schema)
	if extractErr == nil {
		return result, nil
	}

	var exErr *ExtractionError
	if !errors.As(extractErr, &exErr) {
		return Mechanics{}, extractErr
	}

	// Best-effort decode of the original response before giving up on it.
	if ms, ok := rawMechanicsFallback(raw); ok {
		g.opts.Debug.Printf("mechanics: extraction failed, raw JSON fallback recovered %d mechanics", len(ms.Mechanics))
		g.record(StageMechanics, logging.KindRawJSON, "", "", raw, 0, nil)
		return ms, nil
	}

	synthetic := Mechanics{Mechanics: []Mechanic{{
		Name:        fmt.Sprintf("Adventure in %s", theme),
		Description: fmt.Sprintf("Explore the world of %s with unique challenges and discoveries.", title),
	}}}
	g.opts.Debug.Printf("mechanics: raw JSON fallback failed, using synthetic fallback mechanic %q", synthetic.Mechanics[0].Name)
	g.record(StageMechanics, logging.KindSynthetic, "", "", synthetic.Mechanics[0].String(), 0, nil)
	return synthetic, nil
}

func rawMechanicsFallback(raw string) (Mechanics, bool) {
	var ms Mechanics
	if err := json.Unmarshal([]byte(sliceJSONObject(raw)), &ms); err != nil {
		return Mechanics{}, false
	}
	if len(ms.Mechanics) == 0 {
		return Mechanics{}, false
	}
	if err := ms.validateNames(); err != nil {
		return Mechanics{}, false
	}
	return ms, true
}
