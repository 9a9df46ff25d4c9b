package worldgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"airogue/internal/debug"
	"airogue/internal/llm"
	"airogue/internal/logging"
)

// Completer is the slice of the completion service the pipeline needs.
// Implemented by llm.Service; tests substitute scripted stubs.
type Completer interface {
	CompleteText(ctx context.Context, req llm.TextCompletionRequest) (string, error)
	CompleteJSON(ctx context.Context, req llm.JSONCompletionRequest) (string, error)
}

// Schema bundles what the extractor needs to turn raw model output into a
// validated value: a name for diagnostics, format instructions for the
// repair prompt, and a decode func that parses and validates in one step.
type Schema struct {
	Name         string
	Instructions string
	Decode       func(raw string) error
}

const repairMaxTokens = 1000

// Extractor converts raw generated text into validated structured values,
// with exactly one completion-backed repair attempt before giving up.
type Extractor struct {
	completer   Completer
	model       string
	temperature float64
	debug       *debug.Logger
	log         *logging.GenerationLogger
}

func NewExtractor(completer Completer, model string, temperature float64, debugLogger *debug.Logger, genLog *logging.GenerationLogger) *Extractor {
	return &Extractor{
		completer:   completer,
		model:       model,
		temperature: temperature,
		debug:       debugLogger,
		log:         genLog,
	}
}

// Extract attempts schema.Decode on raw; on failure it issues one repair
// completion and retries the decode once. A second decode failure returns
// an ExtractionError carrying the original raw text. Callers must budget
// for up to one extra completion call per Extract.
func (e *Extractor) Extract(ctx context.Context, raw string, schema Schema) error {
	firstErr := schema.Decode(stripFences(raw))
	if firstErr == nil {
		return nil
	}

	e.debug.Printf("extract %s: direct parse failed (%v), attempting repair", schema.Name, firstErr)

	userPrompt := fmt.Sprintf("The raw response:\n%s\n\nThe expected format:\n%s", raw, schema.Instructions)
	startTime := time.Now()
	repaired, callErr := e.completer.CompleteJSON(ctx, llm.JSONCompletionRequest{
		SystemPrompt: repairSystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    repairMaxTokens,
		Temperature:  e.temperature,
		Model:        e.model,
	})

	if logErr := e.log.Record(schema.Name, logging.KindRepair, e.model, repairSystemPrompt, userPrompt, repaired, time.Since(startTime), callErr); logErr != nil {
		e.debug.Printf("extract %s: failed to record repair call: %v", schema.Name, logErr)
	}

	if callErr != nil {
		return &ServiceError{Op: "repair", Err: callErr}
	}

	if err := schema.Decode(stripFences(repaired)); err != nil {
		e.debug.Printf("extract %s: repair parse failed: %v", schema.Name, err)
		return &ExtractionError{Schema: schema.Name, Raw: raw, Err: err}
	}

	return nil
}

// stripFences removes markdown code fences that chat models wrap around
// JSON payloads.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// sliceJSONObject extracts the outermost {...} span for best-effort raw
// decodes when the payload is buried in prose.
func sliceJSONObject(raw string) string {
	s := stripFences(raw)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
