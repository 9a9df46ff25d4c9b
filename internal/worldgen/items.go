package worldgen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"airogue/internal/llm"
	"airogue/internal/logging"
)

const itemsMaxTokens = 700

// ItemsGenerator derives 0-3 items for a single mechanic, grounded in the
// accumulated design document. Zero items is a valid result for a mechanic
// with no natural item tie-in. When extraction fails it degrades through a
// raw JSON decode and finally an empty item set rather than failing the
// run.
type ItemsGenerator struct {
	stageBase
}

func NewItemsGenerator(c Completer, opts Options) *ItemsGenerator {
	return &ItemsGenerator{stageBase: newStageBase(c, opts)}
}

func (g *ItemsGenerator) Generate(ctx context.Context, mechanic Mechanic, designDoc string) (Items, error) {
	userPrompt := itemsPrompt(designDoc, mechanic)
	ctx = llm.WithOperationType(ctx, "worldgen.items")

	startTime := time.Now()
	raw, err := g.completer.CompleteJSON(ctx, llm.JSONCompletionRequest{
		SystemPrompt: designPreamble,
		UserPrompt:   userPrompt,
		MaxTokens:    itemsMaxTokens,
		Temperature:  g.opts.Temperature,
		Model:        g.opts.Model,
	})
	g.record(StageItems, logging.KindInitial, designPreamble, userPrompt, raw, time.Since(startTime), err)
	if err != nil {
		return Items{}, &ServiceError{Op: "items", Err: err}
	}

	var result Items
	schema := Schema{
		Name:         "items",
		Instructions: itemsFormatInstructions,
		Decode: func(raw string) error {
			var it Items
			if err := json.Unmarshal([]byte(raw), &it); err != nil {
				return err
			}
			fillMechanicRefs(&it, mechanic)
			if err := it.Validate(); err != nil {
				return err
			}
			result = it
			return nil
		},
	}

	extractErr := g.extractor.Extract(ctx, raw, schema)
	if extractErr == nil {
		return result, nil
	}

	var exErr *ExtractionError
	if !errors.As(extractErr, &exErr) {
		return Items{}, extractErr
	}

	if it, ok := g.rawItemsFallback(raw, mechanic); ok {
		g.opts.Debug.Printf("items[%s]: extraction failed, raw JSON fallback recovered %d items", mechanic.Name, len(it.Items))
		g.record(StageItems, logging.KindRawJSON, "", "", raw, 0, nil)
		return it, nil
	}

	// Degraded default: a mechanic without usable items still leaves the
	// run viable.
	g.opts.Debug.Printf("items[%s]: raw JSON fallback failed, continuing with no items", mechanic.Name)
	g.record(StageItems, logging.KindSynthetic, "", "", "", 0, nil)
	return Items{Items: []Item{}}, nil
}

func fillMechanicRefs(it *Items, mechanic Mechanic) {
	for i := range it.Items {
		if it.Items[i].Mechanic == "" {
			it.Items[i].Mechanic = mechanic.Name
		}
	}
}

// rawItemsFallback is a best-effort salvage pass: decode whatever JSON is
// buried in the response, then keep only well-formed items up to the
// per-mechanic cap.
func (g *ItemsGenerator) rawItemsFallback(raw string, mechanic Mechanic) (Items, bool) {
	var it Items
	if err := json.Unmarshal([]byte(sliceJSONObject(raw)), &it); err != nil {
		return Items{}, false
	}

	fillMechanicRefs(&it, mechanic)

	kept := make([]Item, 0, len(it.Items))
	seen := make(map[string]struct{}, len(it.Items))
	for _, item := range it.Items {
		if len(kept) == maxItemsPerMechanic {
			break
		}
		if err := item.Validate(); err != nil {
			g.opts.Debug.Printf("items[%s]: dropping malformed item in fallback: %v", mechanic.Name, err)
			continue
		}
		if _, dup := seen[item.Name]; dup {
			continue
		}
		seen[item.Name] = struct{}{}
		kept = append(kept, item)
	}

	return Items{Items: kept}, true
}
