package worldgen

import (
	"context"
	"errors"
	"testing"
)

var shadowMagic = Mechanic{Name: "Shadow Magic", Description: "Draw power from darkness"}

func TestItemsGeneratorHappyPath(t *testing.T) {
	want := Items{Items: []Item{
		{Name: "Umbral Lens", Symbol: "o", Description: "Sees through shadow", Mechanic: "Shadow Magic"},
		{Name: "Wick Snuffer", Symbol: "!", Description: "Douses light", Mechanic: "Shadow Magic"},
	}}
	stub := &stubCompleter{jsonResponses: []string{mustJSON(t, want)}}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), shadowMagic, "Theme: Haunted Library\n")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestItemsGeneratorFillsMechanicReference(t *testing.T) {
	payload := Items{Items: []Item{
		{Name: "Umbral Lens", Symbol: "o", Description: "Sees through shadow"},
	}}
	stub := &stubCompleter{jsonResponses: []string{mustJSON(t, payload)}}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), shadowMagic, "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got.Items[0].Mechanic != "Shadow Magic" {
		t.Fatalf("expected omitted mechanic backfilled, got %q", got.Items[0].Mechanic)
	}
}

func TestItemsGeneratorZeroItemsIsValid(t *testing.T) {
	stub := &stubCompleter{jsonResponses: []string{`{"items": []}`}}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), shadowMagic, "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected no items, got %+v", got)
	}
}

func TestItemsGeneratorRawFallbackSalvagesValidItems(t *testing.T) {
	// The multi-character symbol fails schema validation even after repair,
	// but the salvage pass keeps the well-formed items around it.
	raw := `Here you go! {"items": [
		{"name": "Umbral Lens", "symbol": "o", "description": "Sees through shadow"},
		{"name": "Broken Charm", "symbol": "xx", "description": "Malformed"},
		{"name": "Umbral Lens", "symbol": "o", "description": "Duplicate"},
		{"name": "Wick Snuffer", "symbol": "!", "description": "Douses light"}
	]}`
	stub := &stubCompleter{jsonResponses: []string{raw, raw}}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), shadowMagic, "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected salvage to keep 2 items, got %+v", got.Items)
	}
	for _, item := range got.Items {
		if item.Mechanic != "Shadow Magic" {
			t.Fatalf("salvaged item missing mechanic reference: %+v", item)
		}
	}
}

func TestItemsGeneratorEmptyFallback(t *testing.T) {
	stub := &stubCompleter{jsonResponses: []string{"no json here", "none here either"}}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), shadowMagic, "")
	if err != nil {
		t.Fatalf("empty fallback should not fail the stage: %v", err)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("expected empty (non-nil) item set, got %+v", got)
	}
	if stub.jsonCalls != 2 {
		t.Fatalf("expected initial call plus one repair, got %d", stub.jsonCalls)
	}
}

func TestItemsGeneratorServiceErrorNotSwallowed(t *testing.T) {
	stub := &stubCompleter{jsonErr: errors.New("timeout")}
	gen := NewItemsGenerator(stub, Options{Temperature: 1.0})

	_, err := gen.Generate(context.Background(), shadowMagic, "")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}
