package worldgen

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestThemeGeneratorSelectsFromBatch(t *testing.T) {
	batch := ThemeBatch{Themes: tenThemes()}
	stub := &stubCompleter{jsonResponses: []string{mustJSON(t, batch)}}
	gen := NewThemeGenerator(stub, Options{Temperature: 1.0, Rand: rand.New(rand.NewSource(42))})

	theme, got, err := gen.Generate(context.Background(), "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Themes) != 10 {
		t.Fatalf("expected the full batch back, got %d themes", len(got.Themes))
	}

	found := false
	for _, candidate := range got.Themes {
		if candidate == theme {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("selected theme %q not in batch", theme)
	}
	if stub.jsonCalls != 1 {
		t.Fatalf("expected 1 completion call, got %d", stub.jsonCalls)
	}
}

func TestThemeGeneratorDeterministicWithSeed(t *testing.T) {
	batch := ThemeBatch{Themes: tenThemes()}

	pick := func() string {
		stub := &stubCompleter{jsonResponses: []string{mustJSON(t, batch)}}
		gen := NewThemeGenerator(stub, Options{Temperature: 1.0, Rand: rand.New(rand.NewSource(7))})
		theme, _, err := gen.Generate(context.Background(), "")
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		return theme
	}

	if first, second := pick(), pick(); first != second {
		t.Fatalf("same seed picked different themes: %q vs %q", first, second)
	}
}

func TestThemeGeneratorServiceError(t *testing.T) {
	stub := &stubCompleter{jsonErr: errors.New("rate limited")}
	gen := NewThemeGenerator(stub, Options{Temperature: 1.0})

	_, _, err := gen.Generate(context.Background(), "")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}

func TestThemeGeneratorExtractionFailureIsFatal(t *testing.T) {
	stub := &stubCompleter{jsonResponses: []string{"not json", "still not json"}}
	gen := NewThemeGenerator(stub, Options{Temperature: 1.0})

	_, _, err := gen.Generate(context.Background(), "")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if stub.jsonCalls != 2 {
		t.Fatalf("expected initial call plus one repair, got %d calls", stub.jsonCalls)
	}
}

func TestTitleGeneratorTrimsQuotes(t *testing.T) {
	stub := &stubCompleter{textResponses: []string{"  \"The Last Borrower\"  "}}
	gen := NewTitleGenerator(stub, Options{Temperature: 1.0})

	title, err := gen.Generate(context.Background(), "Haunted Library")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if title != "The Last Borrower" {
		t.Fatalf("expected trimmed title, got %q", title)
	}
}

func TestTitleGeneratorRejectsEmpty(t *testing.T) {
	stub := &stubCompleter{textResponses: []string{"   "}}
	gen := NewTitleGenerator(stub, Options{Temperature: 1.0})

	_, err := gen.Generate(context.Background(), "Haunted Library")
	var schemaErr *SchemaViolation
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaViolation for empty title, got %v", err)
	}
}

func TestPlotGeneratorRejectsEmpty(t *testing.T) {
	stub := &stubCompleter{textResponses: []string{""}}
	gen := NewPlotGenerator(stub, Options{Temperature: 1.0})

	_, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower")
	var schemaErr *SchemaViolation
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaViolation for empty plot, got %v", err)
	}
}
