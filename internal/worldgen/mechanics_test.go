package worldgen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMechanicsGeneratorHappyPath(t *testing.T) {
	want := Mechanics{Mechanics: []Mechanic{
		{Name: "Silence Meter", Description: "Noise attracts the librarian"},
		{Name: "Card Catalog", Description: "Look up the location of lost books"},
		{Name: "Candle Light", Description: "Darkness spreads as candles burn down"},
	}}
	stub := &stubCompleter{jsonResponses: []string{mustJSON(t, want)}}
	gen := NewMechanicsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower", "Find the cursed book before dawn")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Mechanics) != 3 {
		t.Fatalf("expected 3 mechanics, got %+v", got)
	}
	for i, mech := range got.Mechanics {
		if mech.Name != want.Mechanics[i].Name {
			t.Fatalf("mechanic %d name diverged from payload: got %q, want %q", i, mech.Name, want.Mechanics[i].Name)
		}
	}
	if stub.jsonCalls != 1 {
		t.Fatalf("expected 1 completion call, got %d", stub.jsonCalls)
	}
}

func TestMechanicsGeneratorRepairRecovers(t *testing.T) {
	want := Mechanics{Mechanics: []Mechanic{
		{Name: "Silence Meter"},
		{Name: "Card Catalog"},
	}}
	stub := &stubCompleter{jsonResponses: []string{
		"Sure, here are some mechanics you'll love:",
		mustJSON(t, want),
	}}
	gen := NewMechanicsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower", "Return the overdue book.")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Mechanics) != 2 {
		t.Fatalf("unexpected mechanics: %+v", got)
	}
	if stub.jsonCalls != 2 {
		t.Fatalf("expected initial call plus exactly one repair, got %d", stub.jsonCalls)
	}
}

func TestMechanicsGeneratorRawJSONFallback(t *testing.T) {
	// Eight mechanics fail the 2-7 schema even after repair, but the raw
	// decode keeps them rather than discarding a usable response.
	var eight Mechanics
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		eight.Mechanics = append(eight.Mechanics, Mechanic{Name: name})
	}
	raw := mustJSON(t, eight)
	stub := &stubCompleter{jsonResponses: []string{raw, raw}}
	gen := NewMechanicsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower", "Return the overdue book.")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(got.Mechanics) != 8 {
		t.Fatalf("expected raw fallback to keep all 8 mechanics, got %d", len(got.Mechanics))
	}
}

func TestMechanicsGeneratorSyntheticFallback(t *testing.T) {
	stub := &stubCompleter{jsonResponses: []string{"not json at all", "still prose"}}
	gen := NewMechanicsGenerator(stub, Options{Temperature: 1.0})

	got, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower", "Return the overdue book.")
	if err != nil {
		t.Fatalf("synthetic fallback should not fail the stage: %v", err)
	}
	if len(got.Mechanics) != 1 {
		t.Fatalf("expected exactly one synthetic mechanic, got %d", len(got.Mechanics))
	}
	mech := got.Mechanics[0]
	if !strings.Contains(mech.Name, "Haunted Library") {
		t.Fatalf("synthetic mechanic name should embed the theme, got %q", mech.Name)
	}
	if !strings.Contains(mech.Description, "The Last Borrower") {
		t.Fatalf("synthetic mechanic description should embed the title, got %q", mech.Description)
	}
	if stub.jsonCalls != 2 {
		t.Fatalf("expected initial call plus one repair before falling back, got %d", stub.jsonCalls)
	}
}

func TestMechanicsGeneratorServiceErrorNotSwallowed(t *testing.T) {
	stub := &stubCompleter{jsonErr: errors.New("timeout")}
	gen := NewMechanicsGenerator(stub, Options{Temperature: 1.0})

	_, err := gen.Generate(context.Background(), "Haunted Library", "The Last Borrower", "Return the overdue book.")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
}
