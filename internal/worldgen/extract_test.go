package worldgen

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"airogue/internal/llm"
)

// stubCompleter replays scripted responses in order and counts calls. It is
// safe for concurrent use so pipeline tests can run fan-out stages against
// it.
type stubCompleter struct {
	mu sync.Mutex

	textResponses []string
	jsonResponses []string
	textErr       error
	jsonErr       error

	textCalls int
	jsonCalls int

	// jsonFunc, when set, routes JSON calls by prompt instead of replaying
	// the scripted list.
	jsonFunc func(req llm.JSONCompletionRequest) (string, error)
}

func (s *stubCompleter) CompleteText(ctx context.Context, req llm.TextCompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textCalls++
	if s.textErr != nil {
		return "", s.textErr
	}
	if len(s.textResponses) == 0 {
		return "", errors.New("stub: no scripted text response")
	}
	resp := s.textResponses[0]
	s.textResponses = s.textResponses[1:]
	return resp, nil
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, req llm.JSONCompletionRequest) (string, error) {
	s.mu.Lock()
	s.jsonCalls++
	if s.jsonFunc != nil {
		s.mu.Unlock()
		return s.jsonFunc(req)
	}
	defer s.mu.Unlock()
	if s.jsonErr != nil {
		return "", s.jsonErr
	}
	if len(s.jsonResponses) == 0 {
		return "", errors.New("stub: no scripted JSON response")
	}
	resp := s.jsonResponses[0]
	s.jsonResponses = s.jsonResponses[1:]
	return resp, nil
}

func themeBatchSchema(batch *ThemeBatch) Schema {
	return Schema{
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
			*batch = tb
			return nil
		},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestExtractDirectParseMakesNoCalls(t *testing.T) {
	stub := &stubCompleter{}
	extractor := NewExtractor(stub, "test-model", 1.0, nil, nil)

	var batch ThemeBatch
	raw := mustJSON(t, ThemeBatch{Themes: tenThemes()})
	if err := extractor.Extract(context.Background(), raw, themeBatchSchema(&batch)); err != nil {
		t.Fatalf("expected direct parse to succeed, got %v", err)
	}
	if stub.jsonCalls != 0 {
		t.Fatalf("direct parse should make no completion calls, made %d", stub.jsonCalls)
	}
	if len(batch.Themes) != 10 {
		t.Fatalf("expected 10 themes, got %d", len(batch.Themes))
	}
}

func TestExtractStripsMarkdownFences(t *testing.T) {
	stub := &stubCompleter{}
	extractor := NewExtractor(stub, "test-model", 1.0, nil, nil)

	var batch ThemeBatch
	raw := "```json\n" + mustJSON(t, ThemeBatch{Themes: tenThemes()}) + "\n```"
	if err := extractor.Extract(context.Background(), raw, themeBatchSchema(&batch)); err != nil {
		t.Fatalf("expected fenced payload to parse, got %v", err)
	}
	if stub.jsonCalls != 0 {
		t.Fatalf("fenced payload should not need repair, made %d calls", stub.jsonCalls)
	}
}

func TestExtractRepairsOnce(t *testing.T) {
	stub := &stubCompleter{
		jsonResponses: []string{mustJSON(t, ThemeBatch{Themes: tenThemes()})},
	}
	extractor := NewExtractor(stub, "test-model", 1.0, nil, nil)

	var batch ThemeBatch
	err := extractor.Extract(context.Background(), "Here are some great themes for you!", themeBatchSchema(&batch))
	if err != nil {
		t.Fatalf("expected repair to recover, got %v", err)
	}
	if stub.jsonCalls != 1 {
		t.Fatalf("expected exactly 1 repair call, got %d", stub.jsonCalls)
	}
}

func TestExtractGivesUpAfterOneRepair(t *testing.T) {
	stub := &stubCompleter{
		jsonResponses: []string{"still not json", "never reached"},
	}
	extractor := NewExtractor(stub, "test-model", 1.0, nil, nil)

	var batch ThemeBatch
	original := "totally malformed"
	err := extractor.Extract(context.Background(), original, themeBatchSchema(&batch))

	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if exErr.Raw != original {
		t.Fatalf("expected original raw text preserved, got %q", exErr.Raw)
	}
	if stub.jsonCalls != 1 {
		t.Fatalf("expected exactly 1 repair call before giving up, got %d", stub.jsonCalls)
	}
}

func TestExtractRepairTransportError(t *testing.T) {
	stub := &stubCompleter{jsonErr: errors.New("connection refused")}
	extractor := NewExtractor(stub, "test-model", 1.0, nil, nil)

	var batch ThemeBatch
	err := extractor.Extract(context.Background(), "not json", themeBatchSchema(&batch))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError for failed repair transport, got %v", err)
	}
}

func TestSliceJSONObject(t *testing.T) {
	cases := map[string]string{
		`Sure! {"items": []} Hope that helps.`: `{"items": []}`,
		`{"a": 1}`:                             `{"a": 1}`,
		`no braces here`:                       `no braces here`,
	}
	for in, want := range cases {
		if got := sliceJSONObject(in); got != want {
			t.Errorf("sliceJSONObject(%q) = %q, want %q", in, got, want)
		}
	}
}
