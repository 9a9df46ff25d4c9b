package logging

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *GenerationLogger {
	t.Helper()
	logger, err := NewGenerationLogger(filepath.Join(t.TempDir(), "generations.db"))
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestRecordAndRecent(t *testing.T) {
	logger := newTestLogger(t)

	if err := logger.Record("theme", KindInitial, "test-model", "sys", "user", `{"themes": []}`, 250*time.Millisecond, nil); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := logger.Record("theme", KindRepair, "test-model", "sys", "user", "", 100*time.Millisecond, errors.New("rate limited")); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	records, err := logger.Recent(10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	newest := records[0]
	if newest.Kind != KindRepair {
		t.Fatalf("expected newest record first, got kind %q", newest.Kind)
	}
	if newest.Error != "rate limited" {
		t.Fatalf("expected call error persisted, got %q", newest.Error)
	}
	if records[1].DurationMS != 250 {
		t.Fatalf("expected duration in milliseconds, got %d", records[1].DurationMS)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	logger := newTestLogger(t)

	for i := 0; i < 5; i++ {
		if err := logger.Record("items", KindInitial, "test-model", "sys", "user", "{}", time.Millisecond, nil); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	records, err := logger.Recent(3)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *GenerationLogger

	if err := logger.Record("theme", KindInitial, "m", "s", "u", "r", 0, nil); err != nil {
		t.Fatalf("nil logger Record should be a no-op, got %v", err)
	}
	if _, err := logger.Recent(5); err != nil {
		t.Fatalf("nil logger Recent should be a no-op, got %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("nil logger Close should be a no-op, got %v", err)
	}
}
