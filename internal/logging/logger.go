package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Call kinds recorded for each completion issued by the content pipeline.
// Fallback paths never fail a run but must still be visible here.
const (
	KindInitial   = "initial"
	KindRepair    = "repair"
	KindRawJSON   = "raw_json_fallback"
	KindSynthetic = "synthetic_fallback"
)

type GenerationRecord struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Stage        string    `json:"stage"`
	Kind         string    `json:"kind"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	UserPrompt   string    `json:"user_prompt"`
	Response     string    `json:"response"`
	DurationMS   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
}

// GenerationLogger persists every generation call to sqlite so that a run
// can be audited after the fact. A nil logger is safe to use.
type GenerationLogger struct {
	db *sql.DB
}

func NewGenerationLogger(path string) (*GenerationLogger, error) {
	if path == "" {
		path = "./generations.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := &GenerationLogger{db: db}
	if err := logger.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return logger, nil
}

func (gl *GenerationLogger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		stage TEXT NOT NULL,
		kind TEXT NOT NULL,
		model TEXT NOT NULL,
		system_prompt TEXT NOT NULL,
		user_prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_generations_timestamp ON generations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_generations_stage ON generations(stage);
	`

	_, err := gl.db.Exec(schema)
	return err
}

// Record inserts one generation call. Best effort: callers treat a logging
// failure as non-fatal.
func (gl *GenerationLogger) Record(stage, kind, model, systemPrompt, userPrompt, response string, duration time.Duration, callErr error) error {
	if gl == nil {
		return nil
	}

	errText := ""
	if callErr != nil {
		errText = callErr.Error()
	}

	_, err := gl.db.Exec(`
		INSERT INTO generations (stage, kind, model, system_prompt, user_prompt, response, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, stage, kind, model, systemPrompt, userPrompt, response, duration.Milliseconds(), errText)

	return err
}

// Recent returns the latest records, newest first, for auditing a run.
func (gl *GenerationLogger) Recent(limit int) ([]GenerationRecord, error) {
	if gl == nil {
		return nil, nil
	}

	rows, err := gl.db.Query(`
		SELECT id, timestamp, stage, kind, model, system_prompt, user_prompt, response, duration_ms, error
		FROM generations
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Stage, &r.Kind, &r.Model, &r.SystemPrompt, &r.UserPrompt, &r.Response, &r.DurationMS, &r.Error); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (gl *GenerationLogger) Close() error {
	if gl == nil {
		return nil
	}
	return gl.db.Close()
}
