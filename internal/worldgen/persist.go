package worldgen

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the world artifact as indented JSON. The layout (top-level
// theme/title/plot/mechanics/items/global_entities keys, with mechanics and
// items as single-array wrapper objects) is the contract consumed by world
// projection and must stay stable across versions.
func Save(path string, w *WorldModel) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal world model: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write world model: %w", err)
	}
	return nil
}

// Load reads and validates a world artifact. Validation includes the
// referential-integrity pass, so a corrupt artifact never reaches the game.
func Load(path string) (*WorldModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world model: %w", err)
	}

	var w WorldModel
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse world model: %w", err)
	}
	if w.GlobalEntities == nil {
		w.GlobalEntities = map[string]EntityTemplate{}
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world model: %w", err)
	}

	return &w, nil
}
