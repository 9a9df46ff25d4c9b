package main

import (
	"fmt"
	"os"
	"time"

	"airogue/cmd/game/ui"
	"airogue/internal/debug"
	"airogue/internal/game"
	"airogue/internal/worldgen"
)

func createApp(worldPath string, seed int64) (ui.Model, func(), error) {
	debugMode := os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
	debugLogger := debug.NewLogger(debugMode)

	world, err := worldgen.Load(worldPath)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("failed to load world: %w", err)
	}
	debugLogger.Printf("Loaded world %q with %d mechanics and %d items",
		world.Title, len(world.Mechanics.Mechanics), len(world.Items.Items))

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	registry, err := game.Project(world, seed)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("failed to project world: %w", err)
	}

	model := ui.NewModel(world, registry, debugLogger, debugMode)

	cleanup := func() {}

	return model, cleanup, nil
}
