// Roguelike client for generated worlds. Loads a world artifact produced by
// cmd/generate, projects it into live entities, and runs a Bubble Tea TUI.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	worldPath := flag.String("world", "world_model.json", "path to a generated world artifact")
	seed := flag.Int64("seed", 0, "placement seed (0 picks one from the clock)")
	flag.Parse()

	model, cleanup, err := createApp(*worldPath, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
