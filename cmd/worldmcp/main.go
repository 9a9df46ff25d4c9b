// MCP stdio server over a generated world artifact, for wiring the world
// into LLM agents and editors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"airogue/internal/mcp"
	"airogue/internal/worldgen"
)

func main() {
	worldPath := flag.String("world", "world_model.json", "path to a generated world artifact")
	flag.Parse()

	world, err := worldgen.Load(*worldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load world: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewWorldServer(world)
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
