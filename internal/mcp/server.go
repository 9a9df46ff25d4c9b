// Package mcp exposes a generated world artifact to LLM agents over the
// Model Context Protocol. The server is read-only: tools inspect the world
// model, they never mutate it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"airogue/internal/worldgen"
)

const (
	serverName    = "airogue-world"
	serverVersion = "v1.0.0"
)

// WorldServer serves tools over a loaded world model.
type WorldServer struct {
	world  *worldgen.WorldModel
	server *mcp.Server
}

type describeItemParams struct {
	Name string `json:"name"`
}

func NewWorldServer(world *worldgen.WorldModel) *WorldServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	w := &WorldServer{world: world, server: server}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_world_state",
		Description: "Get the full generated world model as JSON",
	}, w.getWorldState)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_mechanics",
		Description: "List the world's game mechanics with descriptions",
	}, w.listMechanics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_items",
		Description: "List the world's items with their symbols and owning mechanics",
	}, w.listItems)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_item",
		Description: "Describe a single item by name",
	}, w.describeItem)

	return w
}

// Run serves the tools over stdio until the context is cancelled.
func (w *WorldServer) Run(ctx context.Context) error {
	return w.server.Run(ctx, mcp.NewStdioTransport())
}

func (w *WorldServer) getWorldState(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[struct{}]) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(w.world, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize world state: %w", err)
	}
	return textResult(string(data)), nil
}

func (w *WorldServer) listMechanics(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[struct{}]) (*mcp.CallToolResultFor[any], error) {
	var b strings.Builder
	for _, m := range w.world.Mechanics.Mechanics {
		fmt.Fprintf(&b, "%s: %s\n", m.Name, m.Description)
	}
	return textResult(b.String()), nil
}

func (w *WorldServer) listItems(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[struct{}]) (*mcp.CallToolResultFor[any], error) {
	if len(w.world.Items.Items) == 0 {
		return textResult("The world has no items."), nil
	}
	var b strings.Builder
	for _, item := range w.world.Items.Items {
		fmt.Fprintf(&b, "[%s] %s (mechanic: %s)\n", item.Symbol, item.Name, item.Mechanic)
	}
	return textResult(b.String()), nil
}

func (w *WorldServer) describeItem(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[describeItemParams]) (*mcp.CallToolResultFor[any], error) {
	name := strings.TrimSpace(params.Arguments.Name)
	for _, item := range w.world.Items.Items {
		if !strings.EqualFold(item.Name, name) {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s]\n%s\nMechanic: %s\n", item.Name, item.Symbol, item.Description, item.Mechanic)
		if item.Rarity != "" {
			fmt.Fprintf(&b, "Rarity: %s\n", item.Rarity)
		}
		for k, v := range item.Properties {
			fmt.Fprintf(&b, "%s: %v\n", k, v)
		}
		return textResult(b.String()), nil
	}

	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("no item named %q", name)}},
	}, nil
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
