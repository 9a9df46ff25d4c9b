package game

import (
	"fmt"
	"math/rand"

	"airogue/internal/worldgen"
)

const scatteredItems = 20

// Project converts a generated world model into live entities: the player,
// a scattering of generated items on the map, and the model's global
// entities with their reactive bindings resolved against the fixed slot
// registry. The returned registry is owned by the caller.
func Project(w *worldgen.WorldModel, seed int64) (*Registry, error) {
	rng := rand.New(rand.NewSource(seed))
	r := NewRegistry(rng)

	r.Entity(RootEntity)
	r.Set(RootEntity, CompStatusText, "")

	player := r.Spawn()
	r.Set(player, CompPosition, Position{X: 5, Y: 5})
	r.Set(player, CompGlyph, Glyph{Ch: '@'})
	r.Set(player, CompGold, 0)
	r.Tag(player, IsPlayer, IsActor, OnMap)

	if len(w.Items.Items) > 0 {
		for i := 0; i < scatteredItems; i++ {
			model := w.Items.Items[rng.Intn(len(w.Items.Items))]
			item := r.Spawn()
			r.Set(item, CompPosition, Position{X: rng.Intn(MapWidth), Y: rng.Intn(MapHeight)})
			r.Set(item, CompGlyph, Glyph{Ch: rune(model.Symbol[0]), Color: "11"})
			r.Set(item, CompName, model.Name)
			r.Set(item, CompDescription, model.Description)
			r.Tag(item, IsItem, OnMap)
		}
	}

	for name, template := range w.GlobalEntities {
		if err := projectEntity(r, name, template); err != nil {
			return nil, err
		}
	}

	// The generated game entity announces the run once everything is wired.
	if _, ok := w.GlobalEntities[GameEntity]; ok {
		if err := r.Emit(GameEntity, "game_start", nil); err != nil {
			return nil, fmt.Errorf("game_start: %w", err)
		}
	}

	return r, nil
}

func projectEntity(r *Registry, name string, template worldgen.EntityTemplate) error {
	entity := r.Entity(name)
	for _, comp := range template.Components {
		values := make(map[string]any, len(comp.Attributes))
		for k, v := range comp.Attributes {
			values[k] = v
		}
		r.Set(entity, comp.Name, &Attributes{Name: comp.Name, Values: values})

		for _, binding := range comp.Bindings {
			fn, err := ResolveAction(r, binding.Action)
			if err != nil {
				return fmt.Errorf("entity %q component %q: %w", name, comp.Name, err)
			}
			r.Subscribe(entity, binding.Signal, fn)
		}
	}
	return nil
}
