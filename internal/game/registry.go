package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Registry is the entity store for one game run: a key-value map of
// components per entity plus tag-set membership queries, with a signal
// dispatch table owned by the registry itself. It is created at game start,
// passed explicitly to whatever needs it, and accessed from a single
// goroutine.
type Registry struct {
	order      []string
	known      map[string]struct{}
	components map[string]map[string]any
	tags       map[string]map[string]struct{}
	subs       map[signalKey][]SlotFunc
	rng        *rand.Rand
}

type signalKey struct {
	entity string
	signal string
}

func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		known:      map[string]struct{}{},
		components: map[string]map[string]any{},
		tags:       map[string]map[string]struct{}{},
		subs:       map[signalKey][]SlotFunc{},
		rng:        rng,
	}
}

// Spawn creates an anonymous entity with a fresh id.
func (r *Registry) Spawn() string {
	id := uuid.NewString()
	r.touch(id)
	return id
}

// Entity registers a named entity (idempotent) and returns its id.
func (r *Registry) Entity(name string) string {
	r.touch(name)
	return name
}

func (r *Registry) touch(id string) {
	if _, ok := r.known[id]; ok {
		return
	}
	r.known[id] = struct{}{}
	r.order = append(r.order, id)
}

func (r *Registry) Set(entity, component string, value any) {
	r.touch(entity)
	comps, ok := r.components[entity]
	if !ok {
		comps = map[string]any{}
		r.components[entity] = comps
	}
	comps[component] = value
}

func (r *Registry) Get(entity, component string) (any, bool) {
	comps, ok := r.components[entity]
	if !ok {
		return nil, false
	}
	v, ok := comps[component]
	return v, ok
}

func (r *Registry) Tag(entity string, tags ...string) {
	r.touch(entity)
	for _, tag := range tags {
		set, ok := r.tags[tag]
		if !ok {
			set = map[string]struct{}{}
			r.tags[tag] = set
		}
		set[entity] = struct{}{}
	}
}

func (r *Registry) Untag(entity, tag string) {
	if set, ok := r.tags[tag]; ok {
		delete(set, entity)
	}
}

func (r *Registry) HasTag(entity, tag string) bool {
	set, ok := r.tags[tag]
	if !ok {
		return false
	}
	_, ok = set[entity]
	return ok
}

// AllOf returns entities carrying every given tag, in spawn order.
func (r *Registry) AllOf(tags ...string) []string {
	var out []string
	for _, entity := range r.order {
		match := true
		for _, tag := range tags {
			if !r.HasTag(entity, tag) {
				match = false
				break
			}
		}
		if match {
			out = append(out, entity)
		}
	}
	return out
}

// Rand exposes the run's seeded source for placement decisions.
func (r *Registry) Rand() *rand.Rand {
	return r.rng
}
