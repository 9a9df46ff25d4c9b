package worldgen

import (
	"fmt"
	"strings"
)

// ThemeBatch is one theme-generation response: exactly ten distinct
// candidate themes, of which the generator selects one per run.
type ThemeBatch struct {
	Themes []string `json:"themes"`
}

const themeBatchSize = 10

func (tb ThemeBatch) Validate() error {
	if len(tb.Themes) != themeBatchSize {
		return &SchemaViolation{Field: "themes", Constraint: fmt.Sprintf("exactly %d themes required, got %d", themeBatchSize, len(tb.Themes))}
	}
	seen := make(map[string]struct{}, len(tb.Themes))
	for _, theme := range tb.Themes {
		if strings.TrimSpace(theme) == "" {
			return &SchemaViolation{Field: "themes", Constraint: "themes must be non-empty"}
		}
		if _, dup := seen[theme]; dup {
			return &SchemaViolation{Field: "themes", Constraint: fmt.Sprintf("duplicate theme %q", theme)}
		}
		seen[theme] = struct{}{}
	}
	return nil
}

type Mechanic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (m Mechanic) String() string {
	return m.Name + ": " + m.Description
}

// Mechanics wraps the mechanic list in an object so the serialized artifact
// can grow metadata fields without breaking the layout.
type Mechanics struct {
	Mechanics []Mechanic `json:"mechanics"`
}

const (
	minMechanics = 2
	maxMechanics = 7
)

// Validate enforces the generation contract: 2-7 mechanics, unique names.
// The assembled world is checked with the looser validateAssembled, because
// the synthetic fallback path deliberately yields a single mechanic.
func (ms Mechanics) Validate() error {
	if len(ms.Mechanics) < minMechanics || len(ms.Mechanics) > maxMechanics {
		return &SchemaViolation{Field: "mechanics", Constraint: fmt.Sprintf("%d-%d mechanics required, got %d", minMechanics, maxMechanics, len(ms.Mechanics))}
	}
	return ms.validateNames()
}

func (ms Mechanics) validateNames() error {
	seen := make(map[string]struct{}, len(ms.Mechanics))
	for _, m := range ms.Mechanics {
		if strings.TrimSpace(m.Name) == "" {
			return &SchemaViolation{Field: "mechanics.name", Constraint: "mechanic name must be non-empty"}
		}
		if _, dup := seen[m.Name]; dup {
			return &SchemaViolation{Field: "mechanics.name", Constraint: fmt.Sprintf("duplicate mechanic name %q", m.Name)}
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

func (ms Mechanics) validateAssembled() error {
	if len(ms.Mechanics) == 0 {
		return &SchemaViolation{Field: "mechanics", Constraint: "at least one mechanic required"}
	}
	return ms.validateNames()
}

func (ms Mechanics) String() string {
	lines := make([]string, 0, len(ms.Mechanics))
	for _, m := range ms.Mechanics {
		lines = append(lines, "- "+m.String())
	}
	return strings.Join(lines, "\n")
}

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

func (r Rarity) Valid() bool {
	switch r {
	case "", RarityCommon, RarityUncommon, RarityRare:
		return true
	}
	return false
}

// Item is a generated game item. Mechanic references the supporting
// mechanic by name; Rarity and Properties are optional extension fields.
type Item struct {
	Name        string            `json:"name"`
	Symbol      string            `json:"symbol"`
	Description string            `json:"description"`
	Mechanic    string            `json:"mechanic"`
	Rarity      Rarity            `json:"rarity,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return &SchemaViolation{Field: "items.name", Constraint: "item name must be non-empty"}
	}
	if len(i.Symbol) != 1 || i.Symbol[0] > 127 {
		return &SchemaViolation{Field: "items.symbol", Constraint: fmt.Sprintf("item %q symbol must be exactly one ASCII character, got %q", i.Name, i.Symbol)}
	}
	if strings.TrimSpace(i.Mechanic) == "" {
		return &SchemaViolation{Field: "items.mechanic", Constraint: fmt.Sprintf("item %q must name its supporting mechanic", i.Name)}
	}
	if !i.Rarity.Valid() {
		return &SchemaViolation{Field: "items.rarity", Constraint: fmt.Sprintf("item %q rarity %q is not one of common/uncommon/rare", i.Name, i.Rarity)}
	}
	return nil
}

func (i Item) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Symbol, i.Name, i.Description)
}

type Items struct {
	Items []Item `json:"items"`
}

const maxItemsPerMechanic = 3

// Validate checks one per-mechanic batch: 0-3 items, each well formed,
// names unique within the batch. Zero items is valid for a mechanic with no
// natural item tie-in.
func (it Items) Validate() error {
	if len(it.Items) > maxItemsPerMechanic {
		return &SchemaViolation{Field: "items", Constraint: fmt.Sprintf("at most %d items per mechanic, got %d", maxItemsPerMechanic, len(it.Items))}
	}
	return it.validateNames()
}

func (it Items) validateNames() error {
	seen := make(map[string]struct{}, len(it.Items))
	for _, item := range it.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := seen[item.Name]; dup {
			return &SchemaViolation{Field: "items.name", Constraint: fmt.Sprintf("duplicate item name %q", item.Name)}
		}
		seen[item.Name] = struct{}{}
	}
	return nil
}

func (it Items) String() string {
	lines := make([]string, 0, len(it.Items))
	for _, item := range it.Items {
		lines = append(lines, "- "+item.String())
	}
	return strings.Join(lines, "\n")
}

// ActionRef is a symbolic action carried in serialized data. It is resolved
// against a fixed registry of named operations at load time, never at parse
// time.
type ActionRef struct {
	Kind string         `json:"kind"`
	Args map[string]any `json:"args,omitempty"`
}

// Binding pairs a signal name with the action fired when it is emitted.
type Binding struct {
	Signal string    `json:"signal"`
	Action ActionRef `json:"action"`
}

type ComponentTemplate struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Bindings   []Binding      `json:"bindings,omitempty"`
}

type EntityTemplate struct {
	Name       string              `json:"name"`
	Components []ComponentTemplate `json:"components,omitempty"`
}

// WorldModel is the complete generated-content artifact for one game run.
// It is immutable after assembly: regeneration creates a new WorldModel.
type WorldModel struct {
	Theme          string                    `json:"theme"`
	Title          string                    `json:"title"`
	Plot           string                    `json:"plot"`
	Mechanics      Mechanics                 `json:"mechanics"`
	Items          Items                     `json:"items"`
	GlobalEntities map[string]EntityTemplate `json:"global_entities"`
}

// Validate runs the schema predicates plus the referential-integrity pass:
// every item must reference a mechanic present in the same model.
func (w *WorldModel) Validate() error {
	if strings.TrimSpace(w.Theme) == "" {
		return &SchemaViolation{Field: "theme", Constraint: "theme must be non-empty"}
	}
	if strings.TrimSpace(w.Title) == "" {
		return &SchemaViolation{Field: "title", Constraint: "title must be non-empty"}
	}
	if err := w.Mechanics.validateAssembled(); err != nil {
		return err
	}
	if err := w.Items.validateNames(); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(w.Mechanics.Mechanics))
	for _, m := range w.Mechanics.Mechanics {
		known[m.Name] = struct{}{}
	}
	for _, item := range w.Items.Items {
		if _, ok := known[item.Mechanic]; !ok {
			return &IntegrityError{Item: item.Name, Mechanic: item.Mechanic}
		}
	}
	return nil
}

// Summary renders the world the way the generate CLI prints it.
func (w *WorldModel) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s\n\n", w.Theme)
	fmt.Fprintf(&b, "Title: %s\n\n", w.Title)
	fmt.Fprintf(&b, "Plot: %s\n\n", w.Plot)
	b.WriteString("Game mechanics:\n")
	b.WriteString(w.Mechanics.String())
	b.WriteString("\n\nItems:\n")
	b.WriteString(w.Items.String())
	b.WriteString("\n")
	return b.String()
}
