package game

// Map dimensions for the playfield entities are scattered across.
const (
	MapWidth  = 40
	MapHeight = 20
)

// Component names.
const (
	CompPosition    = "position"
	CompGlyph       = "glyph"
	CompName        = "name"
	CompDescription = "description"
	CompGold        = "gold"
	CompStatusText  = "status_text"
	CompGameOver    = "game_over"
)

// Tags.
const (
	IsPlayer = "is_player"
	IsActor  = "is_actor"
	IsItem   = "is_item"
	OnMap    = "on_map"
)

// RootEntity carries run-wide components like the status line.
const RootEntity = "root"

// GameEntity is the well-known name of the generated global game entity.
const GameEntity = "Game"

type Position struct {
	X int
	Y int
}

type Glyph struct {
	Ch rune
	// Color is a lipgloss-compatible ANSI color string, empty for default.
	Color string
}

// Attributes is a projected generated component: a named bag of mutable
// attributes that slots operate on.
type Attributes struct {
	Name   string
	Values map[string]any
}
