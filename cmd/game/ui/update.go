package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"airogue/internal/game"
)

// moveKeys maps roguelike movement keys (vi keys plus arrows, with the
// classic diagonals) to map deltas.
var moveKeys = map[string][2]int{
	"h":     {-1, 0},
	"l":     {1, 0},
	"k":     {0, -1},
	"j":     {0, 1},
	"y":     {-1, -1},
	"u":     {1, -1},
	"b":     {-1, 1},
	"n":     {1, 1},
	"left":  {-1, 0},
	"right": {1, 0},
	"up":    {0, -1},
	"down":  {0, 1},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, messagePanelHeight)
			m.viewport.SetContent(joinMessages(m.messages))
			m.viewport.GotoBottom()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = messagePanelHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit

		default:
			if m.gameOver {
				return m, nil
			}
			if delta, ok := moveKeys[key]; ok {
				m.movePlayer(delta[0], delta[1])
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) movePlayer(dx, dy int) {
	players := m.registry.AllOf(game.IsPlayer)
	if len(players) == 0 {
		return
	}
	player := players[0]

	v, ok := m.registry.Get(player, game.CompPosition)
	if !ok {
		return
	}
	pos := v.(game.Position)

	pos.X = clamp(pos.X+dx, 0, game.MapWidth-1)
	pos.Y = clamp(pos.Y+dy, 0, game.MapHeight-1)
	m.registry.Set(player, game.CompPosition, pos)

	m.turns++
	if err := m.registry.Emit(game.GameEntity, "tick", map[string]any{"turn": m.turns}); err != nil {
		m.logger.Printf("tick signal: %v", err)
		if m.debug {
			m.pushMessage("[DEBUG] " + err.Error())
		}
	}

	m.status = m.describeTile(pos)

	if over, _ := m.registry.Get(game.RootEntity, game.CompGameOver); over == true {
		m.gameOver = true
		m.pushMessage("The game is over. Press q to quit.")
	}
}

// describeTile reports what the player is standing on, if anything.
func (m *Model) describeTile(pos game.Position) string {
	for _, item := range m.registry.AllOf(game.IsItem, game.OnMap) {
		v, ok := m.registry.Get(item, game.CompPosition)
		if !ok || v.(game.Position) != pos {
			continue
		}
		name, _ := m.registry.Get(item, game.CompName)
		desc, _ := m.registry.Get(item, game.CompDescription)
		return fmt.Sprintf("You stand on %v: %v", name, desc)
	}
	return ""
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func joinMessages(messages []string) string {
	return strings.Join(messages, "\n")
}
