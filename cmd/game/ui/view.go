package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airogue/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	mapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	gameOverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.world.Title+" — "+m.world.Theme) + "\n")
	b.WriteString(mapStyle.Render(m.renderMap()) + "\n")

	if m.gameOver {
		b.WriteString(gameOverStyle.Render("GAME OVER") + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(helpStyle.Render("move: hjkl/yubn/arrows · quit: q"))

	return b.String()
}

// renderMap paints the playfield: floor dots, on-map entities by glyph,
// player drawn last so it always wins the tile.
func (m Model) renderMap() string {
	grid := make([][]string, game.MapHeight)
	for y := range grid {
		grid[y] = make([]string, game.MapWidth)
		for x := range grid[y] {
			grid[y][x] = "."
		}
	}

	draw := func(entity string) {
		v, ok := m.registry.Get(entity, game.CompPosition)
		if !ok {
			return
		}
		pos := v.(game.Position)
		if pos.X < 0 || pos.X >= game.MapWidth || pos.Y < 0 || pos.Y >= game.MapHeight {
			return
		}
		g, ok := m.registry.Get(entity, game.CompGlyph)
		if !ok {
			return
		}
		glyph := g.(game.Glyph)
		cell := string(glyph.Ch)
		if glyph.Color != "" {
			cell = lipgloss.NewStyle().Foreground(lipgloss.Color(glyph.Color)).Render(cell)
		}
		grid[pos.Y][pos.X] = cell
	}

	for _, entity := range m.registry.AllOf(game.OnMap) {
		if !m.registry.HasTag(entity, game.IsPlayer) {
			draw(entity)
		}
	}
	for _, player := range m.registry.AllOf(game.IsPlayer) {
		draw(player)
	}

	rows := make([]string, game.MapHeight)
	for y, row := range grid {
		rows[y] = strings.Join(row, "")
	}
	return strings.Join(rows, "\n")
}
