package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"airogue/internal/debug"
	"airogue/internal/game"
	"airogue/internal/worldgen"
)

const messagePanelHeight = 6

type Model struct {
	world    *worldgen.WorldModel
	registry *game.Registry
	logger   *debug.Logger
	debug    bool

	messages []string
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	turns    int
	status   string
	gameOver bool
}

func NewModel(world *worldgen.WorldModel, registry *game.Registry, logger *debug.Logger, debugMode bool) Model {
	messages := []string{
		fmt.Sprintf("Welcome to %s.", world.Title),
	}
	if debugMode {
		messages = append(messages,
			fmt.Sprintf("[DEBUG] %d mechanics, %d items, %d global entities",
				len(world.Mechanics.Mechanics), len(world.Items.Items), len(world.GlobalEntities)))
	}

	return Model{
		world:    world,
		registry: registry,
		logger:   logger,
		debug:    debugMode,
		messages: messages,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) pushMessage(msg string) {
	m.messages = append(m.messages, msg)
	if m.ready {
		m.viewport.SetContent(joinMessages(m.messages))
		m.viewport.GotoBottom()
	}
}
