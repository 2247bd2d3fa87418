package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// runStatusWatch starts the live status view.
func runStatusWatch(container *Container) error {
	program := tea.NewProgram(newWatchModel(container), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("status watch failed: %w", err)
	}
	return nil
}

const watchRefreshRate = 2 * time.Second

// watchModel holds the state for the live status view.
type watchModel struct {
	container  *Container
	statuses   []hostStatus
	paused     bool
	lastUpdate time.Time
}

type watchTickMsg time.Time

type statusesMsg []hostStatus

func newWatchModel(container *Container) watchModel {
	return watchModel{
		container:  container,
		statuses:   collectStatuses(container.Config),
		lastUpdate: time.Now(),
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m watchModel) tickCmd() tea.Cmd {
	return tea.Tick(watchRefreshRate, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) refreshCmd() tea.Cmd {
	cfg := m.container.Config
	return func() tea.Msg {
		return statusesMsg(collectStatuses(cfg))
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			return m, nil
		case "r":
			return m, m.refreshCmd()
		}

	case watchTickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.tickCmd(), m.refreshCmd())

	case statusesMsg:
		m.statuses = msg
		m.lastUpdate = time.Now()
		return m, nil
	}

	return m, nil
}

func (m watchModel) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Render("Plugforge Status")

	state := "LIVE"
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	if m.paused {
		state = "PAUSED"
		stateStyle = stateStyle.Foreground(lipgloss.Color("196"))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		"  ",
		statusDimStyle.Render(fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05"))),
		"  ",
		stateStyle.Render(state),
	)

	footer := statusDimStyle.Render("Controls: [Space] Pause/Resume | [r] Refresh | [q] Quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		renderStatusTable(m.statuses),
		footer,
	)
}
