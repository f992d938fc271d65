package chat

import (
	"github.com/adamavenir/skein/internal/store"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	case storeEventMsg:
		return m.handleStoreEventMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTickMsg(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	return m, nil
}

func (m *Model) handleStoreEventMsg(msg storeEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		// Subscription closed; the program is on its way out.
		return m, nil
	}

	if msg.event.Kind == store.EventMember || msg.event.Kind == store.EventExternal {
		m.refreshMembers()
	}
	m.engine.OnStoreUpdated()
	if m.onThreadScreen() {
		touchesThread := msg.event.RootGUID == "" || msg.event.RootGUID == m.threadRoot
		if msg.event.Kind != store.EventMessage || touchesThread {
			m.reloadThreadMessages()
		}
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, waitStoreEvent(m.sub)
}

func (m *Model) handleSpinnerTickMsg(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}
