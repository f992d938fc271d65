package chat

import (
	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.onThreadScreen() {
		return m.handleThreadScreenKeys(msg)
	}
	if _, ok := m.state.(threadlist.ShowingFilterOptions); ok {
		return m.handleFilterPickerKeys(msg)
	}
	return m.handleListKeys(msg)
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j":
		m.moveCursor(1)
		return m, nil
	case "k":
		m.moveCursor(-1)
		return m, nil
	case "f":
		m.openFilterPicker()
		return m, nil
	case "r":
		m.engine.LoadData(true)
		return m.afterEngineCall()
	case "y":
		m.yankSelectedThread()
		return m, nil
	case "q":
		return m, tea.Quit
	}

	switch msg.Type {
	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyEnter:
		m.engine.SelectThread(m.cursor)
		return m.afterEngineCall()
	case tea.KeyEsc:
		m.engine.Cancel()
		return m.afterEngineCall()
	}
	return m, nil
}

func (m *Model) handleFilterPickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		m.engine.SelectFilter(types.FilterAll)
		return m.afterEngineCall()
	case "m":
		m.engine.SelectFilter(types.FilterMine)
		return m.afterEngineCall()
	case "j":
		m.filterPick = 1
		return m, nil
	case "k":
		m.filterPick = 0
		return m, nil
	case "q":
		return m, tea.Quit
	}

	switch msg.Type {
	case tea.KeyDown:
		m.filterPick = 1
		return m, nil
	case tea.KeyUp:
		m.filterPick = 0
		return m, nil
	case tea.KeyEnter:
		m.engine.SelectFilter(m.pickedFilter())
		return m.afterEngineCall()
	case tea.KeyEsc:
		// Dismiss by re-selecting the active filter; reselect reloads.
		m.engine.SelectFilter(m.engine.Filter())
		return m.afterEngineCall()
	}
	return m, nil
}

func (m *Model) handleThreadScreenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.yankThreadRoot()
		return m, nil
	case "q":
		return m, tea.Quit
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.popThreadScreen()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// afterEngineCall finishes an update that called into the engine: a
// Cancelled handoff during the call quits, and a Loading park keeps the
// spinner ticking.
func (m *Model) afterEngineCall() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}
	if _, ok := m.state.(threadlist.Loading); ok {
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	rows := m.engine.Rows()
	if len(rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
}

func (m *Model) openFilterPicker() {
	if m.engine.Filter() == types.FilterMine {
		m.filterPick = 1
	} else {
		m.filterPick = 0
	}
	m.engine.ShowFilterOptions()
}

func (m *Model) pickedFilter() types.ThreadFilter {
	if m.filterPick == 1 {
		return types.FilterMine
	}
	return types.FilterAll
}

func (m *Model) yankSelectedThread() {
	rows := m.engine.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return
	}
	guid := rows[m.cursor].RootGUID
	if err := copyToClipboard(guid); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied " + guid
}

func (m *Model) yankThreadRoot() {
	if m.threadRoot == "" {
		return
	}
	if err := copyToClipboard(m.threadRoot); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "copied " + m.threadRoot
}
