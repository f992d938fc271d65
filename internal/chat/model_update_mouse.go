package chat

import (
	"time"

	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

const doubleClickInterval = 400 * time.Millisecond

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Shift {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if handled, cmd := m.handleMouseClick(msg); handled {
			return m, cmd
		}
	}

	isWheelUp := msg.Button == tea.MouseButtonWheelUp
	isWheelDown := msg.Button == tea.MouseButtonWheelDown
	if isWheelUp || isWheelDown {
		if m.onThreadScreen() {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if isWheelUp {
			m.moveCursor(-1)
		} else {
			m.moveCursor(1)
		}
	}
	return m, nil
}

func (m *Model) handleMouseClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	if m.onThreadScreen() {
		return false, nil
	}

	if _, open := m.state.(threadlist.ShowingFilterOptions); open {
		if m.zoneManager.Get("filter-all").InBounds(msg) {
			m.engine.SelectFilter(types.FilterAll)
			_, cmd := m.afterEngineCall()
			return true, cmd
		}
		if m.zoneManager.Get("filter-mine").InBounds(msg) {
			m.engine.SelectFilter(types.FilterMine)
			_, cmd := m.afterEngineCall()
			return true, cmd
		}
		return false, nil
	}

	for index, row := range m.engine.Rows() {
		if !m.zoneManager.Get("thread-" + row.RootGUID).InBounds(msg) {
			continue
		}
		now := time.Now()
		isDoubleClick := m.lastClickGUID == row.RootGUID && now.Sub(m.lastClickAt) <= doubleClickInterval
		m.lastClickGUID = row.RootGUID
		m.lastClickAt = now

		if isDoubleClick {
			m.lastClickGUID = ""
			m.lastClickAt = time.Time{}
			m.engine.SelectThread(index)
			_, cmd := m.afterEngineCall()
			return true, cmd
		}
		m.cursor = index
		return true, nil
	}
	return false, nil
}
