package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	accentColor   = lipgloss.Color("111")
	titleColor    = lipgloss.Color("231")
	statusColor   = lipgloss.Color("240")
	metaColor     = lipgloss.Color("244")
	selectedBg    = lipgloss.Color("236")
	overlayBorder = lipgloss.Color("63")
)

func (m *Model) View() string {
	var body string
	if m.onThreadScreen() {
		body = m.renderThreadScreen()
	} else {
		body = m.renderListScreen()
	}
	statusLine := lipgloss.NewStyle().Foreground(statusColor).Render(m.statusLine())
	output := lipgloss.JoinVertical(lipgloss.Left, body, statusLine)
	return m.zoneManager.Scan(output)
}

func (m *Model) statusLine() string {
	left := m.breadcrumb()
	if m.status != "" {
		left = m.status + " · " + left
	}
	right := "j/k move · enter open · f filter · q quit"
	if m.onThreadScreen() {
		right = "esc back · y yank id · q quit"
	}
	return alignStatusLine(left, right, m.width)
}

func alignStatusLine(left, right string, width int) string {
	if width <= 0 || right == "" {
		return left
	}
	leftWidth := ansi.StringWidth(left)
	rightWidth := ansi.StringWidth(right)
	if leftWidth+rightWidth+1 > width {
		return left
	}
	spaces := width - leftWidth - rightWidth
	return left + strings.Repeat(" ", spaces) + right
}

func (m *Model) breadcrumb() string {
	room := m.roomName
	if room == "" {
		room = "room"
	}
	if m.onThreadScreen() {
		return room + " ❯ " + m.threadRoot
	}
	return room + " ❯ threads"
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight() - 1
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if m.onThreadScreen() {
		m.viewport.SetContent(m.renderThreadMessages())
	}
}

// bodyHeight is the space left for the screen body above the status line.
func (m *Model) bodyHeight() int {
	height := m.height - 1
	if height < 1 {
		height = 1
	}
	return height
}
