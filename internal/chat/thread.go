package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/nav"
	"github.com/adamavenir/skein/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m *Model) openThread(rootGUID string) {
	m.threadRoot = rootGUID
	m.stack.Push(nav.Screen{Kind: nav.ScreenThread, ThreadRoot: rootGUID, RoomGUID: m.roomGUID})
	m.status = ""
	m.loadThreadMessages()
	m.resize()
	m.viewport.GotoBottom()
}

func (m *Model) popThreadScreen() {
	m.stack.Pop()
	m.threadRoot = ""
	m.threadMsgs = nil
	m.status = ""
}

func (m *Model) loadThreadMessages() {
	ctx := context.Background()
	msgs, err := m.store.ThreadMessages(ctx, m.threadRoot)
	if err != nil {
		m.status = err.Error()
		return
	}
	if count, err := m.store.MessageCount(ctx); err == nil {
		m.messageCount = count
	}
	m.threadMsgs = msgs
	m.viewport.SetContent(m.renderThreadMessages())
}

func (m *Model) reloadThreadMessages() {
	wasAtBottom := m.viewport.AtBottom()
	m.loadThreadMessages()
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderThreadScreen() string {
	title := lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(" " + m.threadRoot + " ")
	count := lipgloss.NewStyle().Foreground(metaColor).Render("· " + messageCountLabel(len(m.threadMsgs)))
	header := title + count
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
}

func (m *Model) renderThreadMessages() string {
	chunks := make([]string, 0, len(m.threadMsgs))
	for _, msg := range m.threadMsgs {
		chunks = append(chunks, m.formatThreadMessage(msg))
	}
	return strings.Join(chunks, "\n\n")
}

func (m *Model) formatThreadMessage(msg types.Message) string {
	width := m.width

	if msg.Type == types.MessageTypeEvent {
		body := msg.Body
		if width > 0 {
			body = ansi.Wrap(body, width, "")
		}
		return lipgloss.NewStyle().Foreground(metaColor).Italic(true).Render(body)
	}

	color := colorForSender(m.formatter.DisplayName(msg.Sender, m.members), m.colorMap)
	byline := lipgloss.NewStyle().Foreground(color).Bold(true).Render("@" + m.formatter.DisplayName(msg.Sender, m.members))
	if when, ok := m.formatter.FormatTime(msg.TS); ok {
		byline += lipgloss.NewStyle().Foreground(metaColor).Render(" · " + when)
	}

	body := highlightCodeBlocks(msg.Body)
	if width > 0 {
		body = ansi.Wrap(body, width, "")
	}

	editedSuffix := ""
	if msg.EditedAt != nil {
		editedSuffix = " (edited)"
	}
	prefixLength := core.GetDisplayPrefixLength(m.messageCount)
	footer := lipgloss.NewStyle().Foreground(color).Faint(true).Render("#" + core.GetGUIDPrefix(msg.GUID, prefixLength) + editedSuffix)

	return byline + "\n" + body + "\n" + footer
}

func messageCountLabel(count int) string {
	if count == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", count)
}
