package chat

import (
	"strings"

	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) renderListScreen() string {
	header := m.renderListHeader()
	var body string
	switch st := m.state.(type) {
	case threadlist.Idle, threadlist.Loading:
		body = m.renderLoading()
	case threadlist.Empty:
		body = m.renderEmpty(st)
	case threadlist.ShowingFilterOptions:
		body = m.renderFilterPicker(st)
	default:
		body = m.renderRows()
	}

	bodyHeight := m.bodyHeight() - 1
	if bodyHeight > 0 {
		body = lipgloss.NewStyle().Height(bodyHeight).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m *Model) renderListHeader() string {
	label := "all threads"
	if m.engine.Filter() == types.FilterMine {
		label = "my threads"
	}
	title := lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(" " + m.roomName + " ")
	filter := lipgloss.NewStyle().Foreground(metaColor).Render("· " + label)
	return title + filter
}

func (m *Model) renderLoading() string {
	return "\n " + m.spinner.View() + " loading threads"
}

func (m *Model) renderEmpty(st threadlist.Empty) string {
	title := lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render(st.Reason.Title)
	body := lipgloss.NewStyle().Foreground(metaColor).Render(st.Reason.Body)
	return "\n " + title + "\n " + body
}

func (m *Model) renderRows() string {
	rows := m.engine.Rows()
	chunks := make([]string, 0, len(rows))
	for index, row := range rows {
		chunks = append(chunks, m.renderRow(index, row))
	}
	return strings.Join(chunks, "\n")
}

func (m *Model) renderRow(index int, row threadlist.RowViewModel) string {
	selected := index == m.cursor
	senderColor := colorForSender(rowAuthorKey(row), m.colorMap)

	marker := "  "
	if row.Participated {
		marker = "● "
	}
	markerStyle := lipgloss.NewStyle().Foreground(accentColor)
	senderStyle := lipgloss.NewStyle().Foreground(senderColor).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(titleColor)
	if selected {
		markerStyle = markerStyle.Background(selectedBg)
		senderStyle = senderStyle.Background(selectedBg)
		textStyle = textStyle.Background(selectedBg)
	}

	first := markerStyle.Render(marker)
	if row.RootSender != "" {
		first += senderStyle.Render(row.RootSender) + textStyle.Render(": ")
	}
	first += textStyle.Render(row.RootText)

	meta := make([]string, 0, 3)
	meta = append(meta, row.ReplySummary)
	if row.LastText != "" {
		last := row.LastText
		if row.LastSender != "" {
			last = row.LastSender + ": " + last
		}
		meta = append(meta, truncateLine(last, 60))
	}
	if row.LastActive != "" {
		meta = append(meta, row.LastActive)
	}
	second := lipgloss.NewStyle().Foreground(metaColor).Render("  " + strings.Join(meta, " · "))

	block := first + "\n" + second
	return m.zoneManager.Mark("thread-"+row.RootGUID, block)
}

func (m *Model) renderFilterPicker(st threadlist.ShowingFilterOptions) string {
	options := []struct {
		key    string
		label  string
		filter types.ThreadFilter
		zone   string
	}{
		{"a", "all threads", types.FilterAll, "filter-all"},
		{"m", "my threads", types.FilterMine, "filter-mine"},
	}

	lines := make([]string, 0, len(options)+1)
	lines = append(lines, lipgloss.NewStyle().Foreground(titleColor).Bold(true).Render("show"))
	for index, opt := range options {
		style := lipgloss.NewStyle().Foreground(metaColor)
		if index == m.filterPick {
			style = style.Foreground(titleColor).Background(selectedBg).Bold(true)
		}
		active := " "
		if st.Active == opt.filter {
			active = "·"
		}
		line := style.Render(" " + active + " " + opt.key + "  " + opt.label + " ")
		lines = append(lines, m.zoneManager.Mark(opt.zone, line))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(overlayBorder).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))

	height := m.bodyHeight() - 1
	if m.width > 0 && height > 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func truncateLine(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// rowAuthorKey picks the identity a row is colored by.
func rowAuthorKey(row threadlist.RowViewModel) string {
	if row.RootSender != "" {
		return row.RootSender
	}
	return row.LastSender
}
