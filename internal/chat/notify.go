package chat

import (
	"strings"

	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/gen2brain/beeep"
)

// noticeNewThreads compares fresh rows against the threads already seen
// and raises a desktop notification for new ones started by someone else.
// The first load only seeds the known set.
func (m *Model) noticeNewThreads(rows []threadlist.RowViewModel) {
	if !m.seededKnown {
		for _, row := range rows {
			m.knownThreads[row.RootGUID] = true
		}
		m.seededKnown = true
		return
	}
	for _, row := range rows {
		if m.knownThreads[row.RootGUID] {
			continue
		}
		m.knownThreads[row.RootGUID] = true
		if row.Participated {
			continue
		}
		m.sendThreadNotification(row)
	}
}

func (m *Model) sendThreadNotification(row threadlist.RowViewModel) {
	title := "skein"
	if m.roomName != "" {
		title = "skein · " + m.roomName
	}
	body := row.RootText
	if row.RootSender != "" {
		body = row.RootSender + ": " + body
	}
	_ = beeep.Notify(title, truncateNotification(body, 100), "")
}

func truncateNotification(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
