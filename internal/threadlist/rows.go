package threadlist

import (
	"fmt"

	"github.com/adamavenir/skein/internal/types"
)

// RowViewModel is a fully formatted thread row. Fields may be empty when
// the backing data is unavailable; an empty field renders as blank.
type RowViewModel struct {
	RootGUID     string
	RootSender   string
	RootText     string
	LastSender   string
	LastText     string
	LastActive   string
	ReplySummary string
	Participated bool
}

// buildRows formats one row per thread. Threads with missing root or last
// messages still produce a row with the affected fields left empty.
func buildRows(threads []types.Thread, members map[string]string, fm Formatter) []RowViewModel {
	rows := make([]RowViewModel, 0, len(threads))
	for _, th := range threads {
		row := RowViewModel{
			RootGUID:     th.RootGUID,
			ReplySummary: replySummary(th.ReplyCount),
			Participated: th.Participated,
		}
		if th.RootMessage != nil {
			row.RootSender = fm.DisplayName(th.RootMessage.Sender, members)
			if text, ok := fm.Format(th.RootMessage, members); ok {
				row.RootText = text
			}
		}
		if th.LastMessage != nil {
			row.LastSender = fm.DisplayName(th.LastMessage.Sender, members)
			if text, ok := fm.Format(th.LastMessage, members); ok {
				row.LastText = text
			}
		}
		if active, ok := fm.FormatTime(th.LastTS); ok {
			row.LastActive = active
		}
		rows = append(rows, row)
	}
	return rows
}

func replySummary(count int) string {
	if count == 1 {
		return "1 reply"
	}
	return fmt.Sprintf("%d replies", count)
}
