package chat

import (
	"github.com/adamavenir/skein/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

type storeEventMsg struct {
	event store.Event
	ok    bool
}

// waitStoreEvent blocks on the subscription channel and surfaces the next
// store event as a tea.Msg. The update loop re-arms it after delivery;
// a closed channel arrives with ok=false and is not re-armed.
func waitStoreEvent(sub *store.Subscription) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.C
		return storeEventMsg{event: event, ok: ok}
	}
}
