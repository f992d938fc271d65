// Package nav carries navigation intents between view engines and the
// screen coordinator.
package nav

// Handoff receives the outbound navigation events of a view engine. The
// engine never calls back into a screen; these three notifications are its
// only outward edges.
type Handoff interface {
	// ThreadListLoaded reports a completed load, informational only.
	ThreadListLoaded()
	// ThreadSelected requests navigation into a thread.
	ThreadSelected(rootGUID string)
	// Cancelled reports that the user dismissed the view.
	Cancelled()
}

// NopHandoff discards all navigation events.
type NopHandoff struct{}

func (NopHandoff) ThreadListLoaded()     {}
func (NopHandoff) ThreadSelected(string) {}
func (NopHandoff) Cancelled()            {}
