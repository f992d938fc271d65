package threadlist

import "github.com/adamavenir/skein/internal/types"

// ViewState is the sealed interface over the engine's view states. Exactly
// one value is current; the observer sees every transition.
type ViewState interface {
	// isViewState seals the interface to prevent external
	// implementations.
	isViewState()
}

// Ensure all view states implement ViewState.
func (Idle) isViewState()                 {}
func (Loading) isViewState()              {}
func (Loaded) isViewState()               {}
func (Empty) isViewState()                {}
func (ShowingFilterOptions) isViewState() {}

// Idle is the initial state before the first load.
type Idle struct{}

// Loading indicates a user-visible fetch is in progress. Background
// refreshes never pass through Loading.
type Loading struct{}

// Loaded carries the rows of a completed, non-empty load.
type Loaded struct {
	Rows []RowViewModel
}

// Empty reports a completed load that matched no threads.
type Empty struct {
	Reason EmptyReason
}

// ShowingFilterOptions overlays the filter picker on the list.
type ShowingFilterOptions struct {
	Active types.ThreadFilter
}

// EmptyReason is the copy rendered for an empty list. The wording depends
// on the active filter.
type EmptyReason struct {
	Title string
	Body  string
}

var (
	emptyAll = EmptyReason{
		Title: "No threads in the room",
		Body:  "Reply to a message to start the first thread.",
	}
	emptyMine = EmptyReason{
		Title: "No threads you have participated in",
		Body:  "Threads you start or reply in show up here.",
	}
)

func emptyReasonFor(filter types.ThreadFilter) EmptyReason {
	if filter == types.FilterMine {
		return emptyMine
	}
	return emptyAll
}
