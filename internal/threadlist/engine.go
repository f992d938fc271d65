// Package threadlist drives the thread list screen: it owns the view
// state machine, fetches and formats thread rows, and reports navigation
// intents through a nav.Handoff.
//
// An Engine belongs to one goroutine, normally the UI event loop. Loads
// run synchronously on the caller; an observer that starts a new load
// from inside a state callback supersedes the one in progress, and the
// stale result is dropped. Close is safe from any goroutine.
package threadlist

import (
	"context"
	"sync"

	"github.com/adamavenir/skein/internal/nav"
	"github.com/adamavenir/skein/internal/types"
)

// ThreadStore is the read surface the engine needs from the store.
type ThreadStore interface {
	Threads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error)
	ParticipatedThreads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error)
	MemberNames(ctx context.Context) (map[string]string, error)
}

// Formatter renders message fields for row display.
type Formatter interface {
	Format(msg *types.Message, members map[string]string) (string, bool)
	FormatTime(ts int64) (string, bool)
	DisplayName(sender string, members map[string]string) string
}

// Subscription is a store event handle the engine tears down. The owner
// drains the handle's channel and forwards changes via OnStoreUpdated;
// the engine only guarantees the handle is closed exactly once.
type Subscription interface {
	Close()
}

// Options configures a new Engine. Store and Formatter are required;
// Handoff and Subscription may be nil.
type Options struct {
	Store        ThreadStore
	Formatter    Formatter
	Handoff      nav.Handoff
	Subscription Subscription
	RoomGUID     string
	User         string
}

// Engine runs the thread list state machine for one room.
type Engine struct {
	store   ThreadStore
	format  Formatter
	handoff nav.Handoff
	sub     Subscription

	roomGUID string
	user     string

	baseCtx   context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	state       ViewState
	rows        []RowViewModel
	filter      types.ThreadFilter
	loadSeq     uint64
	cancelFetch context.CancelFunc
	observer    func(ViewState)
}

// New builds an Engine in the Idle state with the all-threads filter
// active. Nothing is fetched until LoadData.
func New(opts Options) *Engine {
	handoff := opts.Handoff
	if handoff == nil {
		handoff = nav.NopHandoff{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:    opts.Store,
		format:   opts.Formatter,
		handoff:  handoff,
		sub:      opts.Subscription,
		roomGUID: opts.RoomGUID,
		user:     opts.User,
		baseCtx:  ctx,
		cancel:   cancel,
		state:    Idle{},
		filter:   types.FilterAll,
	}
}

// SetObserver registers the single state observer. It fires on every
// transition with the new state; the current state is not replayed.
func (e *Engine) SetObserver(fn func(ViewState)) {
	e.observer = fn
}

// State returns the current view state.
func (e *Engine) State() ViewState { return e.state }

// Rows returns the rows of the most recent completed load.
func (e *Engine) Rows() []RowViewModel { return e.rows }

// Filter returns the active thread filter.
func (e *Engine) Filter() types.ThreadFilter { return e.filter }

// LoadData fetches threads for the active filter. With showLoading the
// list passes through Loading first; without it the current rows stay
// visible until the fresh result lands.
func (e *Engine) LoadData(showLoading bool) {
	e.load(showLoading)
}

// SelectFilter activates filter and reloads with a loading indicator.
// Re-selecting the already active filter still reloads.
func (e *Engine) SelectFilter(filter types.ThreadFilter) {
	if !filter.Valid() {
		return
	}
	e.filter = filter
	e.load(true)
}

// ShowFilterOptions presents the filter picker. Calling it while the
// picker is already up re-emits the state with the active filter.
func (e *Engine) ShowFilterOptions() {
	if e.baseCtx.Err() != nil {
		return
	}
	e.setState(ShowingFilterOptions{Active: e.filter})
}

// SelectThread hands off the thread at index in the current rows.
// Out-of-range indexes are ignored.
func (e *Engine) SelectThread(index int) {
	if index < 0 || index >= len(e.rows) {
		return
	}
	e.handoff.ThreadSelected(e.rows[index].RootGUID)
}

// Cancel aborts any in-flight fetch and reports the cancellation through
// the handoff. Safe to call repeatedly; the engine stays usable.
func (e *Engine) Cancel() {
	e.loadSeq++
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	e.handoff.Cancelled()
}

// OnStoreUpdated refreshes the list after a store change without a
// loading flash.
func (e *Engine) OnStoreUpdated() {
	e.load(false)
}

// Close tears the engine down: pending fetches are cancelled and the
// attached store subscription, if any, is closed. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.cancel()
		if e.sub != nil {
			e.sub.Close()
		}
	})
}

func (e *Engine) setState(st ViewState) {
	e.state = st
	if e.observer != nil {
		e.observer(st)
	}
}

func (e *Engine) load(showLoading bool) {
	if e.baseCtx.Err() != nil {
		return
	}
	e.loadSeq++
	seq := e.loadSeq
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	ctx, cancelFetch := context.WithCancel(e.baseCtx)
	e.cancelFetch = cancelFetch
	filter := e.filter

	if showLoading {
		e.setState(Loading{})
		if seq != e.loadSeq || ctx.Err() != nil {
			// The observer superseded this load from inside the
			// Loading callback.
			return
		}
	}

	threads, members, err := e.fetch(ctx, filter)
	if seq != e.loadSeq || ctx.Err() != nil {
		return
	}
	if err != nil {
		// Hold the current state; the next store notification or
		// explicit reload retries.
		return
	}

	if len(threads) == 0 {
		e.rows = nil
		e.setState(Empty{Reason: emptyReasonFor(filter)})
	} else {
		e.rows = buildRows(threads, members, e.format)
		e.setState(Loaded{Rows: e.rows})
	}
	if seq != e.loadSeq {
		// A reentrant load from the state callback already reported
		// its own completion.
		return
	}
	e.handoff.ThreadListLoaded()
}

func (e *Engine) fetch(ctx context.Context, filter types.ThreadFilter) ([]types.Thread, map[string]string, error) {
	var (
		threads []types.Thread
		err     error
	)
	if filter == types.FilterMine {
		threads, err = e.store.ParticipatedThreads(ctx, e.roomGUID, e.user)
	} else {
		threads, err = e.store.Threads(ctx, e.roomGUID, e.user)
	}
	if err != nil {
		return nil, nil, err
	}
	members, err := e.store.MemberNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	return threads, members, nil
}
