package threadlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/adamavenir/skein/internal/format"
	"github.com/adamavenir/skein/internal/types"
)

type fakeStore struct {
	all     []types.Thread
	mine    []types.Thread
	members map[string]string
	err     error

	allCalls  int
	mineCalls int
}

func (f *fakeStore) Threads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error) {
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.all, nil
}

func (f *fakeStore) ParticipatedThreads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error) {
	f.mineCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.mine, nil
}

func (f *fakeStore) MemberNames(ctx context.Context) (map[string]string, error) {
	if f.members == nil {
		return map[string]string{}, nil
	}
	return f.members, nil
}

type handoffRecorder struct {
	loaded    int
	selected  []string
	cancelled int
}

func (h *handoffRecorder) ThreadListLoaded()          { h.loaded++ }
func (h *handoffRecorder) ThreadSelected(root string) { h.selected = append(h.selected, root) }
func (h *handoffRecorder) Cancelled()                 { h.cancelled++ }

func testThread(root, sender, body string, replies int, lastTS int64) types.Thread {
	msg := &types.Message{
		GUID:   root,
		RoomID: "room-1",
		TS:     lastTS,
		Sender: sender,
		Body:   body,
		Type:   types.MessageTypeUser,
	}
	return types.Thread{
		RootGUID:    root,
		RoomID:      "room-1",
		RootMessage: msg,
		LastMessage: msg,
		ReplyCount:  replies,
		LastTS:      lastTS,
	}
}

func manyThreads(n int) []types.Thread {
	threads := make([]types.Thread, 0, n)
	for i := 0; i < n; i++ {
		root := fmt.Sprintf("msg-thread%03d", i)
		threads = append(threads, testThread(root, "ada", fmt.Sprintf("topic %d", i), i+1, int64(1000+i)))
	}
	return threads
}

func newTestEngine(t *testing.T, fs *fakeStore, h *handoffRecorder) *Engine {
	t.Helper()
	e := New(Options{
		Store:     fs,
		Formatter: format.New(0),
		Handoff:   h,
		RoomGUID:  "room-1",
		User:      "ada",
	})
	t.Cleanup(e.Close)
	return e
}

func wantLoaded(t *testing.T, st ViewState) Loaded {
	t.Helper()
	loaded, ok := st.(Loaded)
	if !ok {
		t.Fatalf("state = %T, want Loaded", st)
	}
	return loaded
}

func wantEmpty(t *testing.T, st ViewState) Empty {
	t.Helper()
	empty, ok := st.(Empty)
	if !ok {
		t.Fatalf("state = %T, want Empty", st)
	}
	return empty
}

func TestEngineStartsIdle(t *testing.T) {
	h := &handoffRecorder{}
	e := newTestEngine(t, &fakeStore{}, h)

	if _, ok := e.State().(Idle); !ok {
		t.Fatalf("state = %T, want Idle", e.State())
	}
	if e.Filter() != types.FilterAll {
		t.Fatalf("filter = %q, want %q", e.Filter(), types.FilterAll)
	}
	if h.loaded != 0 || h.cancelled != 0 {
		t.Fatalf("handoff fired before any load: %+v", h)
	}
}

func TestLoadDataEmptyRoom(t *testing.T) {
	h := &handoffRecorder{}
	e := newTestEngine(t, &fakeStore{}, h)

	var log []ViewState
	e.SetObserver(func(st ViewState) { log = append(log, st) })

	e.LoadData(true)

	if len(log) != 2 {
		t.Fatalf("got %d transitions, want 2: %#v", len(log), log)
	}
	if _, ok := log[0].(Loading); !ok {
		t.Fatalf("first transition = %T, want Loading", log[0])
	}
	empty := wantEmpty(t, log[1])
	if empty.Reason != emptyAll {
		t.Fatalf("reason = %+v, want %+v", empty.Reason, emptyAll)
	}
	if len(e.Rows()) != 0 {
		t.Fatalf("rows = %d, want 0", len(e.Rows()))
	}
	if h.loaded != 1 {
		t.Fatalf("loaded handoffs = %d, want 1", h.loaded)
	}
}

func TestLoadDataBuildsRowPerThread(t *testing.T) {
	orphan := testThread("msg-orphan12", "bea", "last in orphan", 4, 3000)
	orphan.RootMessage = nil

	fs := &fakeStore{
		all: []types.Thread{
			testThread("msg-aaaa1111", "ada", "first topic", 1, 1000),
			testThread("msg-bbbb2222", "bea", "second topic", 2, 2000),
			orphan,
		},
		members: map[string]string{"ada": "Ada L"},
	}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)

	e.LoadData(true)

	loaded := wantLoaded(t, e.State())
	if len(loaded.Rows) != len(fs.all) {
		t.Fatalf("rows = %d, want %d", len(loaded.Rows), len(fs.all))
	}
	for i, row := range loaded.Rows {
		if row.RootGUID != fs.all[i].RootGUID {
			t.Fatalf("row %d guid = %q, want %q", i, row.RootGUID, fs.all[i].RootGUID)
		}
	}

	first := loaded.Rows[0]
	if first.RootSender != "Ada L" {
		t.Fatalf("root sender = %q, want display name", first.RootSender)
	}
	if first.RootText != "first topic" {
		t.Fatalf("root text = %q", first.RootText)
	}
	if first.ReplySummary != "1 reply" {
		t.Fatalf("reply summary = %q", first.ReplySummary)
	}
	if first.LastActive == "" {
		t.Fatal("last active should be set")
	}

	// A thread whose root message is gone still renders from what is
	// left.
	got := loaded.Rows[2]
	if got.RootSender != "" || got.RootText != "" {
		t.Fatalf("orphan root fields = %q/%q, want empty", got.RootSender, got.RootText)
	}
	if got.LastText != "last in orphan" {
		t.Fatalf("orphan last text = %q", got.LastText)
	}
	if got.ReplySummary != "4 replies" {
		t.Fatalf("orphan reply summary = %q", got.ReplySummary)
	}
}

func TestSelectFilterDiscardsOldRows(t *testing.T) {
	fs := &fakeStore{
		all: manyThreads(5),
		mine: []types.Thread{
			testThread("msg-mine0001", "ada", "mine one", 1, 5000),
			testThread("msg-mine0002", "ada", "mine two", 2, 4000),
		},
	}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)

	var log []ViewState
	e.SetObserver(func(st ViewState) { log = append(log, st) })

	e.LoadData(true)
	e.SelectFilter(types.FilterMine)

	if len(log) != 4 {
		t.Fatalf("got %d transitions, want 4: %#v", len(log), log)
	}
	if len(wantLoaded(t, log[1]).Rows) != 5 {
		t.Fatalf("first load rows = %d, want 5", len(wantLoaded(t, log[1]).Rows))
	}
	if _, ok := log[2].(Loading); !ok {
		t.Fatalf("filter switch transition = %T, want Loading", log[2])
	}
	final := wantLoaded(t, log[3])
	if len(final.Rows) != 2 {
		t.Fatalf("final rows = %d, want 2", len(final.Rows))
	}
	for _, row := range final.Rows {
		if row.RootGUID != "msg-mine0001" && row.RootGUID != "msg-mine0002" {
			t.Fatalf("stale row %q survived the filter switch", row.RootGUID)
		}
	}
	if e.Filter() != types.FilterMine {
		t.Fatalf("filter = %q, want %q", e.Filter(), types.FilterMine)
	}
	if h.loaded != 2 {
		t.Fatalf("loaded handoffs = %d, want 2", h.loaded)
	}
}

func TestSelectFilterSameFilterReloads(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	e := newTestEngine(t, fs, &handoffRecorder{})

	e.LoadData(true)
	e.SelectFilter(types.FilterAll)

	if fs.allCalls != 2 {
		t.Fatalf("store calls = %d, want 2", fs.allCalls)
	}
	wantLoaded(t, e.State())
}

func TestSelectFilterInvalidIgnored(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	e := newTestEngine(t, fs, &handoffRecorder{})
	e.LoadData(true)

	e.SelectFilter(types.ThreadFilter("bogus"))

	if fs.allCalls != 1 || fs.mineCalls != 0 {
		t.Fatalf("invalid filter triggered a fetch: all=%d mine=%d", fs.allCalls, fs.mineCalls)
	}
	if e.Filter() != types.FilterAll {
		t.Fatalf("filter = %q, want unchanged", e.Filter())
	}
}

func TestShowFilterOptionsReentrant(t *testing.T) {
	fs := &fakeStore{all: manyThreads(2)}
	e := newTestEngine(t, fs, &handoffRecorder{})
	e.LoadData(true)

	var log []ViewState
	e.SetObserver(func(st ViewState) { log = append(log, st) })

	e.ShowFilterOptions()
	e.ShowFilterOptions()

	if len(log) != 2 {
		t.Fatalf("got %d transitions, want 2", len(log))
	}
	for _, st := range log {
		opts, ok := st.(ShowingFilterOptions)
		if !ok {
			t.Fatalf("state = %T, want ShowingFilterOptions", st)
		}
		if opts.Active != types.FilterAll {
			t.Fatalf("active filter = %q, want %q", opts.Active, types.FilterAll)
		}
	}

	// The loaded rows stay available behind the picker.
	if len(e.Rows()) != 2 {
		t.Fatalf("rows behind picker = %d, want 2", len(e.Rows()))
	}

	e.SelectFilter(types.FilterMine)
	e.ShowFilterOptions()
	opts := e.State().(ShowingFilterOptions)
	if opts.Active != types.FilterMine {
		t.Fatalf("active filter after switch = %q, want %q", opts.Active, types.FilterMine)
	}
}

func TestOnStoreUpdatedSkipsLoading(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	e := newTestEngine(t, fs, &handoffRecorder{})
	e.LoadData(true)

	var log []ViewState
	e.SetObserver(func(st ViewState) { log = append(log, st) })

	fs.all = manyThreads(2)
	e.OnStoreUpdated()

	if len(log) != 1 {
		t.Fatalf("got %d transitions, want 1: %#v", len(log), log)
	}
	if len(wantLoaded(t, log[0]).Rows) != 2 {
		t.Fatalf("refreshed rows = %d, want 2", len(wantLoaded(t, log[0]).Rows))
	}

	fs.all = nil
	e.OnStoreUpdated()
	wantEmpty(t, e.State())
	for _, st := range log {
		if _, ok := st.(Loading); ok {
			t.Fatal("store refresh passed through Loading")
		}
	}
}

func TestSelectThreadBounds(t *testing.T) {
	fs := &fakeStore{all: manyThreads(2)}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)

	e.SelectThread(0)
	if len(h.selected) != 0 {
		t.Fatal("selection before load should be ignored")
	}

	e.LoadData(true)
	for _, idx := range []int{-1, 2, 99} {
		e.SelectThread(idx)
	}
	if len(h.selected) != 0 {
		t.Fatalf("out-of-range selections fired handoff: %v", h.selected)
	}

	e.SelectThread(1)
	if len(h.selected) != 1 || h.selected[0] != "msg-thread001" {
		t.Fatalf("selected = %v, want [msg-thread001]", h.selected)
	}
}

func TestCancelIsRepeatable(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)

	e.Cancel()
	if h.cancelled != 1 {
		t.Fatalf("cancelled = %d, want 1", h.cancelled)
	}

	e.SelectFilter(types.FilterMine)
	e.Cancel()
	e.Cancel()
	if h.cancelled != 3 {
		t.Fatalf("cancelled = %d, want 3", h.cancelled)
	}

	// The engine keeps working after cancellation.
	e.LoadData(true)
	wantEmpty(t, e.State())
	e.SelectFilter(types.FilterAll)
	wantLoaded(t, e.State())
}

func TestFetchErrorHoldsState(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)
	e.LoadData(true)

	var log []ViewState
	e.SetObserver(func(st ViewState) { log = append(log, st) })

	fs.err = errors.New("database is locked")
	e.OnStoreUpdated()

	if len(log) != 0 {
		t.Fatalf("background failure emitted transitions: %#v", log)
	}
	if len(wantLoaded(t, e.State()).Rows) != 1 {
		t.Fatal("rows should survive a failed refresh")
	}
	if h.loaded != 1 {
		t.Fatalf("loaded handoffs = %d, want 1", h.loaded)
	}

	// A failed user-visible load parks on Loading until a retry lands.
	e.SelectFilter(types.FilterMine)
	if _, ok := e.State().(Loading); !ok {
		t.Fatalf("state = %T, want Loading", e.State())
	}

	fs.err = nil
	e.OnStoreUpdated()
	wantEmpty(t, e.State())
}

func TestObserverReentrancySupersedesLoad(t *testing.T) {
	fs := &fakeStore{
		all:  manyThreads(5),
		mine: manyThreads(2),
	}
	h := &handoffRecorder{}
	e := newTestEngine(t, fs, h)

	var log []ViewState
	retargeted := false
	e.SetObserver(func(st ViewState) {
		log = append(log, st)
		if _, ok := st.(Loading); ok && !retargeted {
			retargeted = true
			e.SelectFilter(types.FilterMine)
		}
	})

	e.LoadData(true)

	// The reentrant filter switch wins; the superseded load never
	// fetches or reports.
	if fs.allCalls != 0 {
		t.Fatalf("stale load fetched anyway: allCalls = %d", fs.allCalls)
	}
	if fs.mineCalls != 1 {
		t.Fatalf("mineCalls = %d, want 1", fs.mineCalls)
	}
	final := wantLoaded(t, e.State())
	if len(final.Rows) != 2 {
		t.Fatalf("final rows = %d, want 2", len(final.Rows))
	}
	if h.loaded != 1 {
		t.Fatalf("loaded handoffs = %d, want 1", h.loaded)
	}
	if len(log) != 3 {
		t.Fatalf("got %d transitions, want 3: %#v", len(log), log)
	}
}

func TestEmptyReasonTracksFilter(t *testing.T) {
	e := newTestEngine(t, &fakeStore{}, &handoffRecorder{})

	e.LoadData(true)
	if got := wantEmpty(t, e.State()).Reason; got != emptyAll {
		t.Fatalf("all-filter reason = %+v", got)
	}

	e.SelectFilter(types.FilterMine)
	if got := wantEmpty(t, e.State()).Reason; got != emptyMine {
		t.Fatalf("mine-filter reason = %+v", got)
	}
	if emptyAll == emptyMine {
		t.Fatal("filters should explain emptiness differently")
	}
}

func TestCloseTearsDown(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	sub := &fakeSub{}
	e := New(Options{
		Store:        fs,
		Formatter:    format.New(0),
		Handoff:      &handoffRecorder{},
		Subscription: sub,
		RoomGUID:     "room-1",
		User:         "ada",
	})

	e.LoadData(true)
	e.Close()
	e.Close()

	if sub.closes != 1 {
		t.Fatalf("subscription closes = %d, want 1", sub.closes)
	}

	calls := fs.allCalls
	e.LoadData(true)
	e.OnStoreUpdated()
	e.ShowFilterOptions()
	if fs.allCalls != calls {
		t.Fatal("closed engine still fetching")
	}
	wantLoaded(t, e.State())
}

type fakeSub struct{ closes int }

func (f *fakeSub) Close() { f.closes++ }

func TestNilHandoffIsSafe(t *testing.T) {
	fs := &fakeStore{all: manyThreads(1)}
	e := New(Options{Store: fs, Formatter: format.New(0), RoomGUID: "room-1", User: "ada"})
	defer e.Close()

	e.LoadData(true)
	e.SelectThread(0)
	e.Cancel()
	wantLoaded(t, e.State())
}

func TestReplySummary(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 replies"},
		{1, "1 reply"},
		{2, "2 replies"},
		{40, "40 replies"},
	}
	for _, tt := range tests {
		if got := replySummary(tt.count); got != tt.want {
			t.Fatalf("replySummary(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}
