package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/adamavenir/skein/internal/format"
	"github.com/adamavenir/skein/internal/nav"
	"github.com/adamavenir/skein/internal/store"
	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Options configure chat.
type Options struct {
	Store    *store.Store
	RoomGUID string
	RoomName string
	Username string
}

// Run starts the chat UI and blocks until it exits. The store is closed
// on the way out.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	// Set window title (ANSI OSC sequence)
	title := "skein"
	if opts.RoomName != "" {
		title = "skein · " + opts.RoomName
	}
	fmt.Printf("\033]0;%s\007", title)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	model.Close()
	return err
}

// Model implements the chat UI.
type Model struct {
	store     *store.Store
	engine    *threadlist.Engine
	sub       *store.Subscription
	stack     *nav.Stack
	formatter *format.Formatter

	roomGUID string
	roomName string
	username string

	state      threadlist.ViewState
	cursor     int
	filterPick int

	threadRoot   string
	threadMsgs   []types.Message
	members      map[string]string
	messageCount int

	knownThreads map[string]bool
	seededKnown  bool
	quitting     bool

	viewport    viewport.Model
	spinner     spinner.Model
	zoneManager *zone.Manager
	colorMap    map[string]lipgloss.Color

	status string
	width  int
	height int

	lastClickGUID string
	lastClickAt   time.Time
}

// NewModel creates a chat model with the thread list loaded.
func NewModel(opts Options) (*Model, error) {
	ctx := context.Background()

	if err := opts.Store.Watch(); err != nil {
		return nil, err
	}
	sub := opts.Store.Subscribe()

	members, err := opts.Store.MemberNames(ctx)
	if err != nil {
		return nil, err
	}
	messageCount, err := opts.Store.MessageCount(ctx)
	if err != nil {
		return nil, err
	}
	colorMap, err := buildColorMap(ctx, opts.Store, opts.RoomGUID, 50, members)
	if err != nil {
		return nil, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	model := &Model{
		store:        opts.Store,
		sub:          sub,
		stack:        nav.NewStack(),
		formatter:    format.New(0),
		roomGUID:     opts.RoomGUID,
		roomName:     opts.RoomName,
		username:     opts.Username,
		members:      members,
		messageCount: messageCount,
		knownThreads: make(map[string]bool),
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		zoneManager:  zone.New(),
		colorMap:     colorMap,
	}
	model.stack.Push(nav.Screen{Kind: nav.ScreenThreadList, RoomGUID: opts.RoomGUID})

	engine := threadlist.New(threadlist.Options{
		Store:        opts.Store,
		Formatter:    model.formatter,
		Handoff:      model,
		Subscription: sub,
		RoomGUID:     opts.RoomGUID,
		User:         opts.Username,
	})
	engine.SetObserver(model.observeState)
	model.engine = engine
	model.state = engine.State()

	engine.LoadData(true)
	return model, nil
}

// Close tears down the engine, its store subscription, and the store.
func (m *Model) Close() {
	m.engine.Close()
	_ = m.store.Close()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitStoreEvent(m.sub), m.spinner.Tick)
}

func (m *Model) observeState(st threadlist.ViewState) {
	m.state = st
}

// ThreadListLoaded clamps the cursor to the fresh rows and notifies about
// threads that appeared since the last load.
func (m *Model) ThreadListLoaded() {
	rows := m.engine.Rows()
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.noticeNewThreads(rows)
}

// ThreadSelected drills into the chosen thread.
func (m *Model) ThreadSelected(rootGUID string) {
	m.openThread(rootGUID)
}

// Cancelled requests shutdown; Update turns it into tea.Quit.
func (m *Model) Cancelled() {
	m.quitting = true
}

func (m *Model) currentScreen() nav.Screen {
	screen, ok := m.stack.Get(m.stack.Current())
	if !ok {
		return nav.Screen{Kind: nav.ScreenThreadList, RoomGUID: m.roomGUID}
	}
	return screen
}

func (m *Model) onThreadScreen() bool {
	return m.currentScreen().Kind == nav.ScreenThread
}
