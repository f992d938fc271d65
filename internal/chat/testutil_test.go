package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/store"
	"github.com/adamavenir/skein/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	root := t.TempDir()
	skeinDir := filepath.Join(root, ".skein")
	if err := os.MkdirAll(skeinDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	s, err := store.Open(core.Project{Root: root, DBPath: filepath.Join(skeinDir, "skein.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return s
}

func mustCreateRoom(t *testing.T, s *store.Store, name string) types.Room {
	t.Helper()
	room, err := s.CreateRoom(context.Background(), name)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func mustPost(t *testing.T, s *store.Store, roomGUID, sender, body string, ts int64) types.Message {
	t.Helper()
	msg, err := s.CreateMessage(context.Background(), types.Message{
		RoomID: roomGUID,
		TS:     ts,
		Sender: sender,
		Body:   body,
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

func mustReply(t *testing.T, s *store.Store, roomGUID, rootGUID, sender, body string, ts int64) types.Message {
	t.Helper()
	msg, err := s.CreateMessage(context.Background(), types.Message{
		RoomID:     roomGUID,
		TS:         ts,
		Sender:     sender,
		Body:       body,
		ThreadRoot: &rootGUID,
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	return msg
}

// newTestModel builds a model against a seeded store and gives it a
// terminal size so View has room to render.
func newTestModel(t *testing.T, s *store.Store, room types.Room, username string) *Model {
	t.Helper()
	model, err := NewModel(Options{
		Store:    s,
		RoomGUID: room.GUID,
		RoomName: room.Name,
		Username: username,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	t.Cleanup(model.engine.Close)
	model.handleWindowSizeMsg(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model
}

func pressRune(m *Model, r rune) tea.Cmd {
	_, cmd := m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return cmd
}

func pressKey(m *Model, kt tea.KeyType) tea.Cmd {
	_, cmd := m.handleKeyMsg(tea.KeyMsg{Type: kt})
	return cmd
}
