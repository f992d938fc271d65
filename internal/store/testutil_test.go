package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	skeinDir := filepath.Join(root, ".skein")
	if err := os.MkdirAll(skeinDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	s, err := Open(core.Project{Root: root, DBPath: filepath.Join(skeinDir, "skein.db")})
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

func mustCreateRoom(t *testing.T, s *Store, name string) types.Room {
	t.Helper()
	room, err := s.CreateRoom(context.Background(), name)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func mustPost(t *testing.T, s *Store, roomGUID, sender, body string, ts int64) types.Message {
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

func mustReply(t *testing.T, s *Store, roomGUID, rootGUID, sender, body string, ts int64) types.Message {
	t.Helper()
	msg, err := s.CreateMessage(context.Background(), types.Message{
		RoomID:     roomGUID,
		TS:         ts,
		Sender:     sender,
		Body:       body,
		ThreadRoot: strPtr(rootGUID),
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	return msg
}

func strPtr(value string) *string {
	return &value
}
