package store

import (
	"context"
	"testing"

	"github.com/adamavenir/skein/internal/types"
)

func TestCreateAndGetMessage(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	created := mustPost(t, s, room.GUID, "alice", "hello", 0)
	if created.GUID == "" {
		t.Fatal("expected generated guid")
	}
	if created.TS == 0 {
		t.Fatal("expected default timestamp")
	}
	if created.Type != types.MessageTypeUser {
		t.Fatalf("unexpected type: %s", created.Type)
	}

	fetched, err := s.GetMessage(context.Background(), created.GUID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected message")
	}
	if fetched.Body != "hello" {
		t.Fatalf("unexpected body: %s", fetched.Body)
	}
	if fetched.RoomID != room.GUID {
		t.Fatalf("unexpected room: %s", fetched.RoomID)
	}
}

func TestGetMessageMissing(t *testing.T) {
	s := openTestStore(t)

	msg, err := s.GetMessage(context.Background(), "msg-missing1")
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if msg != nil {
		t.Fatal("expected nil for missing message")
	}
}

func TestCreateMessageValidation(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	if _, err := s.CreateMessage(context.Background(), types.Message{Sender: "alice", Body: "x"}); err == nil {
		t.Fatal("expected error without room")
	}
	if _, err := s.CreateMessage(context.Background(), types.Message{RoomID: room.GUID, Body: "x"}); err == nil {
		t.Fatal("expected error without sender")
	}
	if _, err := s.CreateMessage(context.Background(), types.Message{
		RoomID:     room.GUID,
		Sender:     "alice",
		Body:       "x",
		ThreadRoot: strPtr("msg-missing1"),
	}); err == nil {
		t.Fatal("expected error replying to missing message")
	}
}

func TestReplyToReplyJoinsThread(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	root := mustPost(t, s, room.GUID, "alice", "root", 100)
	reply := mustReply(t, s, room.GUID, root.GUID, "bob", "first", 200)
	nested := mustReply(t, s, room.GUID, reply.GUID, "carol", "second", 300)

	if nested.ThreadRoot == nil || *nested.ThreadRoot != root.GUID {
		t.Fatalf("expected reply to join root thread, got %v", nested.ThreadRoot)
	}
}

func TestRecentMessages(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	mustPost(t, s, room.GUID, "alice", "one", 100)
	mustPost(t, s, room.GUID, "alice", "two", 200)
	mustPost(t, s, room.GUID, "alice", "three", 300)

	messages, err := s.RecentMessages(context.Background(), room.GUID, 2)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Body != "two" || messages[1].Body != "three" {
		t.Fatalf("expected chronological tail, got %s then %s", messages[0].Body, messages[1].Body)
	}
}

func TestThreadMessagesChronological(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	root := mustPost(t, s, room.GUID, "alice", "root", 100)
	mustPost(t, s, room.GUID, "dave", "unrelated", 150)
	mustReply(t, s, room.GUID, root.GUID, "bob", "first", 200)
	mustReply(t, s, room.GUID, root.GUID, "carol", "second", 300)

	messages, err := s.ThreadMessages(context.Background(), root.GUID)
	if err != nil {
		t.Fatalf("thread messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Body != "root" || messages[1].Body != "first" || messages[2].Body != "second" {
		t.Fatal("expected root then replies in order")
	}
}

func TestResolveMessagePrefix(t *testing.T) {
	s := openTestStore(t)
	room := mustCreateRoom(t, s, "general")

	msg := mustPost(t, s, room.GUID, "alice", "hello", 100)

	resolved, err := s.ResolveMessage(context.Background(), msg.GUID)
	if err != nil {
		t.Fatalf("resolve full guid: %v", err)
	}
	if resolved == nil || resolved.GUID != msg.GUID {
		t.Fatal("expected full guid resolution")
	}

	short := msg.GUID[len("msg-"):][:5]
	resolved, err = s.ResolveMessage(context.Background(), short)
	if err != nil {
		t.Fatalf("resolve prefix: %v", err)
	}
	if resolved == nil || resolved.GUID != msg.GUID {
		t.Fatalf("expected prefix %q to resolve", short)
	}

	resolved, err = s.ResolveMessage(context.Background(), "nope")
	if err != nil {
		t.Fatalf("resolve unknown: %v", err)
	}
	if resolved != nil {
		t.Fatal("expected nil for unknown ref")
	}
}

func TestRooms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	general := mustCreateRoom(t, s, "general")
	if _, err := s.CreateRoom(ctx, "general"); err == nil {
		t.Fatal("expected duplicate room error")
	}
	mustCreateRoom(t, s, "random")

	rooms, err := s.Rooms(ctx)
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}

	byName, err := s.ResolveRoom(ctx, "general")
	if err != nil {
		t.Fatalf("resolve by name: %v", err)
	}
	if byName == nil || byName.GUID != general.GUID {
		t.Fatal("expected resolution by name")
	}
	byGUID, err := s.ResolveRoom(ctx, general.GUID)
	if err != nil {
		t.Fatalf("resolve by guid: %v", err)
	}
	if byGUID == nil || byGUID.Name != "general" {
		t.Fatal("expected resolution by guid")
	}
}

func TestDefaultRoom(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	none, err := s.DefaultRoom(ctx)
	if err != nil {
		t.Fatalf("default room: %v", err)
	}
	if none != nil {
		t.Fatal("expected no default room in empty store")
	}

	first := mustCreateRoom(t, s, "general")
	second := mustCreateRoom(t, s, "random")

	room, err := s.DefaultRoom(ctx)
	if err != nil {
		t.Fatalf("default room: %v", err)
	}
	if room == nil || room.GUID != first.GUID {
		t.Fatal("expected oldest room as fallback default")
	}

	if err := s.SetConfig(ctx, "default_room", second.GUID); err != nil {
		t.Fatalf("set config: %v", err)
	}
	room, err = s.DefaultRoom(ctx)
	if err != nil {
		t.Fatalf("default room: %v", err)
	}
	if room == nil || room.GUID != second.GUID {
		t.Fatal("expected configured default room")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	value, err := s.GetConfig(ctx, "username")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value, got %q", value)
	}

	if err := s.SetConfig(ctx, "username", "alice"); err != nil {
		t.Fatalf("set config: %v", err)
	}
	value, err = s.GetConfig(ctx, "username")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if value != "alice" {
		t.Fatalf("unexpected value: %q", value)
	}

	entries, err := s.GetAllConfig(ctx)
	if err != nil {
		t.Fatalf("get all config: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "username" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestMembers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	room := mustCreateRoom(t, s, "general")

	mustPost(t, s, room.GUID, "alice", "hello", 100)
	mustPost(t, s, room.GUID, "alice", "again", 200)

	member, err := s.GetMember(ctx, "alice")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member == nil {
		t.Fatal("expected member after posting")
	}
	if member.JoinedAt != 100 || member.LastSeen != 200 {
		t.Fatalf("unexpected presence: joined=%d last=%d", member.JoinedAt, member.LastSeen)
	}

	if _, err := s.UpsertMember(ctx, "alice", "Alice Liddell"); err != nil {
		t.Fatalf("upsert member: %v", err)
	}
	names, err := s.MemberNames(ctx)
	if err != nil {
		t.Fatalf("member names: %v", err)
	}
	if names["alice"] != "Alice Liddell" {
		t.Fatalf("unexpected display name: %q", names["alice"])
	}

	// Posting again must not erase the display name.
	mustPost(t, s, room.GUID, "alice", "later", 300)
	member, err = s.GetMember(ctx, "alice")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.DisplayName != "Alice Liddell" {
		t.Fatalf("display name lost: %q", member.DisplayName)
	}
}

func TestSchemaExists(t *testing.T) {
	s := openTestStore(t)

	ok, err := s.SchemaExists()
	if err != nil {
		t.Fatalf("schema exists: %v", err)
	}
	if !ok {
		t.Fatal("expected schema after init")
	}
}
