package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adamavenir/skein/internal/types"
)

// messageColumns is the explicit column list for SELECT queries.
// This prevents column order issues when migrations add columns via ALTER TABLE.
const messageColumns = `guid, room_guid, ts, sender, body, type, thread_root, edited_at`

// CreateMessage inserts a new message and maintains the thread summary for
// its root. Replies to a message that is itself a reply join that message's
// thread. Event messages update thread activity but never count as replies
// and never start a thread.
func (s *Store) CreateMessage(ctx context.Context, message types.Message) (types.Message, error) {
	ts := message.TS
	if ts == 0 {
		ts = time.Now().Unix()
	}

	msgType := message.Type
	if msgType == "" {
		msgType = types.MessageTypeUser
	}

	if message.RoomID == "" {
		return types.Message{}, fmt.Errorf("message requires a room")
	}
	if message.Sender == "" {
		return types.Message{}, fmt.Errorf("message requires a sender")
	}

	threadRoot := message.ThreadRoot
	if threadRoot != nil {
		target, err := s.GetMessage(ctx, *threadRoot)
		if err != nil {
			return types.Message{}, err
		}
		if target == nil {
			return types.Message{}, fmt.Errorf("message not found: %s", *threadRoot)
		}
		if target.RoomID != message.RoomID {
			return types.Message{}, fmt.Errorf("message %s belongs to another room", *threadRoot)
		}
		if target.ThreadRoot != nil {
			threadRoot = target.ThreadRoot
		}
	}

	guid, err := s.generateUniqueGUID("skein_messages", "msg")
	if err != nil {
		return types.Message{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Message{}, err
	}

	if _, err := tx.Exec(`
		INSERT INTO skein_messages (guid, room_guid, ts, sender, body, type, thread_root, edited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
	`, guid, message.RoomID, ts, message.Sender, message.Body, msgType, threadRoot); err != nil {
		_ = tx.Rollback()
		return types.Message{}, err
	}

	if threadRoot != nil {
		if msgType == types.MessageTypeUser {
			if _, err := tx.Exec(`
				INSERT INTO skein_threads (root_guid, room_guid, last_guid, reply_count, created_at, last_ts)
				VALUES (?, ?, ?, 1, ?, ?)
				ON CONFLICT(root_guid) DO UPDATE SET
				  last_guid = excluded.last_guid,
				  reply_count = skein_threads.reply_count + 1,
				  last_ts = excluded.last_ts
			`, *threadRoot, message.RoomID, guid, ts, ts); err != nil {
				_ = tx.Rollback()
				return types.Message{}, err
			}
		} else {
			if _, err := tx.Exec(`
				UPDATE skein_threads
				SET last_guid = ?, last_ts = ?
				WHERE root_guid = ?
			`, guid, ts, *threadRoot); err != nil {
				_ = tx.Rollback()
				return types.Message{}, err
			}
		}
	}

	if msgType == types.MessageTypeUser {
		if err := upsertMemberWith(tx, message.Sender, ts); err != nil {
			_ = tx.Rollback()
			return types.Message{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Message{}, err
	}

	s.markLocalWrite()
	rootGUID := ""
	if threadRoot != nil {
		rootGUID = *threadRoot
	}
	s.notify(Event{Kind: EventMessage, RoomGUID: message.RoomID, RootGUID: rootGUID})

	return types.Message{
		GUID:       guid,
		RoomID:     message.RoomID,
		TS:         ts,
		Sender:     message.Sender,
		Body:       message.Body,
		Type:       msgType,
		ThreadRoot: threadRoot,
	}, nil
}

// GetMessage returns a message by GUID.
func (s *Store) GetMessage(ctx context.Context, guid string) (*types.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM skein_messages WHERE guid = ?
	`, guid)
	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ResolveMessage resolves a message by full GUID or unique prefix.
func (s *Store) ResolveMessage(ctx context.Context, ref string) (*types.Message, error) {
	msg, err := s.GetMessage(ctx, ref)
	if err != nil {
		return nil, err
	}
	if msg != nil {
		return msg, nil
	}

	prefix := ref
	if len(prefix) < 4 || prefix[:4] != "msg-" {
		prefix = "msg-" + prefix
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM skein_messages
		WHERE guid LIKE ? || '%'
		LIMIT 2
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return &matches[0], nil
}

// RecentMessages returns the latest room messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, roomGUID string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM skein_messages
		WHERE room_guid = ?
		ORDER BY ts DESC, guid DESC
		LIMIT ?
	`, roomGUID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ThreadMessages returns a thread's root and replies in chronological order.
func (s *Store) ThreadMessages(ctx context.Context, rootGUID string) ([]types.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM skein_messages
		WHERE guid = ? OR thread_root = ?
		ORDER BY ts ASC, guid ASC
	`, rootGUID, rootGUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MessageCount returns the number of stored messages.
func (s *Store) MessageCount(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM skein_messages")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type messageRow struct {
	GUID       string
	RoomGUID   string
	TS         int64
	Sender     string
	Body       string
	Type       string
	ThreadRoot sql.NullString
	EditedAt   sql.NullInt64
}

func (row messageRow) toMessage() types.Message {
	return types.Message{
		GUID:       row.GUID,
		RoomID:     row.RoomGUID,
		TS:         row.TS,
		Sender:     row.Sender,
		Body:       row.Body,
		Type:       types.MessageType(row.Type),
		ThreadRoot: nullStringPtr(row.ThreadRoot),
		EditedAt:   nullIntPtr(row.EditedAt),
	}
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (types.Message, error) {
	var row messageRow
	if err := scanner.Scan(&row.GUID, &row.RoomGUID, &row.TS, &row.Sender, &row.Body, &row.Type, &row.ThreadRoot, &row.EditedAt); err != nil {
		return types.Message{}, err
	}
	return row.toMessage(), nil
}

func scanMessages(rows *sql.Rows) ([]types.Message, error) {
	var messages []types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
