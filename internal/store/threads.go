package store

import (
	"context"
	"database/sql"

	"github.com/adamavenir/skein/internal/types"
)

const threadSelectSQL = `
	SELECT
	  t.root_guid, t.room_guid, t.last_guid, t.reply_count, t.created_at, t.last_ts,
	  r.guid, r.room_guid, r.ts, r.sender, r.body, r.type, r.thread_root, r.edited_at,
	  l.guid, l.room_guid, l.ts, l.sender, l.body, l.type, l.thread_root, l.edited_at,
	  EXISTS(
	    SELECT 1 FROM skein_messages p
	    WHERE p.sender = ? AND p.type = 'user'
	      AND (p.guid = t.root_guid OR p.thread_root = t.root_guid)
	  ) AS participated
	FROM skein_threads t
	LEFT JOIN skein_messages r ON r.guid = t.root_guid
	LEFT JOIN skein_messages l ON l.guid = t.last_guid
`

// Threads returns all threads in a room ordered by last activity descending.
// Participation is computed for forUser.
func (s *Store) Threads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error) {
	return s.queryThreads(ctx, roomGUID, forUser, false)
}

// ParticipatedThreads returns the threads forUser authored the root of or
// replied in, ordered by last activity descending.
func (s *Store) ParticipatedThreads(ctx context.Context, roomGUID, forUser string) ([]types.Thread, error) {
	return s.queryThreads(ctx, roomGUID, forUser, true)
}

func (s *Store) queryThreads(ctx context.Context, roomGUID, forUser string, participatedOnly bool) ([]types.Thread, error) {
	query := threadSelectSQL + `
	WHERE t.room_guid = ?
	`
	if participatedOnly {
		query += `
	  AND EXISTS(
	    SELECT 1 FROM skein_messages p
	    WHERE p.sender = ? AND p.type = 'user'
	      AND (p.guid = t.root_guid OR p.thread_root = t.root_guid)
	  )
	`
	}
	query += `
	ORDER BY t.last_ts DESC, t.root_guid DESC
	`

	args := []any{forUser, roomGUID}
	if participatedOnly {
		args = append(args, forUser)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []types.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return threads, nil
}

// GetThread returns one thread summary with its root and last messages.
func (s *Store) GetThread(ctx context.Context, rootGUID, forUser string) (*types.Thread, error) {
	row := s.db.QueryRowContext(ctx, threadSelectSQL+`
	WHERE t.root_guid = ?
	`, forUser, rootGUID)
	thread, err := scanThread(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ThreadCount returns the number of threads in a room.
func (s *Store) ThreadCount(ctx context.Context, roomGUID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM skein_threads WHERE room_guid = ?
	`, roomGUID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type joinedMessageRow struct {
	GUID       sql.NullString
	RoomGUID   sql.NullString
	TS         sql.NullInt64
	Sender     sql.NullString
	Body       sql.NullString
	Type       sql.NullString
	ThreadRoot sql.NullString
	EditedAt   sql.NullInt64
}

func (row joinedMessageRow) toMessage() *types.Message {
	if !row.GUID.Valid {
		return nil
	}
	return &types.Message{
		GUID:       row.GUID.String,
		RoomID:     row.RoomGUID.String,
		TS:         row.TS.Int64,
		Sender:     row.Sender.String,
		Body:       row.Body.String,
		Type:       types.MessageType(row.Type.String),
		ThreadRoot: nullStringPtr(row.ThreadRoot),
		EditedAt:   nullIntPtr(row.EditedAt),
	}
}

type threadRow struct {
	RootGUID   string
	RoomGUID   string
	LastGUID   sql.NullString
	ReplyCount int
	CreatedAt  int64
	LastTS     int64
}

func scanThread(scanner interface{ Scan(dest ...any) error }) (types.Thread, error) {
	var row threadRow
	var root, last joinedMessageRow
	var participated int

	if err := scanner.Scan(
		&row.RootGUID, &row.RoomGUID, &row.LastGUID, &row.ReplyCount, &row.CreatedAt, &row.LastTS,
		&root.GUID, &root.RoomGUID, &root.TS, &root.Sender, &root.Body, &root.Type, &root.ThreadRoot, &root.EditedAt,
		&last.GUID, &last.RoomGUID, &last.TS, &last.Sender, &last.Body, &last.Type, &last.ThreadRoot, &last.EditedAt,
		&participated,
	); err != nil {
		return types.Thread{}, err
	}

	return types.Thread{
		RootGUID:     row.RootGUID,
		RoomID:       row.RoomGUID,
		RootMessage:  root.toMessage(),
		LastMessage:  last.toMessage(),
		ReplyCount:   row.ReplyCount,
		LastTS:       row.LastTS,
		CreatedAt:    row.CreatedAt,
		Participated: participated != 0,
	}, nil
}
