package store

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
-- Rooms
CREATE TABLE IF NOT EXISTS skein_rooms (
  guid TEXT PRIMARY KEY,               -- uuid
  name TEXT NOT NULL UNIQUE,
  created_at INTEGER NOT NULL          -- unix timestamp
);

-- Messages
CREATE TABLE IF NOT EXISTS skein_messages (
  guid TEXT PRIMARY KEY,               -- e.g., "msg-a1b2c3d4"
  room_guid TEXT NOT NULL,
  ts INTEGER NOT NULL,                 -- unix timestamp
  sender TEXT NOT NULL,                -- username
  body TEXT NOT NULL,                  -- message content (markdown)
  type TEXT NOT NULL DEFAULT 'user',   -- 'user' or 'event'
  thread_root TEXT,                    -- root message guid, null for room-level
  edited_at INTEGER,                   -- unix timestamp of last edit
  FOREIGN KEY (room_guid) REFERENCES skein_rooms(guid)
);

CREATE INDEX IF NOT EXISTS idx_skein_messages_room_ts ON skein_messages(room_guid, ts);
CREATE INDEX IF NOT EXISTS idx_skein_messages_sender ON skein_messages(sender);
CREATE INDEX IF NOT EXISTS idx_skein_messages_thread_root ON skein_messages(thread_root);

-- Thread summaries, maintained on every reply write
CREATE TABLE IF NOT EXISTS skein_threads (
  root_guid TEXT PRIMARY KEY,          -- guid of the root message
  room_guid TEXT NOT NULL,
  last_guid TEXT,                      -- guid of the most recent message
  reply_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,         -- when the first reply arrived
  last_ts INTEGER NOT NULL,            -- ts of the most recent message
  FOREIGN KEY (room_guid) REFERENCES skein_rooms(guid)
);

CREATE INDEX IF NOT EXISTS idx_skein_threads_room_activity ON skein_threads(room_guid, last_ts);

-- Sender identities
CREATE TABLE IF NOT EXISTS skein_members (
  username TEXT PRIMARY KEY,
  display_name TEXT,
  joined_at INTEGER NOT NULL,
  last_seen INTEGER NOT NULL           -- updated on post
);

-- Configuration
CREATE TABLE IF NOT EXISTS skein_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema initializes the skein schema.
func (s *Store) InitSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := initSchemaWith(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func initSchemaWith(db DBTX) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return err
	}
	if err := migrateSchema(db); err != nil {
		return err
	}
	return nil
}

// SchemaExists reports whether the skein schema is present.
func (s *Store) SchemaExists() (bool, error) {
	row := s.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='skein_messages'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}

type tableColumn struct {
	Name    string
	ColType string
	NotNull int
	PK      int
}

func getTableInfo(db DBTX, table string) ([]tableColumn, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []tableColumn
	for rows.Next() {
		var col tableColumn
		var cid int
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &col.Name, &col.ColType, &col.NotNull, &defaultValue, &col.PK); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return columns, nil
}

func hasColumn(columns []tableColumn, name string) bool {
	for _, col := range columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

func migrateSchema(db DBTX) error {
	memberColumns, err := getTableInfo(db, "skein_members")
	if err != nil {
		return err
	}
	if len(memberColumns) > 0 && !hasColumn(memberColumns, "display_name") {
		if _, err := db.Exec("ALTER TABLE skein_members ADD COLUMN display_name TEXT"); err != nil {
			return err
		}
	}

	messageColumns, err := getTableInfo(db, "skein_messages")
	if err != nil {
		return err
	}
	if len(messageColumns) > 0 && !hasColumn(messageColumns, "edited_at") {
		if _, err := db.Exec("ALTER TABLE skein_messages ADD COLUMN edited_at INTEGER"); err != nil {
			return err
		}
	}

	return nil
}
