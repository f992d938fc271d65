// Package store persists skein rooms, messages, and thread summaries in a
// project-local SQLite database and fans out change notifications to
// subscribers.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/adamavenir/skein/internal/core"
	"modernc.org/sqlite"
)

const (
	sqliteConstraint       = 19
	sqliteConstraintUnique = 2067
)

// Store wraps the project database plus its notification fan-out.
type Store struct {
	db     *sql.DB
	dbPath string

	mu      sync.Mutex
	subs    map[int]*Subscription
	nextSub int

	watcher *watcher

	// unix millis of the most recent local write, used by the
	// watcher to suppress echoes of our own writes.
	lastLocalWrite atomic.Int64
}

// Open opens the SQLite database for a project.
func Open(project core.Project) (*Store, error) {
	core.EnsureSkeinGitignore(filepath.Dir(project.DBPath))

	conn, err := sql.Open("sqlite", project.DBPath)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Store{
		db:     conn,
		dbPath: project.DBPath,
		subs:   map[int]*Subscription{},
	}, nil
}

// Close stops the watcher, closes all subscriptions, and closes the database.
func (s *Store) Close() error {
	if s.watcher != nil {
		s.watcher.stop()
		s.watcher = nil
	}

	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}

	return s.db.Close()
}

func (s *Store) generateUniqueGUID(table, prefix string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		guid, err := core.GenerateGUID(prefix)
		if err != nil {
			return "", err
		}
		row := s.db.QueryRow(fmt.Sprintf("SELECT 1 FROM %s WHERE guid = ?", table), guid)
		var exists int
		err = row.Scan(&exists)
		if err == sql.ErrNoRows {
			return guid, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate unique %s GUID", prefix)
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraint || code == sqliteConstraintUnique
	}
	return false
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullIntPtr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
