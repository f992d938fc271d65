package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/adamavenir/skein/internal/types"
)

// UpsertMember creates or updates a member identity.
func (s *Store) UpsertMember(ctx context.Context, username, displayName string) (types.Member, error) {
	now := time.Now().Unix()
	var display any
	if displayName != "" {
		display = displayName
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skein_members (username, display_name, joined_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
		  display_name = COALESCE(excluded.display_name, skein_members.display_name),
		  last_seen = excluded.last_seen
	`, username, display, now, now)
	if err != nil {
		return types.Member{}, err
	}
	s.markLocalWrite()
	s.notify(Event{Kind: EventMember})

	member, err := s.GetMember(ctx, username)
	if err != nil {
		return types.Member{}, err
	}
	if member == nil {
		return types.Member{Username: username, DisplayName: displayName, JoinedAt: now, LastSeen: now}, nil
	}
	return *member, nil
}

// upsertMemberWith records sender presence inside a write transaction.
func upsertMemberWith(db DBTX, username string, ts int64) error {
	_, err := db.Exec(`
		INSERT INTO skein_members (username, display_name, joined_at, last_seen)
		VALUES (?, NULL, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
		  last_seen = MAX(skein_members.last_seen, excluded.last_seen)
	`, username, ts, ts)
	return err
}

// GetMember returns a member by username.
func (s *Store) GetMember(ctx context.Context, username string) (*types.Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, display_name, joined_at, last_seen
		FROM skein_members WHERE username = ?
	`, username)
	var member types.Member
	var display sql.NullString
	if err := row.Scan(&member.Username, &display, &member.JoinedAt, &member.LastSeen); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	member.DisplayName = display.String
	return &member, nil
}

// Members returns all known members ordered by username.
func (s *Store) Members(ctx context.Context) ([]types.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, display_name, joined_at, last_seen
		FROM skein_members ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []types.Member
	for rows.Next() {
		var member types.Member
		var display sql.NullString
		if err := rows.Scan(&member.Username, &display, &member.JoinedAt, &member.LastSeen); err != nil {
			return nil, err
		}
		member.DisplayName = display.String
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// MemberNames returns a username to display name map for formatting.
func (s *Store) MemberNames(ctx context.Context) (map[string]string, error) {
	members, err := s.Members(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, member := range members {
		if member.DisplayName != "" {
			names[member.Username] = member.DisplayName
		}
	}
	return names, nil
}
