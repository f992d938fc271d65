package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adamavenir/skein/internal/types"
	"github.com/google/uuid"
)

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, name string) (types.Room, error) {
	room := types.Room{
		GUID:      uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skein_rooms (guid, name, created_at)
		VALUES (?, ?, ?)
	`, room.GUID, room.Name, room.CreatedAt)
	if err != nil {
		if isConstraintError(err) {
			return types.Room{}, fmt.Errorf("room already exists: %s", name)
		}
		return types.Room{}, err
	}
	s.markLocalWrite()
	s.notify(Event{Kind: EventRoom, RoomGUID: room.GUID})
	return room, nil
}

// GetRoom returns a room by GUID.
func (s *Store) GetRoom(ctx context.Context, guid string) (*types.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guid, name, created_at FROM skein_rooms WHERE guid = ?
	`, guid)
	return scanRoomPtr(row)
}

// GetRoomByName returns a room by name.
func (s *Store) GetRoomByName(ctx context.Context, name string) (*types.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guid, name, created_at FROM skein_rooms WHERE name = ?
	`, name)
	return scanRoomPtr(row)
}

// ResolveRoom resolves a room by GUID or name.
func (s *Store) ResolveRoom(ctx context.Context, ref string) (*types.Room, error) {
	room, err := s.GetRoom(ctx, ref)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}
	return s.GetRoomByName(ctx, ref)
}

// Rooms returns all rooms ordered by creation.
func (s *Store) Rooms(ctx context.Context) ([]types.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guid, name, created_at FROM skein_rooms ORDER BY created_at, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []types.Room
	for rows.Next() {
		var room types.Room
		if err := rows.Scan(&room.GUID, &room.Name, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// DefaultRoom returns the configured default room, falling back to the
// oldest room when none is configured.
func (s *Store) DefaultRoom(ctx context.Context) (*types.Room, error) {
	guid, err := s.GetConfig(ctx, "default_room")
	if err != nil {
		return nil, err
	}
	if guid != "" {
		room, err := s.GetRoom(ctx, guid)
		if err != nil {
			return nil, err
		}
		if room != nil {
			return room, nil
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT guid, name, created_at FROM skein_rooms
		ORDER BY created_at, name
		LIMIT 1
	`)
	return scanRoomPtr(row)
}

func scanRoomPtr(row *sql.Row) (*types.Room, error) {
	var room types.Room
	if err := row.Scan(&room.GUID, &room.Name, &room.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}
