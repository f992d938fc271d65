package command

import (
	"context"
	"fmt"
	"os"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/store"
	"github.com/adamavenir/skein/internal/types"
	"github.com/spf13/cobra"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Store    *store.Store
	Project  core.Project
	Room     types.Room
	Username string
	JSONMode bool
}

// Close releases the context's store.
func (ctx *CommandContext) Close() {
	_ = ctx.Store.Close()
}

// GetContext resolves the project, store, room, and username for a command.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	roomRef, _ := cmd.Flags().GetString("room")
	jsonMode, _ := cmd.Flags().GetBool("json")

	project, err := core.DiscoverProject("")
	if err != nil {
		return nil, err
	}
	s, err := store.Open(project)
	if err != nil {
		return nil, err
	}
	if err := s.InitSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	room, err := resolveRoom(cmd.Context(), s, roomRef)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	username, err := resolveUsername(cmd.Context(), s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return &CommandContext{
		Store:    s,
		Project:  project,
		Room:     room,
		Username: username,
		JSONMode: jsonMode,
	}, nil
}

func resolveRoom(ctx context.Context, s *store.Store, ref string) (types.Room, error) {
	if ref != "" {
		room, err := s.ResolveRoom(ctx, ref)
		if err != nil {
			return types.Room{}, err
		}
		if room == nil {
			return types.Room{}, fmt.Errorf("room not found: %s", ref)
		}
		return *room, nil
	}

	room, err := s.DefaultRoom(ctx)
	if err != nil {
		return types.Room{}, err
	}
	if room == nil {
		return types.Room{}, fmt.Errorf("no rooms yet. Run 'skein init' first")
	}
	return *room, nil
}

// resolveUsername reads the configured username, falling back to $USER.
// An empty result is not an error; interactive commands prompt instead.
func resolveUsername(ctx context.Context, s *store.Store) (string, error) {
	username, err := s.GetConfig(ctx, "username")
	if err != nil {
		return "", err
	}
	if username != "" {
		return username, nil
	}
	return os.Getenv("USER"), nil
}

// requireUsername rejects commands that cannot proceed anonymously.
func requireUsername(ctx *CommandContext) error {
	if ctx.Username == "" {
		return fmt.Errorf("no username configured. Run 'skein config username <name>' or 'skein chat' once")
	}
	return nil
}
