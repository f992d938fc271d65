package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type roomRow struct {
	GUID        string `json:"guid"`
	Name        string `json:"name"`
	CreatedAt   int64  `json:"created_at"`
	ThreadCount int    `json:"thread_count"`
	Default     bool   `json:"default"`
}

// NewRoomsCmd creates the rooms command group.
func NewRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List and manage rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			rooms, err := ctx.Store.Rooms(cmd.Context())
			if err != nil {
				return writeCommandError(cmd, err)
			}

			listing := make([]roomRow, 0, len(rooms))
			for _, room := range rooms {
				count, err := ctx.Store.ThreadCount(cmd.Context(), room.GUID)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				listing = append(listing, roomRow{
					GUID:        room.GUID,
					Name:        room.Name,
					CreatedAt:   room.CreatedAt,
					ThreadCount: count,
					Default:     room.GUID == ctx.Room.GUID,
				})
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(listing)
			}

			out := cmd.OutOrStdout()
			for _, row := range listing {
				marker := " "
				if row.Default {
					marker = "*"
				}
				fmt.Fprintf(out, " %s %s (%s) · %s\n", marker, row.Name, row.GUID, threadCountLabel(row.ThreadCount))
			}
			return nil
		},
	}

	cmd.AddCommand(newRoomsNewCmd(), newRoomsDefaultCmd())

	return cmd
}

func threadCountLabel(count int) string {
	switch count {
	case 0:
		return "no threads"
	case 1:
		return "1 thread"
	default:
		return fmt.Sprintf("%d threads", count)
	}
}

func newRoomsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			room, err := ctx.Store.CreateRoom(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(room)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room %q (%s)\n", room.Name, room.GUID)
			return nil
		},
	}
}

func newRoomsDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <room>",
		Short: "Set the default room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			room, err := ctx.Store.ResolveRoom(cmd.Context(), args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if room == nil {
				return writeCommandError(cmd, fmt.Errorf("room not found: %s", args[0]))
			}

			if err := ctx.Store.SetConfig(cmd.Context(), "default_room", room.GUID); err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Default room is now %q\n", room.Name)
			return nil
		},
	}
}
