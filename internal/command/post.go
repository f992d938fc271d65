package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/skein/internal/types"
	"github.com/spf13/cobra"
)

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <message>",
		Short: "Post a message to the room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := requireUsername(ctx); err != nil {
				return writeCommandError(cmd, err)
			}

			created, err := ctx.Store.CreateMessage(cmd.Context(), types.Message{
				RoomID: ctx.Room.GUID,
				Sender: ctx.Username,
				Body:   args[0],
				Type:   types.MessageTypeUser,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				payload := map[string]any{
					"guid":   created.GUID,
					"room":   ctx.Room.Name,
					"sender": created.Sender,
					"ts":     created.TS,
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Posted to %s\n", created.GUID, ctx.Room.Name)
			return nil
		},
	}

	return cmd
}
