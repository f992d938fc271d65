package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adamavenir/skein/internal/types"
	"github.com/spf13/cobra"
)

// NewReplyCmd creates the reply command. Replying to a root message starts
// its thread; replying to a reply extends the same thread.
func NewReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply <message>",
		Short: "Reply to a message, starting or extending its thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			target := strings.TrimPrefix(strings.TrimSpace(to), "#")
			if target == "" {
				return writeCommandError(cmd, fmt.Errorf("--to is required"))
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := requireUsername(ctx); err != nil {
				return writeCommandError(cmd, err)
			}

			msg, err := ctx.Store.ResolveMessage(cmd.Context(), target)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if msg == nil {
				return writeCommandError(cmd, fmt.Errorf("message not found: %s", target))
			}

			created, err := ctx.Store.CreateMessage(cmd.Context(), types.Message{
				RoomID:     msg.RoomID,
				Sender:     ctx.Username,
				Body:       args[0],
				Type:       types.MessageTypeUser,
				ThreadRoot: &msg.GUID,
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}

			root := msg.GUID
			if created.ThreadRoot != nil {
				root = *created.ThreadRoot
			}

			if ctx.JSONMode {
				payload := map[string]any{
					"guid":        created.GUID,
					"thread_root": root,
					"sender":      created.Sender,
					"ts":          created.TS,
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Replied in thread %s\n", created.GUID, root)
			return nil
		},
	}

	cmd.Flags().StringP("to", "t", "", "message GUID or prefix to reply to")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
