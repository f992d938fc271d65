package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/adamavenir/skein/internal/chat"
	"github.com/spf13/cobra"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive threads view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for interactive chat"))
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			username := ctx.Username
			if username == "" {
				username = promptUsername()
				if username == "" {
					ctx.Close()
					return writeCommandError(cmd, fmt.Errorf("username is required"))
				}
				if err := ctx.Store.SetConfig(cmd.Context(), "username", username); err != nil {
					ctx.Close()
					return writeCommandError(cmd, err)
				}
				if _, err := ctx.Store.UpsertMember(cmd.Context(), username, ""); err != nil {
					ctx.Close()
					return writeCommandError(cmd, err)
				}
			}

			// chat.Run closes the store on exit.
			return chat.Run(chat.Options{
				Store:    ctx.Store,
				RoomGUID: ctx.Room.GUID,
				RoomName: ctx.Room.Name,
				Username: username,
			})
		},
	}

	return cmd
}

func promptUsername() string {
	if !isTTY(os.Stdin) {
		return ""
	}
	reader := bufio.NewReader(os.Stdin)
	fmt.Fprint(os.Stdout, "Enter your username: ")
	text, _ := reader.ReadString('\n')
	return strings.TrimSpace(text)
}

func isTTY(file *os.File) bool {
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
