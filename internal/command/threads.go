package command

import (
	"encoding/json"
	"fmt"

	"github.com/adamavenir/skein/internal/format"
	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
)

type threadRow struct {
	RootGUID     string `json:"root_guid"`
	RootSender   string `json:"root_sender,omitempty"`
	RootText     string `json:"root_text,omitempty"`
	LastSender   string `json:"last_sender,omitempty"`
	LastText     string `json:"last_text,omitempty"`
	LastActive   string `json:"last_active,omitempty"`
	ReplySummary string `json:"reply_summary"`
	Participated bool   `json:"participated"`
}

// NewThreadsCmd creates the threads listing command.
func NewThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List threads in the room",
		RunE: func(cmd *cobra.Command, args []string) error {
			mine, _ := cmd.Flags().GetBool("mine")
			match, _ := cmd.Flags().GetString("match")

			var matcher glob.Glob
			if match != "" {
				compiled, err := glob.Compile(match)
				if err != nil {
					return writeCommandError(cmd, fmt.Errorf("invalid --match pattern: %w", err))
				}
				matcher = compiled
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			engine := threadlist.New(threadlist.Options{
				Store:     ctx.Store,
				Formatter: format.New(0),
				RoomGUID:  ctx.Room.GUID,
				User:      ctx.Username,
			})
			defer engine.Close()

			if mine {
				engine.SelectFilter(types.FilterMine)
			} else {
				engine.LoadData(true)
			}

			switch st := engine.State().(type) {
			case threadlist.Loaded:
				rows := st.Rows
				if matcher != nil {
					rows = matchRows(rows, matcher)
				}
				return outputThreadRows(cmd, ctx, rows)
			case threadlist.Empty:
				if ctx.JSONMode {
					return json.NewEncoder(cmd.OutOrStdout()).Encode([]threadRow{})
				}
				fmt.Fprintln(cmd.OutOrStdout(), st.Reason.Title)
				return nil
			default:
				return writeCommandError(cmd, fmt.Errorf("could not load threads for %s", ctx.Room.Name))
			}
		},
	}

	cmd.Flags().Bool("mine", false, "only threads you started or replied in")
	cmd.Flags().String("match", "", "filter by glob against root text or sender")

	return cmd
}

func matchRows(rows []threadlist.RowViewModel, matcher glob.Glob) []threadlist.RowViewModel {
	matched := make([]threadlist.RowViewModel, 0, len(rows))
	for _, row := range rows {
		if matcher.Match(row.RootText) || matcher.Match(row.RootSender) {
			matched = append(matched, row)
		}
	}
	return matched
}

func outputThreadRows(cmd *cobra.Command, ctx *CommandContext, rows []threadlist.RowViewModel) error {
	out := cmd.OutOrStdout()

	if ctx.JSONMode {
		payload := make([]threadRow, 0, len(rows))
		for _, row := range rows {
			payload = append(payload, threadRow{
				RootGUID:     row.RootGUID,
				RootSender:   row.RootSender,
				RootText:     row.RootText,
				LastSender:   row.LastSender,
				LastText:     row.LastText,
				LastActive:   row.LastActive,
				ReplySummary: row.ReplySummary,
				Participated: row.Participated,
			})
		}
		return json.NewEncoder(out).Encode(payload)
	}

	if len(rows) == 0 {
		fmt.Fprintln(out, "No threads match")
		return nil
	}

	fmt.Fprintf(out, "Threads in %s:\n", ctx.Room.Name)
	for _, row := range rows {
		marker := " "
		if row.Participated {
			marker = "●"
		}
		head := row.RootText
		if row.RootSender != "" {
			head = row.RootSender + ": " + head
		}
		detail := row.ReplySummary
		if row.LastActive != "" {
			detail += " · " + row.LastActive
		}
		fmt.Fprintf(out, " %s [%s] %s (%s)\n", marker, row.RootGUID, head, detail)
	}
	return nil
}
