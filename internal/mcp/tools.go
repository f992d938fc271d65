package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/format"
	"github.com/adamavenir/skein/internal/store"
	"github.com/adamavenir/skein/internal/threadlist"
	"github.com/adamavenir/skein/internal/types"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const toolPreviewWidth = 80

// ToolContext carries the shared state tool handlers need.
type ToolContext struct {
	Store   *store.Store
	Project core.Project
}

type threadsArgs struct {
	Room   string `json:"room,omitempty" jsonschema:"Room name or GUID. The default room is used when omitted."`
	Filter string `json:"filter,omitempty" jsonschema:"Which threads to list: all or mine (default: all)"`
	User   string `json:"user,omitempty" jsonschema:"Username participation is computed for (default: the project's configured username)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of threads to return (default: 20)"`
}

type threadArgs struct {
	Thread string `json:"thread" jsonschema:"Thread root message GUID or unique prefix. A reply GUID resolves to its thread."`
}

// RegisterTools registers the skein tools on an MCP server.
func RegisterTools(server *mcp.Server, ctx *ToolContext) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "skein_threads",
		Description: "List conversation threads in a room, newest activity first. Filter by participation with filter=mine.",
	}, func(callCtx context.Context, _ *mcp.CallToolRequest, args threadsArgs) (*mcp.CallToolResult, any, error) {
		return handleThreads(callCtx, *ctx, args), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "skein_thread",
		Description: "Read one thread: its root message and every reply in order.",
	}, func(callCtx context.Context, _ *mcp.CallToolRequest, args threadArgs) (*mcp.CallToolResult, any, error) {
		return handleThread(callCtx, *ctx, args), nil, nil
	})
}

func handleThreads(ctx context.Context, tc ToolContext, args threadsArgs) *mcp.CallToolResult {
	room, result := resolveToolRoom(ctx, tc, args.Room)
	if result != nil {
		return result
	}

	filter := types.FilterAll
	switch strings.ToLower(strings.TrimSpace(args.Filter)) {
	case "", "all":
	case "mine":
		filter = types.FilterMine
	default:
		return toolError(fmt.Sprintf("Error: Unknown filter %q (use all or mine)", args.Filter))
	}

	user, err := resolveToolUser(ctx, tc, args.User)
	if err != nil {
		return toolError(err.Error())
	}
	if filter == types.FilterMine && user == "" {
		return toolError("Error: filter=mine needs a user (pass one or configure a username)")
	}

	engine := threadlist.New(threadlist.Options{
		Store:     tc.Store,
		Formatter: format.New(toolPreviewWidth),
		RoomGUID:  room.GUID,
		User:      user,
	})
	defer engine.Close()

	if filter == types.FilterMine {
		engine.SelectFilter(types.FilterMine)
	} else {
		engine.LoadData(true)
	}

	switch st := engine.State().(type) {
	case threadlist.Loaded:
		rows := st.Rows
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}
		header := fmt.Sprintf("Threads in %s (%d):", room.Name, len(rows))
		return toolResult(header+"\n\n"+formatThreadRows(rows), false)
	case threadlist.Empty:
		return toolResult(st.Reason.Title, false)
	default:
		return toolError(fmt.Sprintf("Error: could not load threads for %s", room.Name))
	}
}

func handleThread(ctx context.Context, tc ToolContext, args threadArgs) *mcp.CallToolResult {
	ref := sanitizeRef(args.Thread)
	if ref == "" {
		return toolError("Error: thread reference cannot be empty")
	}

	msg, err := tc.Store.ResolveMessage(ctx, ref)
	if err != nil {
		return toolError(err.Error())
	}
	if msg == nil {
		return toolError(fmt.Sprintf("Error: Message not found: %s", ref))
	}

	rootGUID := msg.GUID
	if msg.ThreadRoot != nil {
		rootGUID = *msg.ThreadRoot
	}

	thread, err := tc.Store.GetThread(ctx, rootGUID, "")
	if err != nil {
		return toolError(err.Error())
	}
	if thread == nil {
		return toolResult(fmt.Sprintf("No thread rooted at #%s (no replies yet)", rootGUID), false)
	}

	messages, err := tc.Store.ThreadMessages(ctx, rootGUID)
	if err != nil {
		return toolError(err.Error())
	}

	header := fmt.Sprintf("Thread #%s (%d messages):", rootGUID, len(messages))
	return toolResult(header+"\n\n"+formatThreadMessages(messages), false)
}

func resolveToolRoom(ctx context.Context, tc ToolContext, ref string) (types.Room, *mcp.CallToolResult) {
	if ref != "" {
		room, err := tc.Store.ResolveRoom(ctx, ref)
		if err != nil {
			return types.Room{}, toolError(err.Error())
		}
		if room == nil {
			return types.Room{}, toolError(fmt.Sprintf("Error: Room not found: %s", ref))
		}
		return *room, nil
	}

	room, err := tc.Store.DefaultRoom(ctx)
	if err != nil {
		return types.Room{}, toolError(err.Error())
	}
	if room == nil {
		return types.Room{}, toolError("Error: no rooms yet. Run 'skein init' first")
	}
	return *room, nil
}

func resolveToolUser(ctx context.Context, tc ToolContext, user string) (string, error) {
	user = strings.TrimPrefix(strings.TrimSpace(user), "@")
	if user != "" {
		return user, nil
	}
	return tc.Store.GetConfig(ctx, "username")
}

func formatThreadRows(rows []threadlist.RowViewModel) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		line := fmt.Sprintf("[#%s]", row.RootGUID)
		if row.RootSender != "" {
			line += " @" + row.RootSender + ":"
		}
		if row.RootText != "" {
			line += " " + row.RootText
		}

		meta := make([]string, 0, 3)
		meta = append(meta, row.ReplySummary)
		if row.LastText != "" {
			last := row.LastText
			if row.LastSender != "" {
				last = "@" + row.LastSender + ": " + last
			}
			meta = append(meta, "last "+last)
		}
		if row.LastActive != "" {
			meta = append(meta, row.LastActive)
		}
		line += " (" + strings.Join(meta, " · ") + ")"

		if row.Participated {
			line = "● " + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatThreadMessages(messages []types.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Type == types.MessageTypeEvent {
			lines = append(lines, fmt.Sprintf("[#%s] %s", msg.GUID, msg.Body))
			continue
		}
		lines = append(lines, fmt.Sprintf("[#%s] @%s: %s", msg.GUID, msg.Sender, msg.Body))
	}
	return strings.Join(lines, "\n")
}

func toolResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

func toolError(text string) *mcp.CallToolResult {
	return toolResult(text, true)
}

func sanitizeRef(value string) string {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, "@")
	trimmed = strings.TrimPrefix(trimmed, "#")
	return trimmed
}
