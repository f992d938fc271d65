package chat

import (
	"context"
	"hash/fnv"
	"sort"

	"github.com/adamavenir/skein/internal/store"
	"github.com/adamavenir/skein/internal/types"
	"github.com/charmbracelet/lipgloss"
)

var senderPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

// buildColorMap assigns palette colors to the senders seen most recently,
// keyed by display name so the list and thread screens agree.
func buildColorMap(ctx context.Context, st *store.Store, roomGUID string, lookback int, members map[string]string) (map[string]lipgloss.Color, error) {
	messages, err := st.RecentMessages(ctx, roomGUID, lookback)
	if err != nil {
		return nil, err
	}

	lastSeen := map[string]int64{}
	for _, msg := range messages {
		if msg.Type != types.MessageTypeUser {
			continue
		}
		name := displayFor(msg.Sender, members)
		if ts, ok := lastSeen[name]; !ok || msg.TS > ts {
			lastSeen[name] = msg.TS
		}
	}

	ordered := make([]string, 0, len(lastSeen))
	for name := range lastSeen {
		ordered = append(ordered, name)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return lastSeen[ordered[i]] > lastSeen[ordered[j]]
	})

	colorMap := make(map[string]lipgloss.Color)
	for idx, name := range ordered {
		colorMap[name] = senderPalette[idx%len(senderPalette)]
	}
	return colorMap, nil
}

func colorForSender(name string, colorMap map[string]lipgloss.Color) lipgloss.Color {
	if color, ok := colorMap[name]; ok {
		return color
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	idx := int(h.Sum32()) % len(senderPalette)
	return senderPalette[idx]
}

func displayFor(sender string, members map[string]string) string {
	if name, ok := members[sender]; ok && name != "" {
		return name
	}
	return sender
}

func (m *Model) refreshMembers() {
	ctx := context.Background()
	members, err := m.store.MemberNames(ctx)
	if err != nil {
		return
	}
	m.members = members
	if colorMap, err := buildColorMap(ctx, m.store, m.roomGUID, 50, members); err == nil {
		m.colorMap = colorMap
	}
}
