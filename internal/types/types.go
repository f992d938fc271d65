package types

// MessageType represents the source of a message.
type MessageType string

const (
	MessageTypeUser  MessageType = "user"
	MessageTypeEvent MessageType = "event"
)

// Message represents a room message.
type Message struct {
	GUID       string      `json:"guid"`
	RoomID     string      `json:"room_id"`
	TS         int64       `json:"ts"`
	Sender     string      `json:"sender"`
	Body       string      `json:"body"`
	Type       MessageType `json:"type"`
	ThreadRoot *string     `json:"thread_root,omitempty"`
	EditedAt   *int64      `json:"edited_at,omitempty"`
}

// Thread is a snapshot of a conversation rooted at one message.
type Thread struct {
	RootGUID     string   `json:"root_guid"`
	RoomID       string   `json:"room_id"`
	RootMessage  *Message `json:"root_message,omitempty"`
	LastMessage  *Message `json:"last_message,omitempty"`
	ReplyCount   int      `json:"reply_count"`
	LastTS       int64    `json:"last_ts"`
	CreatedAt    int64    `json:"created_at"`
	Participated bool     `json:"participated,omitempty"`
}

// Room represents a named message room.
type Room struct {
	GUID      string `json:"guid"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Member represents a known sender identity.
type Member struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	JoinedAt    int64  `json:"joined_at"`
	LastSeen    int64  `json:"last_seen"`
}

// ThreadFilter selects which threads a list query returns.
type ThreadFilter string

const (
	FilterAll  ThreadFilter = "all"
	FilterMine ThreadFilter = "mine"
)

// Valid reports whether f is a known filter value.
func (f ThreadFilter) Valid() bool {
	return f == FilterAll || f == FilterMine
}

// ConfigEntry represents a key/value config row.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
