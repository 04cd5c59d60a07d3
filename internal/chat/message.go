package chat

type Message struct {
	Broadcast     bool   `json:"broadcast"`                // true: group; false: private
	Room          string `json:"room,omitempty"`           // group room name
	DestinationId string `json:"destination_id,omitempty"` // private: target client id
	Content       string `json:"content"`                  // message body

	// filled by server before sending
	OriginId   string `json:"origin_id,omitempty"`
	OriginName string `json:"origin_name,omitempty"`
	Ts         int64  `json:"ts,omitempty"`
}

// InboxSignal is a lightweight push telling a client to refresh its inbox;
// it carries no message body.
type InboxSignal struct {
	Kind string `json:"kind"` // "inbox_update"
}

type ThreadKind string

const (
	ThreadPrivate ThreadKind = "private"
	ThreadGroup   ThreadKind = "group"
)

// ThreadPreview is one row of a user's inbox.
type ThreadPreview struct {
	ThreadID string     `json:"thread_id"` // u:<peerNick> or g:<room>
	Kind     ThreadKind `json:"kind"`
	Title    string     `json:"title"`
	LastBody string     `json:"last_body"`
	LastTs   int64      `json:"last_ts"`
	Age      string     `json:"age"` // relative to now, filled on read
	Unread   int        `json:"unread"`
}

// Settings are the per-user inbox settings.
type Settings struct {
	Muted bool `json:"muted"`
}

// RoomInfo is one row of the room directory as seen by a given user.
type RoomInfo struct {
	Room       string `json:"room"`
	Subscribed bool   `json:"subscribed"`
	Owner      string `json:"owner"`
	IsOwner    bool   `json:"is_owner"`
}
