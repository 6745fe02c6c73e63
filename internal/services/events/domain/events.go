// Package domain defines the notification types routed to event streams
package domain

import "context"

// Event names carried on the wire
const (
	EventReady        = "ready"
	EventChannelAdded = "channel_added"
	EventVideoAdded   = "video_added"
)

// QueueSize is the default per routing key bound
const QueueSize = 2000

// AddedEvent names the notification for a share of kind
func AddedEvent(kind string) string {
	if kind == "channel" {
		return EventChannelAdded
	}
	return EventVideoAdded
}

// SharePayload is the data of a channel_added or video_added message
type SharePayload struct {
	Kind       string  `json:"kind"`
	Platform   string  `json:"platform"`
	ExternalID *string `json:"external_id"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	TS         int64   `json:"ts"`
	Supabase   bool    `json:"supabase"`
}

// Publisher enqueues a message for a routing key. It never blocks; false
// means the message was dropped
type Publisher interface {
	Publish(routeKey, event string, payload any) bool
}

// Streamer writes a routing key's stream until ctx ends
type Streamer interface {
	Stream(ctx context.Context, routeKey string, w StreamWriter) error
}

// StreamWriter is the sink for one connection; Flush pushes buffered bytes
type StreamWriter interface {
	WriteString(s string) (int, error)
	Flush()
}
