package backend

import (
	json "github.com/goccy/go-json"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
)

type addChannelRequest struct {
	ChannelID string `json:"channel_id"`
}

type logsResponse struct {
	Logs []string `json:"logs"`
}

// EventStatusUpdate is the only push event the panel consumes.
const EventStatusUpdate = "status_update"

// Envelope is the frame shape on the push socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// StatusUpdate is the payload of a status_update push event.
type StatusUpdate struct {
	Channels  []domain.ChannelPatch `json:"channels"`
	Timestamp string                `json:"timestamp"`
}

type StreamState string

const (
	StreamConnecting   StreamState = "CONNECTING"
	StreamConnected    StreamState = "CONNECTED"
	StreamDisconnected StreamState = "DISCONNECTED"
	StreamReconnecting StreamState = "RECONNECTING"
	StreamFailed       StreamState = "FAILED"
)

func (s StreamState) String() string {
	return string(s)
}
