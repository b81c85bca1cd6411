package domain

import (
	"strings"
	"time"
)

// StatusCounters are produced together by the backend and always replaced as a unit.
type StatusCounters struct {
	TotalChannels     int `json:"total_channels"`
	LiveChannels      int `json:"live_channels"`
	RecordingChannels int `json:"recording_channels"`
}

// StatusSnapshot is the latest aggregate status. Counters is nil until the first
// status fetch resolves; Timestamp may be advanced independently by push events.
type StatusSnapshot struct {
	Counters  *StatusCounters
	Timestamp time.Time
}

// StatusPayload is the wire shape of GET /api/status.
type StatusPayload struct {
	Status            string `json:"status,omitempty"`
	TotalChannels     int    `json:"total_channels"`
	LiveChannels      int    `json:"live_channels"`
	RecordingChannels int    `json:"recording_channels"`
	Timestamp         string `json:"timestamp"`
}

func (p StatusPayload) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		Counters: &StatusCounters{
			TotalChannels:     p.TotalChannels,
			LiveChannels:      p.LiveChannels,
			RecordingChannels: p.RecordingChannels,
		},
		Timestamp: ParseTimestamp(p.Timestamp),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC3339 and the zone-less ISO form the recorder emits.
// Unparseable input yields the zero time, which renders as "no update yet".
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
