package domain

import "time"

type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertDanger  AlertKind = "danger"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
)

// Alert is a transient operator notification.
type Alert struct {
	ID        string
	Kind      AlertKind
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (a Alert) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

// CommandResult is the wire shape of every backend command response.
type CommandResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Channel *Channel `json:"channel,omitempty"`
}
