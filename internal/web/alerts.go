package web

import (
	"time"

	"github.com/google/uuid"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
)

// AlertBoard keeps transient operator notifications, oldest first.
type AlertBoard struct {
	alerts   []domain.Alert
	lifetime time.Duration
	limit    int
}

func NewAlertBoard(lifetime time.Duration, limit int) *AlertBoard {
	return &AlertBoard{lifetime: lifetime, limit: limit}
}

// Push adds an alert and drops the oldest ones beyond the limit.
func (b *AlertBoard) Push(kind domain.AlertKind, message string, now time.Time) domain.Alert {
	alert := domain.Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
	if b.lifetime > 0 {
		alert.ExpiresAt = now.Add(b.lifetime)
	}
	b.alerts = append(b.alerts, alert)
	if b.limit > 0 && len(b.alerts) > b.limit {
		b.alerts = append([]domain.Alert(nil), b.alerts[len(b.alerts)-b.limit:]...)
	}
	return alert
}

func (b *AlertBoard) Dismiss(id string) bool {
	for i, a := range b.alerts {
		if a.ID == id {
			b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Expire removes every alert past its lifetime and reports whether any went.
func (b *AlertBoard) Expire(now time.Time) bool {
	kept := b.alerts[:0]
	for _, a := range b.alerts {
		if !a.Expired(now) {
			kept = append(kept, a)
		}
	}
	removed := len(kept) != len(b.alerts)
	b.alerts = kept
	return removed
}

func (b *AlertBoard) List() []domain.Alert {
	out := make([]domain.Alert, len(b.alerts))
	copy(out, b.alerts)
	return out
}
