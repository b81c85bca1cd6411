// Package store holds the authoritative in-memory channel list the renderer reads.
//
// Writes are expected to arrive from a single consumer (the panel run loop), in
// the order their triggering events were dequeued. Reads may come from any
// goroutine; the RWMutex only protects readers from torn state.
package store

import (
	"sync"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
)

// ChangeKind names the mutation that triggered a notification.
type ChangeKind string

const (
	ChangeReplace ChangeKind = "replace"
	ChangeMerge   ChangeKind = "merge"
	ChangeRemove  ChangeKind = "remove"
)

// ChangeListener runs synchronously after every mutating call.
type ChangeListener func(kind ChangeKind)

type ChannelStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Channel

	listenersMu sync.RWMutex
	listeners   []ChangeListener
}

func NewChannelStore() *ChannelStore {
	return &ChannelStore{
		byID: make(map[string]domain.Channel),
	}
}

// ReplaceAll establishes ground truth from a full channel-list load. Channels
// absent from the list are discarded; duplicate ids keep their first position
// and the last value.
func (s *ChannelStore) ReplaceAll(channels []domain.Channel) {
	order := make([]string, 0, len(channels))
	byID := make(map[string]domain.Channel, len(channels))
	for _, ch := range channels {
		if ch.ChannelID == "" {
			continue
		}
		if _, seen := byID[ch.ChannelID]; !seen {
			order = append(order, ch.ChannelID)
		}
		byID[ch.ChannelID] = ch.Clone().Normalize()
	}

	s.mu.Lock()
	s.order = order
	s.byID = byID
	s.mu.Unlock()

	s.notify(ChangeReplace)
}

// MergePush applies push deltas in order. Unknown ids are appended with defaults;
// known ids only take the fields present in the patch. Nothing is ever removed.
func (s *ChannelStore) MergePush(patches ...domain.ChannelPatch) {
	applied := 0

	s.mu.Lock()
	for _, p := range patches {
		if p.ChannelID == "" {
			continue
		}
		current, ok := s.byID[p.ChannelID]
		if !ok {
			current = domain.NewChannel(p.ChannelID)
			s.order = append(s.order, p.ChannelID)
		}
		s.byID[p.ChannelID] = current.Apply(p)
		applied++
	}
	s.mu.Unlock()

	if applied > 0 {
		s.notify(ChangeMerge)
	}
}

// Remove deletes the channel; removing an unknown id is a no-op.
func (s *ChannelStore) Remove(channelID string) {
	s.mu.Lock()
	if _, ok := s.byID[channelID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.byID, channelID)
	for i, id := range s.order {
		if id == channelID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(ChangeRemove)
}

// All returns a copy of every channel in insertion order.
func (s *ChannelStore) All() []domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Channel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

// Get returns one channel by id.
func (s *ChannelStore) Get(channelID string) (domain.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.byID[channelID]
	return ch.Clone(), ok
}

// Len returns the number of channels.
func (s *ChannelStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Counts recomputes total and live counters from the store.
func (s *ChannelStore) Counts() (total, live int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if s.byID[id].IsLive {
			live++
		}
	}
	return len(s.order), live
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *ChannelStore) Subscribe(listener ChangeListener) func() {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, listener)
	idx := len(s.listeners) - 1
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

func (s *ChannelStore) notify(kind ChangeKind) {
	s.listenersMu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, listener := range listeners {
		if listener != nil {
			listener(kind)
		}
	}
}
