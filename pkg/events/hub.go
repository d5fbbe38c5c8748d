// Package events is a small pub/sub hub feeding the daemon's SSE stream.
package events

import (
	"encoding/json"
	"sync"
)

// Hub fans events out to subscribers. A nil *Hub is valid and drops
// everything, so publishers never need to check for one.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish marshals the payload and delivers it to all subscribers. Slow
// subscribers have the event dropped rather than blocking the publisher.
func (h *Hub) Publish(name string, payload any) {
	if h == nil {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := Event{Name: name, Data: b}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
