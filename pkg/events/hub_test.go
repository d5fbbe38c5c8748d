package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(MonitorTrip, MonitorTripEvent{Cause: "current", Ts: 1})

	for _, ch := range []chan Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Name != MonitorTrip {
				t.Errorf("event name = %q, want %q", ev.Name, MonitorTrip)
			}
			payload, err := DecodeAs[MonitorTripEvent](ev)
			if err != nil {
				t.Fatalf("decoding payload: %v", err)
			}
			if payload.Cause != "current" {
				t.Errorf("cause = %q, want current", payload.Cause)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Double unsubscribe must not panic on the closed channel.
	h.Unsubscribe(ch)
}

func TestPublishOnNilHub(t *testing.T) {
	var h *Hub
	h.Publish(MonitorState, MonitorStateEvent{From: "Idle", To: "Running"})
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < 100; i++ {
		h.Publish(MonitorState, MonitorStateEvent{Ts: int64(i)})
	}

	// Buffered up to capacity, the rest dropped, publisher never blocked.
	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered events = %d, want %d", got, cap(ch))
	}
}
