package identity

import (
	"sync"
	"time"
)

type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event describes a session state transition. Session is nil for sign-out.
type Event struct {
	Type    EventType
	Session *Session
	At      time.Time
}

type Handler func(Event)

// Hub fans session events out to subscribers. Dispatch is asynchronous so a
// slow handler never blocks the auth call that produced the event.
type Hub struct {
	mu       sync.Mutex
	handlers []Handler
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, fn)
}

func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	h.mu.Lock()
	handlers := make([]Handler, len(h.handlers))
	copy(handlers, h.handlers)
	h.mu.Unlock()

	for _, fn := range handlers {
		go fn(evt)
	}
}
