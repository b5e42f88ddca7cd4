// Package bridge connects a surface to the relay, in-process or over the
// relay's websocket endpoint. Delivery is fire-and-forget.
package bridge

import (
	"context"
	"errors"
	"sync"

	"tray-kanban/internal/relay"
)

type Handler func(relay.Message)

type Bridge interface {
	// Send publishes payload under topic. Only sync-state and perform-undo
	// are meaningful from a surface.
	Send(topic relay.Topic, payload []byte) error
	// Receive installs h for topic, replacing any earlier handler. Handlers
	// run on the bridge's delivery goroutine.
	Receive(topic relay.Topic, h Handler)
	// BoardState pulls the relay's current payload (nil when it has none).
	BoardState(ctx context.Context) ([]byte, error)
	Close() error
}

var ErrClosed = errors.New("bridge: closed")

// handlers is the topic->handler table shared by both implementations.
type handlers struct {
	mu sync.RWMutex
	m  map[relay.Topic]Handler
}

func (h *handlers) set(topic relay.Topic, fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.m == nil {
		h.m = map[relay.Topic]Handler{}
	}
	if fn == nil {
		delete(h.m, topic)
		return
	}
	h.m[topic] = fn
}

func (h *handlers) dispatch(msg relay.Message) bool {
	h.mu.RLock()
	fn := h.m[msg.Topic]
	h.mu.RUnlock()
	if fn == nil {
		return false
	}
	fn(msg)
	return true
}
