// Package notify carries the ledger's change signals from the store to any
// number of in-process subscribers.
package notify

import (
	"sync"
	"time"
)

// Kind names a change signal.
type Kind string

const (
	TransactionAdded Kind = "transaction-added"
	CategoryAdded    Kind = "category-added"
)

// Event is a payload-free change signal. Subscribers re-read state themselves.
type Event struct {
	Kind Kind
	At   time.Time
}

// Handler receives events synchronously on the publishing goroutine.
type Handler func(Event)

// Hub is a fan-out of change signals. It never coalesces: every Publish
// reaches every handler registered at that moment, in subscription order.
type Hub struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers []subscription
}

type subscription struct {
	id uint64
	fn Handler
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function removing it. The returned
// function is safe to call more than once.
func (h *Hub) Subscribe(fn Handler) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.handlers = append(h.handlers, subscription{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.handlers {
		if s.id == id {
			h.handlers = append(h.handlers[:i:i], h.handlers[i+1:]...)
			return
		}
	}
}

// Publish delivers kind to all current subscribers.
func (h *Hub) Publish(kind Kind) {
	h.mu.RLock()
	snapshot := make([]subscription, len(h.handlers))
	copy(snapshot, h.handlers)
	h.mu.RUnlock()

	ev := Event{Kind: kind, At: time.Now()}
	for _, s := range snapshot {
		s.fn(ev)
	}
}

// Subscribers returns the number of registered handlers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}
