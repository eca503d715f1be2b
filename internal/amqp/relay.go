package amqp

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"pocketpal/internal/notify"
)

// Publisher is the outbound side of the relay.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, msg *LedgerEventMessage) error
}

// Relay forwards change signals to a Publisher from a single background
// goroutine. Handle never blocks the writer that emitted the signal: when
// the queue is full the signal is dropped and counted.
type Relay struct {
	publisher Publisher
	queue     chan notify.Event
	done      chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	sent    atomic.Int64
}

func NewRelay(publisher Publisher, buffer int) *Relay {
	if buffer < 1 {
		buffer = 1
	}
	return &Relay{
		publisher: publisher,
		queue:     make(chan notify.Event, buffer),
		done:      make(chan struct{}),
	}
}

// Handle enqueues ev. It is meant to be registered with a notify.Hub.
func (r *Relay) Handle(ev notify.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- ev:
	default:
		r.dropped.Add(1)
		slog.Warn("Relay queue full, dropping ledger event", "event", string(ev.Kind))
	}
}

// Run publishes queued events until Close drains the queue. Publish errors
// are logged; the signal is not retried.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)
	for ev := range r.queue {
		msg := NewLedgerEventMessage(ev)
		if err := r.publisher.PublishLedgerEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to relay ledger event",
				"event", msg.Event,
				"message_id", msg.ID,
				"error", err)
			continue
		}
		r.sent.Add(1)
	}
}

// Close stops accepting events and waits for Run to drain the queue.
// Run must have been started.
func (r *Relay) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}

// Dropped returns how many events were discarded because the queue was full.
func (r *Relay) Dropped() int64 { return r.dropped.Load() }

// Sent returns how many events were published.
func (r *Relay) Sent() int64 { return r.sent.Load() }
