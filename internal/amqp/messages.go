package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pocketpal/internal/notify"
)

// LedgerEventMessage is the wire form of a change signal. It carries no
// ledger data; consumers re-read the store.
type LedgerEventMessage struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLedgerEventMessage wraps ev with a fresh message id
func NewLedgerEventMessage(ev notify.Event) *LedgerEventMessage {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return &LedgerEventMessage{
		ID:         uuid.NewString(),
		Event:      string(ev.Kind),
		OccurredAt: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
