package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"pocketpal/internal/core"
)

// transactionView is the JSON form of a transaction. Display carries the
// rupiah rendering for thin clients.
type transactionView struct {
	ID        int64     `json:"id"`
	Amount    string    `json:"amount"`
	Display   string    `json:"display"`
	Category  string    `json:"category"`
	Timestamp int64     `json:"timestamp"`
	Time      time.Time `json:"time"`
	Notes     string    `json:"notes,omitempty"`
	App       string    `json:"app,omitempty"`
}

func newTransactionView(t core.Transaction, loc *time.Location) transactionView {
	return transactionView{
		ID:        t.ID,
		Amount:    t.Amount.StringFixed(2),
		Display:   core.FormatRupiah(t.Amount),
		Category:  t.Category,
		Timestamp: t.Timestamp,
		Time:      t.Time(loc),
		Notes:     t.Notes,
		App:       t.App,
	}
}

func newTransactionViews(txs []core.Transaction, loc *time.Location) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, newTransactionView(t, loc))
	}
	return views
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
