// Package export renders ledger transactions in external formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"pocketpal/internal/core"
)

// TransactionRow is one CSV line. Column order follows the field order.
type TransactionRow struct {
	ID       int64  `csv:"id"`
	Date     string `csv:"date"`
	Time     string `csv:"time"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
	Notes    string `csv:"notes"`
	App      string `csv:"app"`
}

// NewTransactionRow renders t with its date and time in loc.
func NewTransactionRow(t core.Transaction, loc *time.Location) TransactionRow {
	at := t.Time(loc)
	return TransactionRow{
		ID:       t.ID,
		Date:     at.Format("2006-01-02"),
		Time:     at.Format("15:04"),
		Category: t.Category,
		Amount:   t.Amount.StringFixed(2),
		Notes:    t.Notes,
		App:      t.App,
	}
}

// WriteTransactionsCSV writes txs to w in id order, header first. An empty
// ledger still produces the header line.
func WriteTransactionsCSV(w io.Writer, txs []core.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	sorted := sortedByID(txs)
	rows := make([]TransactionRow, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, NewTransactionRow(t, loc))
	}

	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}
	return nil
}

func sortedByID(txs []core.Transaction) []core.Transaction {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
