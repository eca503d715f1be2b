package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketpal/internal/core"
)

var wib = time.FixedZone("WIB", 7*3600)

func TestWriteTransactionsCSV(t *testing.T) {
	at := time.Date(2024, 3, 6, 9, 30, 0, 0, wib)
	txs := []core.Transaction{
		{ID: 2, Amount: decimal.RequireFromString("25000"), Category: "Transport", Timestamp: at.Add(time.Hour).UnixMilli(), App: "GoPay"},
		{ID: 1, Amount: decimal.RequireFromString("3500.5"), Category: "Food", Timestamp: at.UnixMilli(), Notes: "nasi, goreng"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txs, wib))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,time,category,amount,notes,app", lines[0])
	assert.Equal(t, `1,2024-03-06,09:30,Food,3500.50,"nasi, goreng",`, lines[1])
	assert.Equal(t, "2,2024-03-06,10:30,Transport,25000.00,,GoPay", lines[2])

	// input order is left untouched
	assert.Equal(t, int64(2), txs[0].ID)

	var rows []TransactionRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "nasi, goreng", rows[0].Notes)
}

func TestWriteTransactionsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, nil, wib))
	assert.Equal(t, "id,date,time,category,amount,notes,app\n", buf.String())
}

func TestNewTransactionRow_UsesLocation(t *testing.T) {
	// 2024-03-05 20:00 UTC is already the 6th in WIB.
	ts := time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC).UnixMilli()
	row := NewTransactionRow(core.Transaction{ID: 7, Amount: decimal.NewFromInt(1), Category: "Other", Timestamp: ts}, wib)
	assert.Equal(t, "2024-03-06", row.Date)
	assert.Equal(t, "03:00", row.Time)
	assert.Equal(t, "1.00", row.Amount)
}
