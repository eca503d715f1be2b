package storage

import (
	"github.com/shopspring/decimal"

	"pocketpal/internal/core"
	"pocketpal/internal/notify"
)

// Index names accepted by QueryByIndexRange.
const (
	IndexID        = "id"
	IndexCategory  = "category"
	IndexTimestamp = "timestamp"
	IndexName      = "name"
)

type transactionRow struct {
	ID        int64           `db:"id"`
	Amount    decimal.Decimal `db:"amount"`
	Category  string          `db:"category"`
	Timestamp int64           `db:"timestamp"`
	Notes     string          `db:"notes"`
	App       string          `db:"app"`
}

type categoryRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func newTransactionsTable(s *Store) *Table[core.Transaction] {
	def := tableDef{
		name:    "transactions",
		columns: []string{"amount", "category", "timestamp", "notes", "app"},
		indexes: map[string]string{
			IndexID:        "id",
			IndexCategory:  "category",
			IndexTimestamp: "timestamp",
		},
		signal: notify.TransactionAdded,
	}
	values := func(tx core.Transaction) []any {
		return []any{tx.Amount.String(), tx.Category, tx.Timestamp, tx.Notes, tx.App}
	}
	toDomain := func(r transactionRow) core.Transaction {
		return core.Transaction{
			ID:        r.ID,
			Amount:    r.Amount,
			Category:  r.Category,
			Timestamp: r.Timestamp,
			Notes:     r.Notes,
			App:       r.App,
		}
	}
	return newTable(s, def, values, toDomain)
}

func newCategoriesTable(s *Store) *Table[core.Category] {
	def := tableDef{
		name:    "categories",
		columns: []string{"name"},
		indexes: map[string]string{
			IndexID:   "id",
			IndexName: "name",
		},
		signal: notify.CategoryAdded,
	}
	values := func(c core.Category) []any {
		return []any{c.Name}
	}
	toDomain := func(r categoryRow) core.Category {
		return core.Category{ID: r.ID, Name: r.Name}
	}
	return newTable(s, def, values, toDomain)
}
