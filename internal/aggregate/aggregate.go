// Package aggregate reduces transaction lists into totals, category sums,
// bucket series and recency lists. Every function is pure and recomputes from
// its input; nothing is cached between calls.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"pocketpal/internal/calendar"
	"pocketpal/internal/core"
)

var hundred = decimal.NewFromInt(100)

// SumByCategory sums amounts per exact category string. Categories without
// transactions are absent from the result.
func SumByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}
	return sums
}

// SumByBucket sums amounts into count zero-initialized buckets. A bucketer
// returning an index outside [0, count) is a programming error and panics.
func SumByBucket(txs []core.Transaction, bucket calendar.Bucketer, count int) []decimal.Decimal {
	sums := make([]decimal.Decimal, count)
	for i := range sums {
		sums[i] = decimal.Zero
	}
	for _, tx := range txs {
		idx := bucket(tx.Timestamp)
		if idx < 0 || idx >= count {
			panic(fmt.Sprintf("aggregate: bucket index %d out of range [0,%d) for transaction %d", idx, count, tx.ID))
		}
		sums[idx] = sums[idx].Add(tx.Amount)
	}
	return sums
}

// TopRecent returns the n transactions with the largest timestamps, newest
// first. Equal timestamps keep their input order. The input is not modified.
func TopRecent(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 || len(txs) == 0 {
		return []core.Transaction{}
	}
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// TotalOf sums all amounts; zero for an empty input.
func TotalOf(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// RankCategories orders category sums by amount descending, then name.
func RankCategories(sums map[string]decimal.Decimal) []core.CategoryAmount {
	ranked := make([]core.CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		ranked = append(ranked, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// PercentChange returns (cur-prev)/prev*100 rounded to one decimal, or nil
// when prev is zero.
func PercentChange(prev, cur decimal.Decimal) *decimal.Decimal {
	if prev.IsZero() {
		return nil
	}
	change := cur.Sub(prev).Div(prev).Mul(hundred).Round(1)
	return &change
}
