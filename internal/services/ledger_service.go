package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocketpal/internal/calendar"
	"pocketpal/internal/core"
	"pocketpal/internal/log"
	"pocketpal/internal/notify"
	"pocketpal/internal/storage"
)

// Clock returns the reference instant. Its location drives all calendar
// arithmetic.
type Clock func() time.Time

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// LedgerService turns drafts into stored transactions and serves the raw
// reads every report is computed from.
type LedgerService struct {
	store      *storage.Store
	categories *CategoryRegistry
	clock      Clock
}

func NewLedgerService(store *storage.Store, categories *CategoryRegistry, clock Clock) *LedgerService {
	if clock == nil {
		clock = SystemClock(time.Local)
	}
	return &LedgerService{
		store:      store,
		categories: categories,
		clock:      clock,
	}
}

// Now returns the service's reference instant.
func (s *LedgerService) Now() time.Time {
	return s.clock()
}

// AddTransaction validates d, stamps it and persists it. A draft dated today
// keeps the insertion instant; any other date is stored at local midnight.
func (s *LedgerService) AddTransaction(ctx context.Context, d core.Draft) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", core.ErrInvalidDraft, err)
	}

	tx := core.Transaction{
		Amount:    amount,
		Category:  strings.TrimSpace(d.Category),
		Timestamp: calendar.ResolveTimestamp(d.Date, s.clock()),
		Notes:     strings.TrimSpace(d.Notes),
		App:       strings.TrimSpace(d.App),
	}

	id, err := s.store.Transactions().Insert(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogTransactionCreated(ctx, id, tx.Amount.String(), tx.Category, tx.Timestamp)

	return id, nil
}

// GetTransactionsInRange returns transactions with start <= timestamp < end,
// ordered by timestamp.
func (s *LedgerService) GetTransactionsInRange(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	txs, err := s.store.Transactions().QueryByIndexRange(ctx, storage.IndexTimestamp,
		storage.HalfOpen(start.UnixMilli(), end.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("get transactions in range: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) GetTransactionsInWindow(ctx context.Context, w calendar.Window) ([]core.Transaction, error) {
	return s.GetTransactionsInRange(ctx, w.Start, w.End)
}

// GetAllTransactions returns every transaction in insertion order.
func (s *LedgerService) GetAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.Transactions().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	return txs, nil
}

// GetTransactionsByCategory returns the transactions tagged with exactly category.
func (s *LedgerService) GetTransactionsByCategory(ctx context.Context, category string) ([]core.Transaction, error) {
	txs, err := s.store.Transactions().QueryByIndexRange(ctx, storage.IndexCategory, storage.Only(category))
	if err != nil {
		return nil, fmt.Errorf("get transactions by category: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) GetCategories(ctx context.Context) ([]core.Category, error) {
	return s.categories.List(ctx)
}

func (s *LedgerService) AddCategory(ctx context.Context, name string) (int64, error) {
	return s.categories.AddCategory(ctx, name)
}

// Subscribe registers fn for change signals.
func (s *LedgerService) Subscribe(fn notify.Handler) func() {
	return s.store.Notifications().Subscribe(fn)
}

func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
