package ports

import (
	"context"
	"time"

	"pocketpal/internal/core"
	"pocketpal/internal/notify"
)

// Ports consumed by the outer surfaces (HTTP, CLI, relay).
type (
	TransactionWriter interface {
		AddTransaction(ctx context.Context, d core.Draft) (id int64, err error)
	}

	TransactionReader interface {
		// GetTransactionsInRange returns transactions with start <= timestamp < end.
		GetTransactionsInRange(ctx context.Context, start, end time.Time) ([]core.Transaction, error)
		GetAllTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	CategoryStore interface {
		GetCategories(ctx context.Context) ([]core.Category, error)
		AddCategory(ctx context.Context, name string) (id int64, err error)
	}

	// ChangeSubscriber delivers a signal after every committed write.
	ChangeSubscriber interface {
		Subscribe(fn notify.Handler) (unsubscribe func())
	}

	// ReportReader computes the dashboard and report views from raw rows.
	ReportReader interface {
		Dashboard(ctx context.Context, now time.Time) (core.DashboardSummary, error)
		Period(ctx context.Context, p core.Period, now time.Time) (core.PeriodReport, error)
		WeekTrend(ctx context.Context, now time.Time) ([]core.WeekTotal, error)
		MonthComparison(ctx context.Context, now time.Time) (core.MonthComparison, error)
		Recent(ctx context.Context, n int) ([]core.Transaction, error)
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)
