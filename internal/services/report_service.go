package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pocketpal/internal/aggregate"
	"pocketpal/internal/calendar"
	"pocketpal/internal/core"
	"pocketpal/internal/ports"
)

// DefaultRecentLimit is the dashboard's recent transaction count.
const DefaultRecentLimit = 3

var weekTrendLabels = []string{"3 Weeks Ago", "2 Weeks Ago", "Last Week", "This Week"}

// ReportService recomputes every view from raw rows on each call.
type ReportService struct {
	ledger      ports.TransactionReader
	recentLimit int
}

func NewReportService(ledger ports.TransactionReader, recentLimit int) *ReportService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &ReportService{ledger: ledger, recentLimit: recentLimit}
}

func (s *ReportService) window(ctx context.Context, w calendar.Window) ([]core.Transaction, error) {
	return s.ledger.GetTransactionsInRange(ctx, w.Start, w.End)
}

// Dashboard returns today's, this week's and this month's totals. The three
// windows are read concurrently.
func (s *ReportService) Dashboard(ctx context.Context, now time.Time) (core.DashboardSummary, error) {
	windows := []calendar.Window{calendar.DayWindow(now), calendar.WeekWindow(now), calendar.MonthWindow(now)}
	totals := make([]decimal.Decimal, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range windows {
		g.Go(func() error {
			txs, err := s.window(gctx, w)
			if err != nil {
				return err
			}
			totals[i] = aggregate.TotalOf(txs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard: %w", err)
	}

	return core.DashboardSummary{Today: totals[0], Week: totals[1], Month: totals[2]}, nil
}

// Period builds the report of the day, week or month containing now.
func (s *ReportService) Period(ctx context.Context, p core.Period, now time.Time) (core.PeriodReport, error) {
	strategy, err := calendar.StrategyFor(p)
	if err != nil {
		return core.PeriodReport{}, err
	}
	w := strategy.Window(now)
	txs, err := s.window(ctx, w)
	if err != nil {
		return core.PeriodReport{}, fmt.Errorf("%s report: %w", p, err)
	}

	return core.PeriodReport{
		Period:     p,
		Start:      w.Start,
		End:        w.End,
		Total:      aggregate.TotalOf(txs),
		ByCategory: aggregate.RankCategories(aggregate.SumByCategory(txs)),
		Buckets:    aggregate.SumByBucket(txs, strategy.Bucketer(now), strategy.Buckets(now)),
		Recent:     aggregate.TopRecent(txs, s.recentLimit),
	}, nil
}

// WeekTrend totals the current week and the three before it, oldest first.
func (s *ReportService) WeekTrend(ctx context.Context, now time.Time) ([]core.WeekTotal, error) {
	weeks := calendar.PreviousWeeks(now, len(weekTrendLabels))
	txs, err := s.ledger.GetTransactionsInRange(ctx, weeks[0].Start, weeks[len(weeks)-1].End)
	if err != nil {
		return nil, fmt.Errorf("week trend: %w", err)
	}

	buckets := make([][]core.Transaction, len(weeks))
	for _, tx := range txs {
		for i, w := range weeks {
			if w.Contains(tx.Timestamp) {
				buckets[i] = append(buckets[i], tx)
				break
			}
		}
	}

	trend := make([]core.WeekTotal, len(weeks))
	for i, w := range weeks {
		trend[i] = core.WeekTotal{
			Label: weekTrendLabels[i],
			Start: w.Start,
			Total: aggregate.TotalOf(buckets[i]),
		}
	}
	return trend, nil
}

// MonthComparison compares this month's spending with last month's.
func (s *ReportService) MonthComparison(ctx context.Context, now time.Time) (core.MonthComparison, error) {
	var last, this []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		last, err = s.window(gctx, calendar.PreviousMonthWindow(now))
		return err
	})
	g.Go(func() error {
		var err error
		this, err = s.window(gctx, calendar.MonthWindow(now))
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthComparison{}, fmt.Errorf("month comparison: %w", err)
	}

	lastTotal, thisTotal := aggregate.TotalOf(last), aggregate.TotalOf(this)
	return core.MonthComparison{
		LastMonth:     lastTotal,
		ThisMonth:     thisTotal,
		PercentChange: aggregate.PercentChange(lastTotal, thisTotal),
	}, nil
}

// Recent returns the n most recent transactions across the whole ledger.
func (s *ReportService) Recent(ctx context.Context, n int) ([]core.Transaction, error) {
	if n <= 0 {
		n = s.recentLimit
	}
	txs, err := s.ledger.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return aggregate.TopRecent(txs, n), nil
}
