package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"pocketpal/internal/core"
	"pocketpal/internal/log"
)

type summaryView struct {
	Today      string            `json:"today"`
	Week       string            `json:"week"`
	Month      string            `json:"month"`
	Display    map[string]string `json:"display"`
	Recent     []transactionView `json:"recent"`
	ComputedAt time.Time         `json:"computed_at"`
}

// handleSummary serves the dashboard: rolling totals plus recent entries.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.ledger.Now()

	summary, err := s.reports.Dashboard(ctx, now)
	if err != nil {
		s.logLedgerError(ctx, "Failed to compute summary", err, log.OpReport)
		LedgerError(err).Write(w)
		return
	}
	recent, err := s.reports.Recent(ctx, s.recentLimit)
	if err != nil {
		s.logLedgerError(ctx, "Failed to read recent transactions", err, log.OpReport)
		LedgerError(err).Write(w)
		return
	}

	NewJSONResponse().Body(summaryView{
		Today: summary.Today.StringFixed(2),
		Week:  summary.Week.StringFixed(2),
		Month: summary.Month.StringFixed(2),
		Display: map[string]string{
			"today": core.FormatRupiah(summary.Today),
			"week":  core.FormatRupiah(summary.Week),
			"month": core.FormatRupiah(summary.Month),
		},
		Recent:     newTransactionViews(recent, now.Location()),
		ComputedAt: now,
	}).Write(w)
}

type categoryAmountView struct {
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

type periodReportView struct {
	Period     core.Period          `json:"period"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	Total      string               `json:"total"`
	Display    string               `json:"display"`
	ByCategory []categoryAmountView `json:"by_category"`
	Buckets    []string             `json:"buckets"`
	Recent     []transactionView    `json:"recent"`
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period, ok := core.ParsePeriod(r.PathValue("period"))
	if !ok {
		NotFoundError("unknown period, expected day, week or month").Write(w)
		return
	}

	now := s.ledger.Now()
	report, err := s.reports.Period(ctx, period, now)
	if err != nil {
		s.logLedgerError(ctx, "Failed to compute period report", err, log.OpReport)
		LedgerError(err).Write(w)
		return
	}

	view := periodReportView{
		Period:     report.Period,
		Start:      report.Start,
		End:        report.End,
		Total:      report.Total.StringFixed(2),
		Display:    core.FormatRupiah(report.Total),
		ByCategory: make([]categoryAmountView, 0, len(report.ByCategory)),
		Buckets:    fixedAmounts(report.Buckets),
		Recent:     newTransactionViews(report.Recent, now.Location()),
	}
	for _, c := range report.ByCategory {
		view.ByCategory = append(view.ByCategory, categoryAmountView{
			Name:    c.Name,
			Amount:  c.Amount.StringFixed(2),
			Display: core.FormatRupiah(c.Amount),
		})
	}
	NewJSONResponse().Body(view).Write(w)
}

type weekTotalView struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Total   string    `json:"total"`
	Display string    `json:"display"`
}

func (s *Server) handleWeekTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	weeks, err := s.reports.WeekTrend(ctx, s.ledger.Now())
	if err != nil {
		s.logLedgerError(ctx, "Failed to compute week trend", err, log.OpReport)
		LedgerError(err).Write(w)
		return
	}

	views := make([]weekTotalView, 0, len(weeks))
	for _, wk := range weeks {
		views = append(views, weekTotalView{
			Label:   wk.Label,
			Start:   wk.Start,
			Total:   wk.Total.StringFixed(2),
			Display: core.FormatRupiah(wk.Total),
		})
	}
	NewJSONResponse().Body(views).Write(w)
}

type comparisonView struct {
	LastMonth     string  `json:"last_month"`
	ThisMonth     string  `json:"this_month"`
	PercentChange *string `json:"percent_change"`
	ChangeLabel   string  `json:"change_label"`
	Increase      bool    `json:"increase"`
}

func (s *Server) handleMonthComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cmp, err := s.reports.MonthComparison(ctx, s.ledger.Now())
	if err != nil {
		s.logLedgerError(ctx, "Failed to compare months", err, log.OpReport)
		LedgerError(err).Write(w)
		return
	}

	view := comparisonView{
		LastMonth:   cmp.LastMonth.StringFixed(2),
		ThisMonth:   cmp.ThisMonth.StringFixed(2),
		ChangeLabel: cmp.ChangeLabel(),
		Increase:    cmp.Increase(),
	}
	if cmp.PercentChange != nil {
		pct := cmp.PercentChange.StringFixed(1)
		view.PercentChange = &pct
	}
	NewJSONResponse().Body(view).Write(w)
}

func fixedAmounts(amounts []decimal.Decimal) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.StringFixed(2)
	}
	return out
}
