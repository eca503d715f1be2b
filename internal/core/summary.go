package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period names a reporting window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, true
	}
	return "", false
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardSummary holds the rolling totals shown on the dashboard.
type DashboardSummary struct {
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

// PeriodReport is the breakdown of one window. Buckets are indexed by hour
// (day), weekday Mon=0 (week) or day of month minus one (month).
type PeriodReport struct {
	Period     Period            `json:"period"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Total      decimal.Decimal   `json:"total"`
	ByCategory []CategoryAmount  `json:"by_category"`
	Buckets    []decimal.Decimal `json:"buckets"`
	Recent     []Transaction     `json:"recent"`
}

// WeekTotal is one point of the weekly trend.
type WeekTotal struct {
	Label string          `json:"label"`
	Start time.Time       `json:"start"`
	Total decimal.Decimal `json:"total"`
}

// MonthComparison compares this month with the previous one. PercentChange
// is nil when the previous month has no spending.
type MonthComparison struct {
	LastMonth     decimal.Decimal  `json:"last_month"`
	ThisMonth     decimal.Decimal  `json:"this_month"`
	PercentChange *decimal.Decimal `json:"percent_change,omitempty"`
}

// Increase reports whether spending grew month over month.
func (c MonthComparison) Increase() bool {
	return c.ThisMonth.GreaterThan(c.LastMonth)
}

// ChangeLabel renders the change as "+12.5%" or "-3.0%"; empty when unknown.
func (c MonthComparison) ChangeLabel() string {
	if c.PercentChange == nil {
		return ""
	}
	s := c.PercentChange.StringFixed(1) + "%"
	if c.PercentChange.IsPositive() {
		s = "+" + s
	}
	return s
}
