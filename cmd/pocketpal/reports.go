package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pocketpal/internal/cli"
	"pocketpal/internal/core"
)

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's, this week's and this month's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				ctx := cmd.Context()
				s, err := l.Reports.Dashboard(ctx, l.Service.Now())
				if err != nil {
					return err
				}
				a.printf(cmd, "Today:      %s\n", core.FormatRupiah(s.Today))
				a.printf(cmd, "This week:  %s\n", core.FormatRupiah(s.Week))
				a.printf(cmd, "This month: %s\n", core.FormatRupiah(s.Month))

				recent, err := l.Reports.Recent(ctx, a.cfg.RecentLimit)
				if err != nil {
					return err
				}
				if len(recent) > 0 {
					a.printf(cmd, "\nRecent:\n")
					writeTransactions(cmd, recent, l.Location)
				}
				return nil
			})
		},
	}
}

// bucketLabel names bucket i of a period report.
func bucketLabel(p core.Period, i int) string {
	switch p {
	case core.PeriodDay:
		return fmt.Sprintf("%02d:00", i)
	case core.PeriodWeek:
		return [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}[i]
	default:
		return fmt.Sprintf("day %d", i+1)
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "report <day|week|month>",
		Short:     "Break down the current day, week or month",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"day", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := core.ParsePeriod(args[0])
			if !ok {
				return fmt.Errorf("unknown period %q: expected day, week or month", args[0])
			}
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				r, err := l.Reports.Period(cmd.Context(), p, l.Service.Now())
				if err != nil {
					return err
				}

				a.printf(cmd, "%s %s - %s\n", p, r.Start.Format("2006-01-02"), r.End.Add(-1).Format("2006-01-02"))
				a.printf(cmd, "Total: %s\n", core.FormatRupiah(r.Total))

				out := cmd.OutOrStdout()
				if len(r.ByCategory) > 0 {
					fmt.Fprintln(out, "\nBy category:")
					tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					for _, c := range r.ByCategory {
						fmt.Fprintf(tw, "  %s\t%s\n", c.Name, core.FormatRupiah(c.Amount))
					}
					tw.Flush()

					fmt.Fprintln(out, "\nBy time:")
					tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					for i, b := range r.Buckets {
						if b.IsZero() {
							continue
						}
						fmt.Fprintf(tw, "  %s\t%s\n", bucketLabel(p, i), core.FormatRupiah(b))
					}
					tw.Flush()
				}
				return nil
			})
		},
	}
}

func newTrendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Show weekly totals for the last four weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				weeks, err := l.Reports.WeekTrend(cmd.Context(), l.Service.Now())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, w := range weeks {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", w.Label, w.Start.Format("2006-01-02"), core.FormatRupiah(w.Total))
				}
				return tw.Flush()
			})
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare this month's spending with last month's",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				c, err := l.Reports.MonthComparison(cmd.Context(), l.Service.Now())
				if err != nil {
					return err
				}
				a.printf(cmd, "Last month: %s\n", core.FormatRupiah(c.LastMonth))
				a.printf(cmd, "This month: %s\n", core.FormatRupiah(c.ThisMonth))
				if label := c.ChangeLabel(); label != "" {
					a.printf(cmd, "Change:     %s\n", label)
				} else {
					a.printf(cmd, "Change:     n/a\n")
				}
				return nil
			})
		},
	}
}
