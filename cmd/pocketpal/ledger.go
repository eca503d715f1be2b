package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pocketpal/internal/calendar"
	"pocketpal/internal/cli"
	"pocketpal/internal/core"
	"pocketpal/internal/export"
)

func newAddCmd(a *app) *cobra.Command {
	var date, notes, payApp string

	cmd := &cobra.Command{
		Use:   "add <amount> <category>",
		Short: "Record a spending transaction",
		Long: `Record a spending transaction. The amount accepts "." or "," as the decimal
separator. Without --date the transaction is stamped with the current time;
a past or future date is stored at local midnight.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				now := l.Service.Now()
				d := core.Draft{
					Amount:   args[0],
					Category: args[1],
					Date:     core.DateOf(now),
					Notes:    notes,
					App:      payApp,
				}
				if date != "" {
					parsed, err := core.ParseDate(date)
					if err != nil {
						return err
					}
					d.Date = parsed
				}

				id, err := l.Service.AddTransaction(cmd.Context(), d)
				if err != nil {
					return err
				}
				amount, _ := core.ParseAmount(d.Amount)
				a.printf(cmd, "Saved transaction #%d: %s %s\n", id, core.FormatRupiah(amount), strings.TrimSpace(d.Category))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	cmd.Flags().StringVar(&payApp, "app", "", "payment channel, e.g. GoPay")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var period, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				ctx := cmd.Context()
				var (
					txs []core.Transaction
					err error
				)
				switch {
				case period != "":
					p, ok := core.ParsePeriod(period)
					if !ok {
						return fmt.Errorf("unknown period %q: expected day, week or month", period)
					}
					strategy, serr := calendar.StrategyFor(p)
					if serr != nil {
						return serr
					}
					txs, err = l.Service.GetTransactionsInWindow(ctx, strategy.Window(l.Service.Now()))
				case category != "":
					txs, err = l.Service.GetTransactionsByCategory(ctx, category)
				default:
					txs, err = l.Service.GetAllTransactions(ctx)
				}
				if err != nil {
					return err
				}
				if period != "" && category != "" {
					txs = filterCategory(txs, category)
				}

				writeTransactions(cmd, txs, l.Location)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "restrict to the current day, week or month")
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	return cmd
}

func filterCategory(txs []core.Transaction, category string) []core.Transaction {
	out := txs[:0:0]
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func writeTransactions(cmd *cobra.Command, txs []core.Transaction, loc *time.Location) {
	if len(txs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transactions.")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tCATEGORY\tAMOUNT\tAPP\tNOTES")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Time(loc).Format("2006-01-02 15:04"), t.Category, core.FormatRupiah(t.Amount), t.App, t.Notes)
	}
	tw.Flush()
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List or add categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				categories, err := l.Service.GetCategories(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range categories {
					a.printf(cmd, "%d\t%s\n", c.ID, c.Name)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(l *cli.Ledger) error {
				id, err := l.Service.AddCategory(cmd.Context(), args[0])
				if errors.Is(err, core.ErrDuplicateCategory) {
					return fmt.Errorf("category %q already exists", strings.TrimSpace(args[0]))
				}
				if err != nil {
					return err
				}
				a.printf(cmd, "Added category #%d: %s\n", id, strings.TrimSpace(args[0]))
				return nil
			})
		},
	})

	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all transactions as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(io.Writer, []core.Transaction, *time.Location) error
			switch format {
			case "csv":
				write = export.WriteTransactionsCSV
			case "xlsx":
				write = export.WriteTransactionsXLSX
				if output == "" || output == "-" {
					return errors.New("xlsx export needs --output")
				}
			default:
				return fmt.Errorf("unknown format %q: expected csv or xlsx", format)
			}

			return a.withLedger(cmd, func(l *cli.Ledger) error {
				txs, err := l.Service.GetAllTransactions(cmd.Context())
				if err != nil {
					return err
				}

				if output == "" || output == "-" {
					return write(cmd.OutOrStdout(), txs, l.Location)
				}

				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := write(f, txs, l.Location); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", output, err)
				}
				a.logger.Info("Exported transactions", "file", output, "format", format, "count", len(txs))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	return cmd
}
