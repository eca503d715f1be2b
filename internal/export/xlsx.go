package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"pocketpal/internal/core"
)

// SheetName is the worksheet holding exported transactions.
const SheetName = "Transactions"

var xlsxHeader = []any{"ID", "Date", "Time", "Category", "Amount", "Notes", "App"}

var xlsxColumnWidths = map[string]float64{"A": 8, "B": 12, "C": 8, "D": 16, "E": 14, "F": 30, "G": 12}

// WriteTransactionsXLSX writes txs to w as a single-sheet workbook in id
// order. Amounts are numeric cells; a SUM row follows the last transaction.
func WriteTransactionsXLSX(w io.Writer, txs []core.Transaction, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sorted := sortedByID(txs)
	for i, t := range sorted {
		row := NewTransactionRow(t, loc)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.ID, row.Date, row.Time, row.Category, t.Amount.InexactFloat64(), row.Notes, row.App}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write transaction %d: %w", t.ID, err)
		}
	}

	if len(sorted) > 0 {
		last := len(sorted) + 1
		totalRow := last + 1
		if err := f.SetCellValue(SheetName, fmt.Sprintf("D%d", totalRow), "Total"); err != nil {
			return err
		}
		if err := f.SetCellFormula(SheetName, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("SUM(E2:E%d)", last)); err != nil {
			return fmt.Errorf("write total: %w", err)
		}
	}

	for col, width := range xlsxColumnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write XLSX: %w", err)
	}
	return nil
}
