// Package export renders expenses as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"pfm/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "By Category"
)

var expenseColumns = []string{"Date", "Category", "Amount"}

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Expenses writes one sheet with every expense and a second sheet with the
// per-category totals.
func Expenses(w io.Writer, expenses []core.Expense, byCategory []core.CategoryAmount) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", expensesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	if err := writeRow(f, expensesSheet, 1, toRow(expenseColumns)); err != nil {
		return err
	}
	_ = f.SetCellStyle(expensesSheet, "A1", "C1", bold)

	var total core.Money
	for i, e := range expenses {
		row := i + 2
		if err := writeRow(f, expensesSheet, row, []interface{}{e.Date.String(), e.CategoryName, e.Amount.Float64()}); err != nil {
			return err
		}
		total = total.Add(e.Amount)
	}
	last := len(expenses) + 2
	if err := writeRow(f, expensesSheet, last, []interface{}{"Total", "", total.Float64()}); err != nil {
		return err
	}
	_ = f.SetCellStyle(expensesSheet, "A"+fmt.Sprint(last), "A"+fmt.Sprint(last), bold)
	_ = f.SetCellStyle(expensesSheet, "C2", "C"+fmt.Sprint(last), money)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", summarySheet, err)
	}
	if err := writeRow(f, summarySheet, 1, []interface{}{"Category", "Amount"}); err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "B1", bold)
	for i, c := range byCategory {
		if err := writeRow(f, summarySheet, i+2, []interface{}{c.Name, c.Amount.Float64()}); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toRow(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}
