package services

import (
	"fmt"
	"io"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/report"

	"github.com/xuri/excelize/v2"
)

const (
	SheetTransactions = "Transactions"
	SheetSummary      = "Summary"
)

var transactionHeader = []any{"ID", "Date", "Type", "Category", "Description", "Payment Mode", "Amount", "Tags"}

// Exporter renders a ledger as an xlsx workbook.
type Exporter struct {
	formatter *report.Formatter
	opts      report.Options
}

func NewExporter(formatter *report.Formatter, opts report.Options) *Exporter {
	return &Exporter{formatter: formatter, opts: opts}
}

// Write renders txs and writes the workbook to w.
func (e *Exporter) Write(w io.Writer, txs []core.Transaction) error {
	f, err := e.Workbook(txs)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the Transactions and Summary sheets. The caller closes it.
func (e *Exporter) Workbook(txs []core.Transaction) (*excelize.File, error) {
	dash, err := report.Summarize(txs, e.opts)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := e.writeTransactions(f, report.SortByDateDesc(txs)); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeSummary(f, dash); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (e *Exporter) writeTransactions(f *excelize.File, txs []core.Transaction) error {
	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, SheetTransactions, 1, transactionHeader); err != nil {
		return err
	}
	for i, tx := range txs {
		row := []any{
			tx.ID, tx.Date.String(), string(tx.Type), tx.Category, tx.Description,
			string(tx.PaymentMode), tx.Amount.InexactFloat64(), strings.Join(tx.Tags, ", "),
		}
		if err := setRow(f, SheetTransactions, i+2, row); err != nil {
			return err
		}
	}
	if err := boldRow(f, SheetTransactions, len(transactionHeader)); err != nil {
		return err
	}
	return f.SetColWidth(SheetTransactions, "A", "A", 38)
}

func (e *Exporter) writeSummary(f *excelize.File, dash report.Dashboard) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"Overview", ""},
		{"Balance", e.formatter.Format(dash.Totals.Balance)},
		{"Total Income", e.formatter.Format(dash.Totals.TotalIncome)},
		{"Total Expense", e.formatter.Format(dash.Totals.TotalExpense)},
		{},
		{"Expense Category", "Amount"},
	}
	for _, c := range dash.ExpenseCategories {
		rows = append(rows, []any{c.Category, e.formatter.Format(c.Amount)})
	}
	rows = append(rows, []any{}, []any{"Month", "Income", "Expense"})
	for _, p := range dash.Monthly {
		rows = append(rows, []any{p.Month, e.formatter.Format(p.Income), e.formatter.Format(p.Expense)})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	if err := boldRow(f, SheetSummary, 2); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "C", 20)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
