// Package export renders a group's ledger as an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/models"
)

const (
	SheetExpenses    = "Expenses"
	SheetBalances    = "Balances"
	SheetSettlements = "Settlements"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Report is everything written to the workbook.
type Report struct {
	Group       *models.Group
	Balances    []calculator.MemberBalance
	Settlements []calculator.Transfer
}

// Write renders the report and writes the xlsx bytes to w.
func Write(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetBalances, SheetSettlements} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	names := make(map[string]string, len(r.Group.Members))
	for _, m := range r.Group.Members {
		names[m.ID] = m.Name
	}

	expenses := [][]any{{"Date", "Description", "Paid by", "Amount", "Member", "Share", "Settled"}}
	for _, e := range r.Group.Expenses {
		for _, s := range e.Splits {
			expenses = append(expenses, []any{
				e.CreatedAt.Format("2006-01-02"), e.Description, names[e.PaidBy], e.Amount,
				names[s.MemberID], s.Amount, s.IsSettled,
			})
		}
	}

	balances := [][]any{{"Member", "Balance"}}
	for _, b := range r.Balances {
		balances = append(balances, []any{b.Name, calculator.RoundCents(b.Balance)})
	}

	settlements := [][]any{{"From", "To", "Amount"}}
	for _, t := range r.Settlements {
		settlements = append(settlements, []any{t.From.Name, t.To.Name, t.Amount})
	}

	for sheet, rows := range map[string][][]any{
		SheetExpenses:    expenses,
		SheetBalances:    balances,
		SheetSettlements: settlements,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Filename is the attachment name for a group's workbook.
func Filename(group *models.Group) string {
	return fmt.Sprintf("monies-%s.xlsx", group.ID)
}
