package report

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"finanzas-backend/internal/models"
)

const (
	SalesSheet     = "Sales"
	MovementsSheet = "Movements"

	cellTimeLayout = "2006-01-02 15:04"
)

var (
	salesHeader     = []any{"ID", "Name", "Provider", "Cost", "Sold price", "Profit", "Sold at", "Payment", "Buyer"}
	movementsHeader = []any{"ID", "Type", "Amount", "Description", "Timestamp", "Lat", "Lon"}
)

// WriteWorkbook writes sold products and movements as a two-sheet xlsx.
// Times are rendered in loc.
func WriteWorkbook(w io.Writer, sold []models.Product, movs []models.Movement, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SalesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(MovementsSheet); err != nil {
		return err
	}

	sales := make([][]any, 0, len(sold)+1)
	sales = append(sales, salesHeader)
	for _, p := range sold {
		row := []any{p.ID, p.Name, p.Provider, p.CostPrice.InexactFloat64()}
		row = append(row, nullFloat(p.SoldPrice), nullFloat(p.Profit))
		if p.SoldDate != nil {
			row = append(row, p.SoldDate.In(loc).Format(cellTimeLayout))
		} else {
			row = append(row, "")
		}
		row = append(row, p.PaymentMethod, p.BuyerName)
		sales = append(sales, row)
	}
	if err := writeRows(f, SalesSheet, sales); err != nil {
		return err
	}

	rows := make([][]any, 0, len(movs)+1)
	rows = append(rows, movementsHeader)
	for _, m := range movs {
		row := []any{m.ID, string(m.Kind), m.Amount.InexactFloat64(), m.Description, m.Timestamp.In(loc).Format(cellTimeLayout)}
		if at := m.Location(); at != nil {
			row = append(row, at.Lat, at.Lon)
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, MovementsSheet, rows); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func nullFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return ""
	}
	return d.Decimal.InexactFloat64()
}
