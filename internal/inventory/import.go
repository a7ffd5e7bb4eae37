package inventory

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/ledger"
	"finanzas-backend/internal/models"
)

// ImportRow reports the outcome of one spreadsheet row. Row is 1-based as
// shown by spreadsheet programs.
type ImportRow struct {
	Row       int    `json:"row"`
	Name      string `json:"name"`
	ProductID uint   `json:"productId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type ImportResult struct {
	Imported int         `json:"imported"`
	Failed   int         `json:"failed"`
	Rows     []ImportRow `json:"rows"`
}

// header words that mark the first row as column titles
var headerWords = []string{"NOMBRE", "PRODUCTO", "PRODUCT", "NAME"}

// ImportProducts reads the first sheet of an xlsx workbook and adds one
// product per row. Columns: name, cost price, description, provider.
// Blank rows are skipped. A bad row is reported and does not stop the rest;
// a store failure does.
func (m *Manager) ImportProducts(ctx context.Context, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, apperr.Validation("unreadable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, apperr.Validation("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, apperr.Validation("unreadable sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return ImportResult{}, apperr.Validation("sheet %q is empty", sheets[0])
	}

	start := 0
	if isHeader(rows[0]) {
		start = 1
	}

	res := ImportResult{Rows: make([]ImportRow, 0, len(rows)-start)}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, 0)
		if name == "" && cell(row, 1) == "" {
			continue
		}

		out := ImportRow{Row: i + 1, Name: name}
		p, err := m.importRow(ctx, row)
		switch {
		case err == nil:
			out.ProductID = p.ID
			res.Imported++
		case errors.Is(err, apperr.ErrValidation):
			out.Error = err.Error()
			res.Failed++
		default:
			return res, err
		}
		res.Rows = append(res.Rows, out)
	}

	m.logger.Info("products imported",
		zap.String("uid", m.sess.UID),
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed))
	return res, nil
}

func (m *Manager) importRow(ctx context.Context, row []string) (models.Product, error) {
	raw := cell(row, 1)
	cost, err := ledger.ParseAmount(costText(raw))
	if err != nil {
		return models.Product{}, apperr.Validation("cost price %q is not a positive number", raw)
	}
	return m.AddProduct(ctx, NewProduct{
		Name:        cell(row, 0),
		CostPrice:   cost,
		Description: cell(row, 2),
		Provider:    cell(row, 3),
	})
}

// isHeader treats the row as column titles when the name cell holds a title
// word and the cost cell is not a number, so a first product named
// "Producto ..." with a price is still imported.
func isHeader(row []string) bool {
	if _, err := decimal.NewFromString(costText(cell(row, 1))); err == nil {
		return false
	}
	first := strings.ToUpper(cell(row, 0))
	for _, w := range headerWords {
		if strings.Contains(first, w) {
			return true
		}
	}
	return false
}

// costText accepts a decimal comma as typed in es-AR spreadsheets.
func costText(raw string) string { return strings.ReplaceAll(raw, ",", ".") }

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
