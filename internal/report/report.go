// Package report derives totals from the current inventory and movement log.
// Nothing here is cached; every call recomputes from its inputs.
package report

import (
	"github.com/shopspring/decimal"

	"finanzas-backend/internal/daterange"
	"finanzas-backend/internal/inventory"
	"finanzas-backend/internal/ledger"
	"finanzas-backend/internal/models"
)

func AvailableCount(prods []models.Product) int {
	n := 0
	for _, p := range prods {
		if !p.Sold {
			n++
		}
	}
	return n
}

func SoldCount(prods []models.Product) int {
	return len(prods) - AvailableCount(prods)
}

// TotalInvested sums the cost of products still held.
func TotalInvested(prods []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prods {
		if !p.Sold {
			total = total.Add(p.CostPrice)
		}
	}
	return total
}

// TotalProfit sums profit over the sold products in prods. Losses count
// negatively.
func TotalProfit(prods []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prods {
		if p.Sold && p.Profit.Valid {
			total = total.Add(p.Profit.Decimal)
		}
	}
	return total
}

// TotalRevenue sums sold prices over the sold products in prods.
func TotalRevenue(prods []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prods {
		if p.Sold && p.SoldPrice.Valid {
			total = total.Add(p.SoldPrice.Decimal)
		}
	}
	return total
}

type MovementSummary struct {
	Count   int             `json:"count"`
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
	Net     decimal.Decimal `json:"net"`
}

func MovementTotals(movs []models.Movement) MovementSummary {
	s := MovementSummary{Count: len(movs), Credits: decimal.Zero, Debits: decimal.Zero}
	for _, m := range movs {
		switch m.Kind {
		case models.MovementCredit:
			s.Credits = s.Credits.Add(m.Amount)
		case models.MovementDebit:
			s.Debits = s.Debits.Add(m.Amount)
		}
	}
	s.Net = s.Credits.Sub(s.Debits)
	return s
}

// ProductSource is satisfied by *inventory.Manager.
type ProductSource interface {
	Products() []models.Product
}

// MovementSource is satisfied by *ledger.Ledger.
type MovementSource interface {
	ListMovements(order ledger.Order) []models.Movement
	CurrentBalance() decimal.Decimal
}

type Engine struct {
	products  ProductSource
	movements MovementSource
}

func NewEngine(products ProductSource, movements MovementSource) *Engine {
	return &Engine{products: products, movements: movements}
}

func (e *Engine) AvailableCount() int { return AvailableCount(e.products.Products()) }

func (e *Engine) TotalInvested() decimal.Decimal { return TotalInvested(e.products.Products()) }

// TotalProfit sums over prods when given, otherwise over the whole inventory.
func (e *Engine) TotalProfit(prods []models.Product) decimal.Decimal {
	if prods == nil {
		prods = e.products.Products()
	}
	return TotalProfit(prods)
}

// Summary holds the all-time inventory position and the sales and movements
// that fall inside the requested range.
type Summary struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	AvailableCount int             `json:"availableCount"`
	SoldCount      int             `json:"soldCount"`
	TotalInvested  decimal.Decimal `json:"totalInvested"`
	TotalProfit    decimal.Decimal `json:"totalProfit"`

	PeriodSoldCount int             `json:"periodSoldCount"`
	PeriodRevenue   decimal.Decimal `json:"periodRevenue"`
	PeriodProfit    decimal.Decimal `json:"periodProfit"`
	Movements       MovementSummary `json:"movements"`
}

func (e *Engine) Summary(r daterange.Range) Summary {
	prods := e.products.Products()
	sold := daterange.Filter(inventory.Sold(prods), r, inventory.SoldTime)
	movs := daterange.Filter(e.movements.ListMovements(ledger.Chronological), r, ledger.MovementTime)

	s := Summary{
		Balance:         e.movements.CurrentBalance(),
		AvailableCount:  AvailableCount(prods),
		SoldCount:       SoldCount(prods),
		TotalInvested:   TotalInvested(prods),
		TotalProfit:     TotalProfit(prods),
		PeriodSoldCount: len(sold),
		PeriodRevenue:   TotalRevenue(sold),
		PeriodProfit:    TotalProfit(sold),
		Movements:       MovementTotals(movs),
	}
	if r.Start != nil {
		s.From = r.Start.Format(daterange.DateLayout)
	}
	if r.End != nil {
		s.To = r.End.Format(daterange.DateLayout)
	}
	return s
}
