// Package store is the durable side of the ledger and the inventory. Every
// call may fail independently; no call is atomic with another.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finanzas-backend/internal/models"
)

type Store interface {
	CreateAccount(ctx context.Context, acc models.Account) (string, error)
	FetchAccount(ctx context.Context, uid string) (models.Account, error)
	PatchAccount(ctx context.Context, uid string, patch AccountPatch) error

	// FetchMovements returns movements in the order they were appended.
	FetchMovements(ctx context.Context, uid string) ([]models.Movement, error)
	AppendMovement(ctx context.Context, uid string, mov models.Movement) (uint, error)

	// FetchProducts returns products in insertion order.
	FetchProducts(ctx context.Context, uid string) ([]models.Product, error)
	CreateProduct(ctx context.Context, uid string, p models.Product) (uint, error)
	PatchProduct(ctx context.Context, uid string, id uint, patch ProductPatch) error
	DeleteProduct(ctx context.Context, uid string, id uint) error
}

// AccountPatch is a partial update; nil fields are left untouched.
type AccountPatch struct {
	FirstName *string
	LastName  *string
	Balance   *decimal.Decimal
}

func (p AccountPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.Balance != nil {
		cols["balance"] = *p.Balance
	}
	return cols
}

func (p AccountPatch) apply(acc *models.Account) {
	if p.FirstName != nil {
		acc.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		acc.LastName = *p.LastName
	}
	if p.Balance != nil {
		acc.Balance = *p.Balance
	}
}

// ProductPatch carries the sale fields written when a product is sold.
type ProductPatch struct {
	Sold          *bool
	SoldDate      *time.Time
	SoldPrice     *decimal.Decimal
	Profit        *decimal.Decimal
	PaymentMethod *string
	BuyerName     *string
}

// SalePatch builds the patch that moves a product to sold.
func SalePatch(sold models.Product) ProductPatch {
	flag := true
	return ProductPatch{
		Sold:          &flag,
		SoldDate:      sold.SoldDate,
		SoldPrice:     &sold.SoldPrice.Decimal,
		Profit:        &sold.Profit.Decimal,
		PaymentMethod: &sold.PaymentMethod,
		BuyerName:     &sold.BuyerName,
	}
}

func (p ProductPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Sold != nil {
		cols["sold"] = *p.Sold
	}
	if p.SoldDate != nil {
		cols["sold_date"] = *p.SoldDate
	}
	if p.SoldPrice != nil {
		cols["sold_price"] = *p.SoldPrice
	}
	if p.Profit != nil {
		cols["profit"] = *p.Profit
	}
	if p.PaymentMethod != nil {
		cols["payment_method"] = *p.PaymentMethod
	}
	if p.BuyerName != nil {
		cols["buyer_name"] = *p.BuyerName
	}
	return cols
}

func (p ProductPatch) apply(prod *models.Product) {
	if p.Sold != nil {
		prod.Sold = *p.Sold
	}
	if p.SoldDate != nil {
		d := *p.SoldDate
		prod.SoldDate = &d
	}
	if p.SoldPrice != nil {
		prod.SoldPrice = decimal.NewNullDecimal(*p.SoldPrice)
	}
	if p.Profit != nil {
		prod.Profit = decimal.NewNullDecimal(*p.Profit)
	}
	if p.PaymentMethod != nil {
		prod.PaymentMethod = *p.PaymentMethod
	}
	if p.BuyerName != nil {
		prod.BuyerName = *p.BuyerName
	}
}
