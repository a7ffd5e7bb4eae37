package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// WarrantyPeriod is how long a sold product stays under warranty.
const WarrantyPeriod = 30 * 24 * time.Hour

var (
	errSaleFieldsOnUnsold = errors.New("unsold product carries sale fields")
	errSaleFieldsMissing  = errors.New("sold product is missing sale fields")
	errProfitMismatch     = errors.New("profit does not equal sold price minus cost price")
)

// Product moves from purchased (Sold=false) to sold exactly once.
type Product struct {
	ID            uint                `gorm:"primaryKey"`
	UserID        string              `gorm:"index;not null;size:36"`
	Name          string              `gorm:"size:150;not null"`
	Description   string              `gorm:"size:255"`
	CostPrice     decimal.Decimal     `gorm:"type:numeric;not null"`
	Provider      string              `gorm:"size:150"`
	CreatedDate   time.Time           `gorm:"index;not null"`
	Sold          bool                `gorm:"index;not null;default:false"`
	SoldDate      *time.Time          `gorm:"index"`
	SoldPrice     decimal.NullDecimal `gorm:"type:numeric"`
	Profit        decimal.NullDecimal `gorm:"type:numeric"`
	PaymentMethod string              `gorm:"size:50"`
	BuyerName     string              `gorm:"size:150"`
}

// CheckLifecycle verifies the sold flag agrees with the sale fields.
func (p Product) CheckLifecycle() error {
	if !p.Sold {
		if p.SoldDate != nil || p.SoldPrice.Valid || p.Profit.Valid {
			return errSaleFieldsOnUnsold
		}
		return nil
	}
	if p.SoldDate == nil || !p.SoldPrice.Valid || !p.Profit.Valid {
		return errSaleFieldsMissing
	}
	if !p.Profit.Decimal.Equal(p.SoldPrice.Decimal.Sub(p.CostPrice)) {
		return errProfitMismatch
	}
	return nil
}

// WarrantyExpiresAt is zero for unsold products.
func (p Product) WarrantyExpiresAt() time.Time {
	if !p.Sold || p.SoldDate == nil {
		return time.Time{}
	}
	return p.SoldDate.Add(WarrantyPeriod)
}
