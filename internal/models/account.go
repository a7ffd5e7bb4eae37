package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is stored in "users", one row per uid.
type Account struct {
	ID             string          `gorm:"primaryKey;size:36"` // uid
	FirstName      string          `gorm:"size:100"`
	LastName       string          `gorm:"size:100"`
	InitialBalance decimal.Decimal `gorm:"type:numeric;not null;default:0"`
	Balance        decimal.Decimal `gorm:"type:numeric;not null;default:0"` // maintained by the ledger
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Account) TableName() string { return "users" }
