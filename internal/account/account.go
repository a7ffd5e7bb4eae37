// Package account registers accounts and edits their profile fields.
package account

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/store"
)

type Registration struct {
	FirstName      string
	LastName       string
	InitialBalance decimal.Decimal
}

// Register creates an account whose balance starts at its initial balance.
func Register(ctx context.Context, st store.Store, in Registration) (models.Account, error) {
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return models.Account{}, apperr.Validation("first name is required")
	}
	if in.InitialBalance.IsNegative() {
		return models.Account{}, apperr.Validation("initial balance cannot be negative, got %s", in.InitialBalance)
	}

	acc := models.Account{
		FirstName:      first,
		LastName:       strings.TrimSpace(in.LastName),
		InitialBalance: in.InitialBalance,
		Balance:        in.InitialBalance,
	}
	uid, err := st.CreateAccount(ctx, acc)
	if err != nil {
		return models.Account{}, err
	}
	return st.FetchAccount(ctx, uid)
}

// UpdateProfile changes names only; balances move through the ledger.
func UpdateProfile(ctx context.Context, st store.Store, uid string, first, last *string) (models.Account, error) {
	var patch store.AccountPatch
	if first != nil {
		v := strings.TrimSpace(*first)
		if v == "" {
			return models.Account{}, apperr.Validation("first name cannot be empty")
		}
		patch.FirstName = &v
	}
	if last != nil {
		v := strings.TrimSpace(*last)
		patch.LastName = &v
	}
	if patch.FirstName == nil && patch.LastName == nil {
		return models.Account{}, apperr.Validation("nothing to update")
	}
	if err := st.PatchAccount(ctx, uid, patch); err != nil {
		return models.Account{}, err
	}
	return st.FetchAccount(ctx, uid)
}
