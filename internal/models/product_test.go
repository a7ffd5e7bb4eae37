package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductLifecycle(t *testing.T) {
	soldAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	t.Run("UnsoldWithoutSaleFields_IsValid", func(t *testing.T) {
		p := Product{CostPrice: decimal.NewFromInt(20)}
		require.NoError(t, p.CheckLifecycle())
		require.True(t, p.WarrantyExpiresAt().IsZero())
	})

	t.Run("UnsoldWithSaleFields_IsRejected", func(t *testing.T) {
		p := Product{CostPrice: decimal.NewFromInt(20), SoldDate: &soldAt}
		require.Error(t, p.CheckLifecycle())
	})

	t.Run("SoldWithMatchingProfit_IsValid", func(t *testing.T) {
		p := Product{
			CostPrice: decimal.NewFromInt(20),
			Sold:      true,
			SoldDate:  &soldAt,
			SoldPrice: decimal.NewNullDecimal(decimal.NewFromInt(35)),
			Profit:    decimal.NewNullDecimal(decimal.NewFromInt(15)),
		}
		require.NoError(t, p.CheckLifecycle())
		require.Equal(t, soldAt.AddDate(0, 0, 30), p.WarrantyExpiresAt())
	})

	t.Run("SoldWithWrongProfit_IsRejected", func(t *testing.T) {
		p := Product{
			CostPrice: decimal.NewFromInt(20),
			Sold:      true,
			SoldDate:  &soldAt,
			SoldPrice: decimal.NewNullDecimal(decimal.NewFromInt(35)),
			Profit:    decimal.NewNullDecimal(decimal.NewFromInt(10)),
		}
		require.Error(t, p.CheckLifecycle())
	})

	t.Run("SoldMissingPrice_IsRejected", func(t *testing.T) {
		p := Product{CostPrice: decimal.NewFromInt(20), Sold: true, SoldDate: &soldAt}
		require.Error(t, p.CheckLifecycle())
	})
}

func TestMovementSignedAndLocation(t *testing.T) {
	credit := Movement{Kind: MovementCredit, Amount: decimal.NewFromInt(50)}
	debit := Movement{Kind: MovementDebit, Amount: decimal.NewFromInt(30)}
	require.True(t, credit.Signed().Equal(decimal.NewFromInt(50)))
	require.True(t, debit.Signed().Equal(decimal.NewFromInt(-30)))

	require.Nil(t, credit.Location())
	credit.SetLocation(&Location{Lat: -34.6, Lon: -58.4})
	require.Equal(t, &Location{Lat: -34.6, Lon: -58.4}, credit.Location())
	credit.SetLocation(nil)
	require.Nil(t, credit.Location())

	require.True(t, MovementCredit.Valid())
	require.False(t, MovementKind("transfer").Valid())
}
