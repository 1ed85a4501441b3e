package application

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

var (
	investorIDPattern = regexp.MustCompile(`^INV-\d{5}$`)
	uidPattern        = regexp.MustCompile(`^UID-\d{5}$`)
	usernamePattern   = regexp.MustCompile(`^[a-z]+_[a-z]+@(gmail|yahoo|icloud|hotmail|outlook)\.com$`)
	accountIDPattern  = regexp.MustCompile(`^ACC-\d{4}$`)
	accountNoPattern  = regexp.MustCompile(`^ACC-NO-\d{5}$`)
	lotIDPattern      = regexp.MustCompile(`^SEC-\d{5}$`)
)

func TestGeneratorInvestorShape(t *testing.T) {
	gen := NewGenerator(42)
	for i := 0; i < 50; i++ {
		inv := gen.Investor()
		require.NoError(t, inv.Validate())
		require.Regexp(t, investorIDPattern, inv.ID)
		require.Regexp(t, uidPattern, inv.UID)
		require.Regexp(t, usernamePattern, inv.Username)
	}
}

func TestGeneratorAccountShape(t *testing.T) {
	gen := NewGenerator(42)
	for i := 0; i < 50; i++ {
		acc := gen.Account("INV-12345")
		require.NoError(t, acc.Validate())
		require.Regexp(t, accountIDPattern, acc.ID)
		require.Regexp(t, accountNoPattern, acc.AccountNumber)
		require.Equal(t, "Account of INV-12345", acc.Name)
		require.Equal(t, "INV-12345", acc.BelongsToInvestor)
		require.True(t, acc.Balance.GreaterThanOrEqual(decimal.NewFromInt(1000)))
		require.True(t, acc.Balance.LessThanOrEqual(decimal.NewFromInt(10000)))
	}
}

func TestGeneratorOwnershipPricesWithinCatalogVariation(t *testing.T) {
	gen := NewGenerator(7)
	lower := decimal.RequireFromString("0.95")
	upper := decimal.RequireFromString("1.05")
	// Rounding to cents can nudge a boundary price by half a cent.
	slack := decimal.RequireFromString("0.005")

	for i := 0; i < 20; i++ {
		own := gen.Ownership("ACC-1234")
		require.NoError(t, own.Validate())
		require.NotEmpty(t, own.Lots)
		require.LessOrEqual(t, len(own.Lots), len(domain.Catalog()))

		seen := map[string]bool{}
		for _, lot := range own.Lots {
			require.Regexp(t, lotIDPattern, lot.ID)
			require.False(t, seen[lot.Ticker], "ticker %s drawn twice", lot.Ticker)
			seen[lot.Ticker] = true

			stock, ok := domain.StockBySymbol(lot.Ticker)
			require.True(t, ok, "unknown ticker %s", lot.Ticker)
			min := stock.Price.Mul(lower).Sub(slack)
			max := stock.Price.Mul(upper).Add(slack)
			require.True(t, lot.Price.GreaterThanOrEqual(min), "lot price %s below -5%% of %s", lot.Price, stock.Price)
			require.True(t, lot.Price.LessThanOrEqual(max), "lot price %s above +5%% of %s", lot.Price, stock.Price)

			require.GreaterOrEqual(t, lot.Quantity, 1)
			require.LessOrEqual(t, lot.Quantity, 100)
			require.Greater(t, lot.AcquiredDate, int64(0))
		}
	}
}

func TestGeneratorSeedDeterminism(t *testing.T) {
	a, b := NewGenerator(99), NewGenerator(99)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Investor(), b.Investor())
	}
}
