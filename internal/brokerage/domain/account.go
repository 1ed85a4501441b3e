package domain

import (
	"github.com/shopspring/decimal"
)

// Account is a primary record owned by exactly one investor. The investor
// record holds no forward list of account ids; membership is reconstructed
// only through the maintained account index.
type Account struct {
	ID                string          `json:"id"`
	AccountNumber     string          `json:"account_number"`
	Name              string          `json:"name"`
	Balance           decimal.Decimal `json:"balance"`
	BelongsToInvestor string          `json:"belongs_to_investor"`
	// OwnershipKey is the self-describing back-reference written by the
	// index maintainer once the ownership record exists. Empty until then.
	OwnershipKey string `json:"has_stock_ownership_id,omitempty"`
}

// Key returns the account's primary key.
func (a *Account) Key() string { return AccountKey(a.ID) }

// Validate checks required fields before any write.
func (a *Account) Validate() error {
	var bad []string
	if a.ID == "" {
		bad = append(bad, "id")
	}
	if a.AccountNumber == "" {
		bad = append(bad, "account_number")
	}
	if a.Name == "" {
		bad = append(bad, "name")
	}
	if a.Balance.IsNegative() {
		bad = append(bad, "balance")
	}
	if a.BelongsToInvestor == "" {
		bad = append(bad, "belongs_to_investor")
	}
	if len(bad) > 0 {
		return &ValidationError{Entity: "account", Fields: bad}
	}
	return nil
}

// Fields flattens the account for a single hash write. The ownership
// back-reference is not included; it is linked in a later unit of work.
func (a *Account) Fields() map[string]string {
	return map[string]string{
		"id":                  a.ID,
		"account_number":      a.AccountNumber,
		"name":                a.Name,
		"balance":             a.Balance.StringFixed(2),
		"belongs_to_investor": a.BelongsToInvestor,
	}
}

// AccountFromFields rebuilds an account from a persisted field map.
func AccountFromFields(fields map[string]string) (*Account, error) {
	balance, err := decimal.NewFromString(fields["balance"])
	if err != nil {
		return nil, &ValidationError{Entity: "account", Fields: []string{"balance"}}
	}
	acc := &Account{
		ID:                fields["id"],
		AccountNumber:     fields["account_number"],
		Name:              fields["name"],
		Balance:           balance,
		BelongsToInvestor: fields["belongs_to_investor"],
		OwnershipKey:      fields[OwnershipLinkField],
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	return acc, nil
}
