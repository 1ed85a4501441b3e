package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OwnershipDocVersion is the serialization version of the security_lots
// document. Readers reject versions they do not know.
const OwnershipDocVersion = 1

// SecurityLot is one acquisition of shares: a ticker at a price on a date.
// Lots are append-only and immutable once generated.
type SecurityLot struct {
	ID           string          `json:"id"`
	Ticker       string          `json:"ticker"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	AcquiredDate int64           `json:"acquired_date"`
}

// StockOwnership holds the ordered security lots of one account. Exactly one
// exists per account, keyed deterministically by the account id.
type StockOwnership struct {
	AccountID string        `json:"account_id"`
	Lots      []SecurityLot `json:"security_lots"`
}

// Key returns the ownership record's primary key.
func (o *StockOwnership) Key() string { return OwnershipKey(o.AccountID) }

// Validate checks required fields before any write.
func (o *StockOwnership) Validate() error {
	var bad []string
	if o.AccountID == "" {
		bad = append(bad, "account_id")
	}
	for _, lot := range o.Lots {
		if lot.ID == "" || lot.Ticker == "" || !lot.Price.IsPositive() || lot.Quantity <= 0 {
			bad = append(bad, "security_lots")
			break
		}
	}
	if len(bad) > 0 {
		return &ValidationError{Entity: "stock_ownership", Fields: bad}
	}
	return nil
}

// ownershipDoc is the versioned wire form of the lot sequence.
type ownershipDoc struct {
	Version      int           `json:"version"`
	SecurityLots []SecurityLot `json:"security_lots"`
}

// MarshalLots serializes the lot sequence as a versioned JSON document.
func (o *StockOwnership) MarshalLots() (string, error) {
	doc := ownershipDoc{Version: OwnershipDocVersion, SecurityLots: o.Lots}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal security lots: %w", err)
	}
	return string(data), nil
}

// UnmarshalLots parses a versioned lot document produced by MarshalLots.
func UnmarshalLots(raw string) ([]SecurityLot, error) {
	var doc ownershipDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal security lots: %w", err)
	}
	if doc.Version != OwnershipDocVersion {
		return nil, fmt.Errorf("unsupported security lots version %d", doc.Version)
	}
	return doc.SecurityLots, nil
}
