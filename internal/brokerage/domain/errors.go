package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable marks any backend failure or timeout. Callers own
	// the retry policy; the store never retries internally.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is the normal outcome of resolving an unknown username.
	ErrNotFound = errors.New("not found")

	// ErrIDSpaceExhausted aborts a load run when identifier generation keeps
	// colliding past the configured retry bound.
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)

// ValidationError reports missing or malformed fields at entity creation.
// It aborts that single entity, never the batch.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: bad fields [%s]", e.Entity, strings.Join(e.Fields, ", "))
}

// IntegrityWarning flags an account whose ownership reference cannot be
// resolved. It is reported alongside partial results, not as an error.
type IntegrityWarning struct {
	AccountID    string `json:"account_id"`
	OwnershipKey string `json:"ownership_key,omitempty"`
	Reason       string `json:"reason"`
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("account %s: %s", w.AccountID, w.Reason)
}
