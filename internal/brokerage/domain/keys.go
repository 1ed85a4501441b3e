package domain

// Key templates for primary records and the maintained indexes. Accounts are
// NOT discoverable by scanning account:{investor_id}*; account ids carry no
// investor prefix, so that pattern never matches. Membership lives in the
// investor_accounts list instead.
const (
	InvestorKeyPrefix  = "investor:"
	AccountKeyPrefix   = "account:"
	OwnershipKeyPrefix = "stock_ownership:"

	// UsernameKeyPrefix maps a username to its investor id.
	UsernameKeyPrefix = "username:"
	// AccountIndexKeyPrefix holds the per-investor list of account ids.
	AccountIndexKeyPrefix = "investor_accounts:"
	// ReservationKeyPrefix is the keyspace for atomic id reservation. The
	// query path never reads it.
	ReservationKeyPrefix = "id_reservation:"

	// InvestorKeysList tracks every investor key written during load.
	InvestorKeysList = "investor_keys"

	// OwnershipLinkField is the account hash field naming its ownership key.
	OwnershipLinkField = "has_stock_ownership_id"
)

// InvestorKey returns the primary key for an investor id.
func InvestorKey(id string) string { return InvestorKeyPrefix + id }

// AccountKey returns the primary key for an account id.
func AccountKey(id string) string { return AccountKeyPrefix + id }

// OwnershipKey returns the ownership key derived from an account id.
func OwnershipKey(accountID string) string { return OwnershipKeyPrefix + accountID }

// UsernameKey returns the username index key.
func UsernameKey(username string) string { return UsernameKeyPrefix + username }

// AccountIndexKey returns the per-investor account membership list key.
func AccountIndexKey(investorID string) string { return AccountIndexKeyPrefix + investorID }

// ReservationKey returns the reservation key for an entity kind and id.
func ReservationKey(kind, id string) string { return ReservationKeyPrefix + kind + ":" + id }
