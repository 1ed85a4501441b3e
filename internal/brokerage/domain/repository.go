package domain

import "context"

// InvestorRepository persists investor records. Uniqueness of candidate ids
// is the caller's responsibility (generate, reserve, retry), not the
// repository's; rejecting duplicates after the fact would race the write.
type InvestorRepository interface {
	// Create writes the investor hash in one round trip.
	Create(ctx context.Context, inv *Investor) error
	// Stage validates and buffers the same write onto a pipeline.
	Stage(pipe RecordPipeline, inv *Investor) error
	// Get returns nil without error when the id is unknown.
	Get(ctx context.Context, id string) (*Investor, error)
}

// AccountRepository persists account records.
type AccountRepository interface {
	Create(ctx context.Context, acc *Account) error
	Stage(pipe RecordPipeline, acc *Account) error
	Get(ctx context.Context, id string) (*Account, error)
}

// OwnershipRepository persists stock ownership records.
type OwnershipRepository interface {
	Create(ctx context.Context, own *StockOwnership) error
	// Get returns nil without error when no ownership exists for the account.
	Get(ctx context.Context, accountID string) (*StockOwnership, error)
}

// IndexMaintainer keeps the secondary lookup structures consistent with
// primary records. Index writes are ordered after the primary record they
// point at, never before, so an index entry always resolves.
type IndexMaintainer interface {
	// IndexUsername maps a username to its investor id.
	IndexUsername(ctx context.Context, username, investorID string) error
	// StageUsername buffers the username write onto a pipeline. The caller
	// stages the investor record first; pipeline order preserves the
	// record-before-index invariant.
	StageUsername(pipe RecordPipeline, username, investorID string)
	// InvestorIDByUsername resolves the username index.
	InvestorIDByUsername(ctx context.Context, username string) (string, bool, error)

	// AppendAccount records account membership on the per-investor list.
	AppendAccount(ctx context.Context, investorID, accountID string) error
	// StageAccount buffers the membership append onto a pipeline.
	StageAccount(pipe RecordPipeline, investorID, accountID string)
	// AccountsOf returns the investor's account ids in creation order.
	AccountsOf(ctx context.Context, investorID string) ([]string, error)

	// TrackInvestorKey appends the investor key to the load bookkeeping list.
	TrackInvestorKey(pipe RecordPipeline, investorKey string)
	// InvestorKeys returns every tracked investor key.
	InvestorKeys(ctx context.Context) ([]string, error)

	// LinkOwnership writes the ownership back-reference onto the account
	// hash, after the ownership record exists.
	LinkOwnership(ctx context.Context, accountID, ownershipKey string) error
}
