package redis

import (
	"context"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

// maintainer keeps the username index, the per-investor account list and the
// ownership back-reference consistent with primary records.
//
// Write ordering is the consistency mechanism: the primary record is always
// written (or staged) before the index entry pointing at it. A crash between
// the two leaves an entity invisible by lookup, which readers tolerate; the
// reverse order would let a lookup resolve to a record that does not exist
// yet, and is never produced here.
type maintainer struct {
	store domain.RecordStore
}

// NewIndexMaintainer builds the index maintainer over a record store.
func NewIndexMaintainer(store domain.RecordStore) domain.IndexMaintainer {
	return &maintainer{store: store}
}

func (m *maintainer) IndexUsername(ctx context.Context, username, investorID string) error {
	return m.store.Set(ctx, domain.UsernameKey(username), investorID)
}

func (m *maintainer) StageUsername(pipe domain.RecordPipeline, username, investorID string) {
	pipe.Set(domain.UsernameKey(username), investorID)
}

func (m *maintainer) InvestorIDByUsername(ctx context.Context, username string) (string, bool, error) {
	return m.store.Get(ctx, domain.UsernameKey(username))
}

// AppendAccount records membership on the investor_accounts list. Account
// ids carry no investor prefix, so scanning account:{investor_id}* can never
// find them; this maintained list is the only resolution path.
func (m *maintainer) AppendAccount(ctx context.Context, investorID, accountID string) error {
	return m.store.Append(ctx, domain.AccountIndexKey(investorID), accountID)
}

func (m *maintainer) StageAccount(pipe domain.RecordPipeline, investorID, accountID string) {
	pipe.Append(domain.AccountIndexKey(investorID), accountID)
}

func (m *maintainer) AccountsOf(ctx context.Context, investorID string) ([]string, error) {
	return m.store.Range(ctx, domain.AccountIndexKey(investorID), 0, -1)
}

func (m *maintainer) TrackInvestorKey(pipe domain.RecordPipeline, investorKey string) {
	pipe.Append(domain.InvestorKeysList, investorKey)
}

func (m *maintainer) InvestorKeys(ctx context.Context) ([]string, error) {
	return m.store.Range(ctx, domain.InvestorKeysList, 0, -1)
}

func (m *maintainer) LinkOwnership(ctx context.Context, accountID, ownershipKey string) error {
	return m.store.SetField(ctx, domain.AccountKey(accountID), domain.OwnershipLinkField, ownershipKey)
}
