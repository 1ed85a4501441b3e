package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

func TestUsernameIndexRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	index := NewIndexMaintainer(store)
	ctx := context.Background()

	_, found, err := index.InvestorIDByUsername(ctx, "nobody@x")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, index.IndexUsername(ctx, "jane_doe@gmail.com", "INV-10001"))

	id, found, err := index.InvestorIDByUsername(ctx, "jane_doe@gmail.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "INV-10001", id)
}

func TestAccountMembershipExactlyOnce(t *testing.T) {
	store, _ := newTestStore(t)
	index := NewIndexMaintainer(store)
	ctx := context.Background()

	ids, err := index.AccountsOf(ctx, "INV-10001")
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, index.AppendAccount(ctx, "INV-10001", "ACC-3001"))
	require.NoError(t, index.AppendAccount(ctx, "INV-10001", "ACC-3002"))
	require.NoError(t, index.AppendAccount(ctx, "INV-20002", "ACC-3003"))

	ids, err = index.AccountsOf(ctx, "INV-10001")
	require.NoError(t, err)
	require.Equal(t, []string{"ACC-3001", "ACC-3002"}, ids)

	ids, err = index.AccountsOf(ctx, "INV-20002")
	require.NoError(t, err)
	require.Equal(t, []string{"ACC-3003"}, ids)
}

func TestLinkOwnershipWritesBackReference(t *testing.T) {
	store, _ := newTestStore(t)
	index := NewIndexMaintainer(store)
	accounts := NewAccountRepository(store)
	ctx := context.Background()

	acc := testAccount("INV-10001")
	require.NoError(t, accounts.Create(ctx, acc))
	require.NoError(t, index.LinkOwnership(ctx, acc.ID, domain.OwnershipKey(acc.ID)))

	got, err := accounts.Get(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "stock_ownership:"+acc.ID, got.OwnershipKey)
}

func TestStagedUsernameOrderedAfterRecord(t *testing.T) {
	store, _ := newTestStore(t)
	index := NewIndexMaintainer(store)
	investors := NewInvestorRepository(store)
	ctx := context.Background()

	inv := testInvestor()
	pipe := store.Pipeline()
	require.NoError(t, investors.Stage(pipe, inv))
	index.TrackInvestorKey(pipe, inv.Key())
	index.StageUsername(pipe, inv.Username, inv.ID)
	require.NoError(t, pipe.Exec(ctx))

	id, found, err := index.InvestorIDByUsername(ctx, inv.Username)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, inv.ID, id)

	// Anything the username index resolves must already be readable.
	got, err := investors.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	keys, err := index.InvestorKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{inv.Key()}, keys)
}
