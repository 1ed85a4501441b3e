package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	redisstore "github.com/hguiagoussou/brokeragesim/internal/brokerage/infrastructure/persistence/redis"
)

type loaderEnv struct {
	mr         *miniredis.Miniredis
	store      *redisstore.Store
	investors  domain.InvestorRepository
	accounts   domain.AccountRepository
	ownerships domain.OwnershipRepository
	index      domain.IndexMaintainer
}

func newLoaderEnv(t *testing.T) *loaderEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := redisstore.NewStore(client, time.Second, nil)
	return &loaderEnv{
		mr:         mr,
		store:      store,
		investors:  redisstore.NewInvestorRepository(store),
		accounts:   redisstore.NewAccountRepository(store),
		ownerships: redisstore.NewOwnershipRepository(store),
		index:      redisstore.NewIndexMaintainer(store),
	}
}

func (e *loaderEnv) loader(gen EntityGenerator, cfg LoaderConfig) *BulkLoader {
	return NewBulkLoader(e.store, e.investors, e.accounts, e.ownerships, e.index, gen, cfg, nil)
}

func TestBulkLoadCommitsAllEntities(t *testing.T) {
	env := newLoaderEnv(t)
	ctx := context.Background()

	report, err := env.loader(NewGenerator(1), LoaderConfig{
		TotalInvestors:      3,
		AccountsPerInvestor: 2,
		BatchSize:           2,
	}).Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)
	require.Equal(t, 3, report.Investors)
	require.Equal(t, 6, report.Accounts)
	require.Equal(t, 6, report.Ownerships)
	require.Zero(t, report.SkippedEntities)
	require.Greater(t, report.Elapsed, time.Duration(0))

	keys, err := env.index.InvestorKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)

	seenAccounts := map[string]bool{}
	for _, key := range keys {
		investorID := strings.TrimPrefix(key, domain.InvestorKeyPrefix)

		inv, err := env.investors.Get(ctx, investorID)
		require.NoError(t, err)
		require.NotNil(t, inv)

		// Username round trip: the index resolves back to exactly this id.
		resolved, found, err := env.index.InvestorIDByUsername(ctx, inv.Username)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, investorID, resolved)

		// The id was atomically reserved against the backend.
		_, found, err = env.store.Get(ctx, domain.ReservationKey("investor", investorID))
		require.NoError(t, err)
		require.True(t, found)

		accountIDs, err := env.index.AccountsOf(ctx, investorID)
		require.NoError(t, err)
		require.Len(t, accountIDs, 2)
		for _, accountID := range accountIDs {
			require.False(t, seenAccounts[accountID], "account %s indexed twice", accountID)
			seenAccounts[accountID] = true

			acc, err := env.accounts.Get(ctx, accountID)
			require.NoError(t, err)
			require.NotNil(t, acc)
			require.Equal(t, investorID, acc.BelongsToInvestor)
			require.Equal(t, domain.OwnershipKey(accountID), acc.OwnershipKey)

			own, err := env.ownerships.Get(ctx, accountID)
			require.NoError(t, err)
			require.NotNil(t, own)
			require.NotEmpty(t, own.Lots)
		}
	}
	require.Len(t, seenAccounts, 6)
}

func TestBulkLoadInvestorIDsDistinct(t *testing.T) {
	env := newLoaderEnv(t)
	ctx := context.Background()

	report, err := env.loader(NewGenerator(2), LoaderConfig{
		TotalInvestors:      50,
		AccountsPerInvestor: 0,
	}).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 50, report.Investors)
	require.Zero(t, report.Accounts)

	keys, err := env.index.InvestorKeys(ctx)
	require.NoError(t, err)
	distinct := map[string]bool{}
	for _, key := range keys {
		distinct[key] = true
	}
	require.Len(t, distinct, 50)
}

// collidingGen wraps the real generator but pins every investor id to one
// value, so reservation can only ever succeed once.
type collidingGen struct {
	inner *Generator
	n     int
}

func (g *collidingGen) Investor() *domain.Investor {
	inv := g.inner.Investor()
	inv.ID = "INV-00001"
	g.n++
	inv.Username = inv.Username + "." + strings.Repeat("x", g.n%5)
	return inv
}

func (g *collidingGen) Account(investorID string) *domain.Account {
	return g.inner.Account(investorID)
}

func (g *collidingGen) Ownership(accountID string) *domain.StockOwnership {
	return g.inner.Ownership(accountID)
}

func TestBulkLoadIDSpaceExhaustion(t *testing.T) {
	env := newLoaderEnv(t)

	_, err := env.loader(&collidingGen{inner: NewGenerator(3)}, LoaderConfig{
		TotalInvestors: 2,
		MaxIDRetries:   10,
	}).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrIDSpaceExhausted)
}

func TestBulkLoadReportsPartialCompletionOnAbort(t *testing.T) {
	env := newLoaderEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := env.loader(NewGenerator(4), LoaderConfig{
		TotalInvestors:      5,
		AccountsPerInvestor: 1,
	}).Load(ctx)
	require.Error(t, err)
	require.NotNil(t, report)
	require.Zero(t, report.Investors)
}

func TestBulkLoadSecondRunAvoidsFirstRunIDs(t *testing.T) {
	env := newLoaderEnv(t)
	ctx := context.Background()

	// Same seed produces the same candidate stream; the backend reservation
	// forces the second run onto fresh ids.
	for run := 0; run < 2; run++ {
		report, err := env.loader(NewGenerator(5), LoaderConfig{
			TotalInvestors:      10,
			AccountsPerInvestor: 0,
		}).Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 10, report.Investors)
	}

	keys, err := env.index.InvestorKeys(ctx)
	require.NoError(t, err)
	distinct := map[string]bool{}
	for _, key := range keys {
		distinct[key] = true
	}
	require.Len(t, distinct, 20)
}
