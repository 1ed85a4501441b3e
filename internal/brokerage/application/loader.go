package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
	"github.com/hguiagoussou/brokeragesim/pkg/metrics"
)

// LoaderConfig sizes a bulk load run.
type LoaderConfig struct {
	TotalInvestors      int
	AccountsPerInvestor int
	// BatchSize bounds the number of entities staged per pipeline flush.
	BatchSize int
	// MaxIDRetries bounds candidate regeneration per entity before the run
	// fails with ErrIDSpaceExhausted.
	MaxIDRetries int
	// OwnershipConcurrency bounds the ownership write fan-out.
	OwnershipConcurrency int
}

// LoadReport is returned even on partial failure; counts reflect what was
// actually committed, and nothing already committed is rolled back.
type LoadReport struct {
	RunID           string
	Investors       int
	Accounts        int
	Ownerships      int
	SkippedEntities int
	Elapsed         time.Duration
}

// BulkLoader drives creation of investors, their accounts and per-account
// stock ownership through the repositories and the index maintainer.
type BulkLoader struct {
	store      domain.RecordStore
	investors  domain.InvestorRepository
	accounts   domain.AccountRepository
	ownerships domain.OwnershipRepository
	index      domain.IndexMaintainer
	gen        EntityGenerator
	cfg        LoaderConfig
	metrics    *metrics.Metrics
}

// NewBulkLoader wires a loader. m may be nil.
func NewBulkLoader(
	store domain.RecordStore,
	investors domain.InvestorRepository,
	accounts domain.AccountRepository,
	ownerships domain.OwnershipRepository,
	index domain.IndexMaintainer,
	gen EntityGenerator,
	cfg LoaderConfig,
	m *metrics.Metrics,
) *BulkLoader {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxIDRetries <= 0 {
		cfg.MaxIDRetries = 100
	}
	if cfg.OwnershipConcurrency <= 0 {
		cfg.OwnershipConcurrency = 8
	}
	return &BulkLoader{
		store:      store,
		investors:  investors,
		accounts:   accounts,
		ownerships: ownerships,
		index:      index,
		gen:        gen,
		cfg:        cfg,
		metrics:    m,
	}
}

// Load runs one bulk load. The report is valid even when err is non-nil:
// a failed write aborts the run with the counts committed so far.
func (l *BulkLoader) Load(ctx context.Context) (*LoadReport, error) {
	start := time.Now()
	report := &LoadReport{RunID: uuid.NewString()}
	if l.metrics != nil {
		l.metrics.LoadRunsTotal.Inc()
	}
	logging.Info(ctx, "bulk load starting",
		"run_id", report.RunID,
		"total_investors", l.cfg.TotalInvestors,
		"accounts_per_investor", l.cfg.AccountsPerInvestor)

	investors, err := l.loadInvestors(ctx, report)
	if err != nil {
		report.Elapsed = time.Since(start)
		return report, err
	}

	accounts, err := l.loadAccounts(ctx, report, investors)
	if err != nil {
		report.Elapsed = time.Since(start)
		return report, err
	}

	if err := l.loadOwnerships(ctx, report, accounts); err != nil {
		report.Elapsed = time.Since(start)
		return report, err
	}

	report.Elapsed = time.Since(start)
	logging.Info(ctx, "bulk load complete",
		"run_id", report.RunID,
		"investors", report.Investors,
		"accounts", report.Accounts,
		"ownerships", report.Ownerships,
		"skipped", report.SkippedEntities,
		"elapsed", report.Elapsed.String())
	return report, nil
}

// reserve claims an id candidate atomically against the backend. The
// in-process sets are only a fast first check; SETNX on the reservation
// keyspace is what makes concurrent loaders collision-safe.
func (l *BulkLoader) reserve(ctx context.Context, kind, id, runID string, seen map[string]struct{}) (bool, error) {
	if _, dup := seen[id]; dup {
		return false, nil
	}
	won, err := l.store.SetNX(ctx, domain.ReservationKey(kind, id), runID)
	if err != nil {
		return false, err
	}
	if won {
		seen[id] = struct{}{}
	}
	return won, nil
}

func (l *BulkLoader) loadInvestors(ctx context.Context, report *LoadReport) ([]*domain.Investor, error) {
	seenIDs := make(map[string]struct{}, l.cfg.TotalInvestors)
	seenUsernames := make(map[string]struct{}, l.cfg.TotalInvestors)

	pending := make([]*domain.Investor, 0, l.cfg.TotalInvestors)
	for len(pending) < l.cfg.TotalInvestors {
		inv, err := l.nextInvestor(ctx, report.RunID, seenIDs, seenUsernames)
		if err != nil {
			return nil, err
		}
		pending = append(pending, inv)
	}

	committed := make([]*domain.Investor, 0, len(pending))
	for _, batch := range lo.Chunk(pending, l.cfg.BatchSize) {
		pipe := l.store.Pipeline()
		flushed := make([]*domain.Investor, 0, len(batch))
		for _, inv := range batch {
			if err := l.investors.Stage(pipe, inv); err != nil {
				if l.skipInvalid(ctx, report, err, "investor", inv.ID) {
					continue
				}
				return committed, err
			}
			l.index.TrackInvestorKey(pipe, inv.Key())
			l.index.StageUsername(pipe, inv.Username, inv.ID)
			flushed = append(flushed, inv)
		}
		if err := pipe.Exec(ctx); err != nil {
			return committed, err
		}
		committed = append(committed, flushed...)
		report.Investors += len(flushed)
		if l.metrics != nil {
			l.metrics.EntitiesLoaded.WithLabelValues("investor").Add(float64(len(flushed)))
		}
	}
	return committed, nil
}

func (l *BulkLoader) nextInvestor(ctx context.Context, runID string, seenIDs, seenUsernames map[string]struct{}) (*domain.Investor, error) {
	for attempt := 0; attempt < l.cfg.MaxIDRetries; attempt++ {
		inv := l.gen.Investor()
		if _, dup := seenUsernames[inv.Username]; dup {
			continue
		}
		won, err := l.reserve(ctx, "investor", inv.ID, runID, seenIDs)
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}
		seenUsernames[inv.Username] = struct{}{}
		return inv, nil
	}
	return nil, fmt.Errorf("investor id generation failed after %d attempts: %w",
		l.cfg.MaxIDRetries, domain.ErrIDSpaceExhausted)
}

func (l *BulkLoader) loadAccounts(ctx context.Context, report *LoadReport, investors []*domain.Investor) ([]*domain.Account, error) {
	seenIDs := make(map[string]struct{}, len(investors)*l.cfg.AccountsPerInvestor)

	pending := make([]*domain.Account, 0, len(investors)*l.cfg.AccountsPerInvestor)
	for _, inv := range investors {
		for i := 0; i < l.cfg.AccountsPerInvestor; i++ {
			acc, err := l.nextAccount(ctx, report.RunID, inv.ID, seenIDs)
			if err != nil {
				return nil, err
			}
			pending = append(pending, acc)
		}
	}

	committed := make([]*domain.Account, 0, len(pending))
	for _, batch := range lo.Chunk(pending, l.cfg.BatchSize) {
		pipe := l.store.Pipeline()
		flushed := make([]*domain.Account, 0, len(batch))
		for _, acc := range batch {
			if err := l.accounts.Stage(pipe, acc); err != nil {
				if l.skipInvalid(ctx, report, err, "account", acc.ID) {
					continue
				}
				return committed, err
			}
			// Membership append rides the same pipeline as the account hash,
			// record first, so the index never points at a missing account.
			l.index.StageAccount(pipe, acc.BelongsToInvestor, acc.ID)
			flushed = append(flushed, acc)
		}
		if err := pipe.Exec(ctx); err != nil {
			return committed, err
		}
		committed = append(committed, flushed...)
		report.Accounts += len(flushed)
		if l.metrics != nil {
			l.metrics.EntitiesLoaded.WithLabelValues("account").Add(float64(len(flushed)))
		}
	}
	return committed, nil
}

func (l *BulkLoader) nextAccount(ctx context.Context, runID, investorID string, seenIDs map[string]struct{}) (*domain.Account, error) {
	for attempt := 0; attempt < l.cfg.MaxIDRetries; attempt++ {
		acc := l.gen.Account(investorID)
		won, err := l.reserve(ctx, "account", acc.ID, runID, seenIDs)
		if err != nil {
			return nil, err
		}
		if !won {
			continue
		}
		return acc, nil
	}
	return nil, fmt.Errorf("account id generation failed after %d attempts: %w",
		l.cfg.MaxIDRetries, domain.ErrIDSpaceExhausted)
}

func (l *BulkLoader) loadOwnerships(ctx context.Context, report *LoadReport, accounts []*domain.Account) error {
	// Lots are generated up front on this goroutine; the generator is not
	// safe for concurrent use. Only the writes fan out.
	ownerships := make([]*domain.StockOwnership, len(accounts))
	for i, acc := range accounts {
		ownerships[i] = l.gen.Ownership(acc.ID)
	}

	var created, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.OwnershipConcurrency)
	for _, own := range ownerships {
		g.Go(func() error {
			if err := l.ownerships.Create(gctx, own); err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					logging.Warn(gctx, "skipping invalid stock_ownership",
						"run_id", report.RunID, "account_id", own.AccountID, "error", err)
					skipped.Add(1)
					return nil
				}
				return err
			}
			if err := l.index.LinkOwnership(gctx, own.AccountID, own.Key()); err != nil {
				return err
			}
			created.Add(1)
			return nil
		})
	}
	err := g.Wait()
	report.Ownerships += int(created.Load())
	report.SkippedEntities += int(skipped.Load())
	if l.metrics != nil {
		l.metrics.EntitiesLoaded.WithLabelValues("stock_ownership").Add(float64(created.Load()))
	}
	return err
}

// skipInvalid reports whether err is a per-entity validation failure, which
// skips the entity without aborting the run.
func (l *BulkLoader) skipInvalid(ctx context.Context, report *LoadReport, err error, kind, id string) bool {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	logging.Warn(ctx, "skipping invalid "+kind,
		"run_id", report.RunID, "id", id, "error", err)
	report.SkippedEntities++
	return true
}
