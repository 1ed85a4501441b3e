package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
	"github.com/hguiagoussou/brokeragesim/pkg/metrics"
)

// Holding pairs an account with its security lots. Lots are nil when the
// ownership record could not be resolved; the matching warning says why.
type Holding struct {
	Account *domain.Account
	Lots    []domain.SecurityLot
}

// PortfolioView is the materialized result of one username resolution.
type PortfolioView struct {
	Investor *domain.Investor
	Holdings []Holding
	Warnings []domain.IntegrityWarning
	Elapsed  time.Duration
}

// QueryService resolves username → investor → accounts → ownership by
// chaining index lookups. Reads may interleave with writes; the service
// tolerates an investor whose accounts are not yet visible.
type QueryService struct {
	investors  domain.InvestorRepository
	accounts   domain.AccountRepository
	ownerships domain.OwnershipRepository
	index      domain.IndexMaintainer
	metrics    *metrics.Metrics
}

// NewQueryService wires a query service. m may be nil.
func NewQueryService(
	investors domain.InvestorRepository,
	accounts domain.AccountRepository,
	ownerships domain.OwnershipRepository,
	index domain.IndexMaintainer,
	m *metrics.Metrics,
) *QueryService {
	return &QueryService{
		investors:  investors,
		accounts:   accounts,
		ownerships: ownerships,
		index:      index,
		metrics:    m,
	}
}

// Portfolio resolves one username. An unknown username returns ErrNotFound;
// an investor with no accounts is a valid zero-holding result. Dangling
// ownership references become warnings on the view, never errors.
func (s *QueryService) Portfolio(ctx context.Context, username string) (*PortfolioView, error) {
	start := time.Now()
	if username == "" {
		return nil, &domain.ValidationError{Entity: "query", Fields: []string{"username"}}
	}

	investorID, found, err := s.index.InvestorIDByUsername(ctx, username)
	if err != nil {
		s.countQuery("error")
		return nil, err
	}
	if !found {
		s.countQuery("not_found")
		return nil, fmt.Errorf("no investor for username %q: %w", username, domain.ErrNotFound)
	}

	investor, err := s.investors.Get(ctx, investorID)
	if err != nil {
		s.countQuery("error")
		return nil, err
	}
	if investor == nil {
		// Index entries are written after the record, so this only shows up
		// mid-load from another writer; report it as the username being
		// unknown rather than a half-built view.
		s.countQuery("not_found")
		return nil, fmt.Errorf("no investor for username %q: %w", username, domain.ErrNotFound)
	}

	accountIDs, err := s.index.AccountsOf(ctx, investorID)
	if err != nil {
		s.countQuery("error")
		return nil, err
	}

	view := &PortfolioView{Investor: investor, Holdings: make([]Holding, 0, len(accountIDs))}
	for _, accountID := range accountIDs {
		if err := s.resolveHolding(ctx, view, accountID); err != nil {
			s.countQuery("error")
			return nil, err
		}
	}

	view.Elapsed = time.Since(start)
	s.countQuery("ok")
	if s.metrics != nil {
		s.metrics.QueryDuration.Observe(view.Elapsed.Seconds())
		s.metrics.IntegrityWarnings.Add(float64(len(view.Warnings)))
	}
	logging.Debug(ctx, "portfolio resolved",
		"username", username,
		"accounts", len(view.Holdings),
		"warnings", len(view.Warnings),
		"elapsed", view.Elapsed.String())
	return view, nil
}

func (s *QueryService) resolveHolding(ctx context.Context, view *PortfolioView, accountID string) error {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		view.Warnings = append(view.Warnings, domain.IntegrityWarning{
			AccountID: accountID,
			Reason:    "account record missing for indexed id",
		})
		return nil
	}

	if account.OwnershipKey == "" {
		view.Warnings = append(view.Warnings, domain.IntegrityWarning{
			AccountID: accountID,
			Reason:    "no ownership linked",
		})
		view.Holdings = append(view.Holdings, Holding{Account: account})
		return nil
	}

	ownership, err := s.ownerships.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		view.Warnings = append(view.Warnings, domain.IntegrityWarning{
			AccountID:    accountID,
			OwnershipKey: account.OwnershipKey,
			Reason:       "ownership record unreadable: " + err.Error(),
		})
		view.Holdings = append(view.Holdings, Holding{Account: account})
		return nil
	}
	if ownership == nil {
		view.Warnings = append(view.Warnings, domain.IntegrityWarning{
			AccountID:    accountID,
			OwnershipKey: account.OwnershipKey,
			Reason:       "ownership record missing",
		})
		view.Holdings = append(view.Holdings, Holding{Account: account})
		return nil
	}

	view.Holdings = append(view.Holdings, Holding{Account: account, Lots: ownership.Lots})
	return nil
}

func (s *QueryService) countQuery(result string) {
	if s.metrics != nil {
		s.metrics.QueriesTotal.WithLabelValues(result).Inc()
	}
}
