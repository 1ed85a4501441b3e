package redis

import (
	"context"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

type investorRepository struct {
	store domain.RecordStore
}

// NewInvestorRepository builds the investor repository over a record store.
func NewInvestorRepository(store domain.RecordStore) domain.InvestorRepository {
	return &investorRepository{store: store}
}

func (r *investorRepository) Create(ctx context.Context, inv *domain.Investor) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return r.store.SetFields(ctx, inv.Key(), inv.Fields())
}

func (r *investorRepository) Stage(pipe domain.RecordPipeline, inv *domain.Investor) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	pipe.SetFields(inv.Key(), inv.Fields())
	return nil
}

func (r *investorRepository) Get(ctx context.Context, id string) (*domain.Investor, error) {
	fields, err := r.store.GetAllFields(ctx, domain.InvestorKey(id))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return domain.InvestorFromFields(fields)
}
