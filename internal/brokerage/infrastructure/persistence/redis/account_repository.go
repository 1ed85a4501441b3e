package redis

import (
	"context"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

type accountRepository struct {
	store domain.RecordStore
}

// NewAccountRepository builds the account repository over a record store.
func NewAccountRepository(store domain.RecordStore) domain.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Create(ctx context.Context, acc *domain.Account) error {
	if err := acc.Validate(); err != nil {
		return err
	}
	return r.store.SetFields(ctx, acc.Key(), acc.Fields())
}

func (r *accountRepository) Stage(pipe domain.RecordPipeline, acc *domain.Account) error {
	if err := acc.Validate(); err != nil {
		return err
	}
	pipe.SetFields(acc.Key(), acc.Fields())
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*domain.Account, error) {
	fields, err := r.store.GetAllFields(ctx, domain.AccountKey(id))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return domain.AccountFromFields(fields)
}
