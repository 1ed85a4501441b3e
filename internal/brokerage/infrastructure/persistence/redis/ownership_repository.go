package redis

import (
	"context"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

type ownershipRepository struct {
	store domain.RecordStore
}

// NewOwnershipRepository builds the stock ownership repository over a
// record store.
func NewOwnershipRepository(store domain.RecordStore) domain.OwnershipRepository {
	return &ownershipRepository{store: store}
}

func (r *ownershipRepository) Create(ctx context.Context, own *domain.StockOwnership) error {
	if err := own.Validate(); err != nil {
		return err
	}
	doc, err := own.MarshalLots()
	if err != nil {
		return err
	}
	return r.store.SetFields(ctx, own.Key(), map[string]string{
		"account_id":    own.AccountID,
		"security_lots": doc,
	})
}

func (r *ownershipRepository) Get(ctx context.Context, accountID string) (*domain.StockOwnership, error) {
	fields, err := r.store.GetAllFields(ctx, domain.OwnershipKey(accountID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	lots, err := domain.UnmarshalLots(fields["security_lots"])
	if err != nil {
		return nil, err
	}
	return &domain.StockOwnership{AccountID: fields["account_id"], Lots: lots}, nil
}
