package repository

import (
	"context"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// StoreRepository loads and saves the configuration snapshot of one
// property.  Load returns (nil, nil) when nothing has been saved yet.
type StoreRepository interface {
	Load(ctx context.Context) (*model.Store, error)
	Save(ctx context.Context, s *model.Store) error
}
