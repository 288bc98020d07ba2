package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// RedisStoreRepo keeps the snapshot under "store:<property>".  The key has no
// expiry; Redis must be configured for persistence when used as the primary
// store.
type RedisStoreRepo struct {
	RDB *redis.Client
	Key string
}

func NewRedisStoreRepo(rdb *redis.Client, propertyID string) *RedisStoreRepo {
	return &RedisStoreRepo{RDB: rdb, Key: "store:" + propertyID}
}

// Load reads and decodes the stored snapshot.
func (r *RedisStoreRepo) Load(ctx context.Context) (*model.Store, error) {
	b, err := r.RDB.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return model.DecodeSnapshot(b)
}

// Save overwrites the stored snapshot.
func (r *RedisStoreRepo) Save(ctx context.Context, s *model.Store) error {
	b, err := model.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	if err := r.RDB.Set(ctx, r.Key, b, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
