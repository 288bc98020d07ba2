package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/utils"
)

// RedisOperatorRepo stores each operator as JSON under "operator:<id>" with
// an "operator:email:<email>" index.  Ids come from INCR on "operator:seq".
type RedisOperatorRepo struct{ RDB *redis.Client }

func NewRedisOperatorRepo(rdb *redis.Client) *RedisOperatorRepo { return &RedisOperatorRepo{RDB: rdb} }

const (
	operatorSeqKey   = "operator:seq"
	operatorIndexKey = "operator:ids"
)

func operatorKey(id uint64) string      { return "operator:" + strconv.FormatUint(id, 10) }
func operatorEmailKey(e string) string { return "operator:email:" + e }

type redisOperator struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *RedisOperatorRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id, err := r.RDB.Incr(ctx, operatorSeqKey).Uint64()
	if err != nil {
		return 0, err
	}
	// SETNX on the email index is the uniqueness check.
	ok, err := r.RDB.SetNX(ctx, operatorEmailKey(email), id, 0).Result()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrEmailExists
	}
	b, err := json.Marshal(redisOperator{ID: id, Email: email, PasswordHash: hash, Role: string(role), CreatedAt: time.Now().UTC()})
	if err != nil {
		return 0, err
	}
	_, err = r.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, operatorKey(id), b, 0)
		p.SAdd(ctx, operatorIndexKey, id)
		return nil
	})
	if err != nil {
		_ = r.RDB.Del(ctx, operatorEmailKey(email)).Err()
		return 0, err
	}
	return id, nil
}

func (r *RedisOperatorRepo) GetByEmail(ctx context.Context, email string) (model.Operator, error) {
	id, err := r.RDB.Get(ctx, operatorEmailKey(normalizeEmail(email))).Uint64()
	if errors.Is(err, redis.Nil) {
		return model.Operator{}, ErrOperatorNotFound
	}
	if err != nil {
		return model.Operator{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *RedisOperatorRepo) GetByID(ctx context.Context, id uint64) (model.Operator, error) {
	b, err := r.RDB.Get(ctx, operatorKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Operator{}, ErrOperatorNotFound
	}
	if err != nil {
		return model.Operator{}, err
	}
	var ro redisOperator
	if err := json.Unmarshal(b, &ro); err != nil {
		return model.Operator{}, err
	}
	return model.Operator{ID: ro.ID, Email: ro.Email, PasswordHash: ro.PasswordHash, Role: model.ParseRole(ro.Role), CreatedAt: ro.CreatedAt}, nil
}

func (r *RedisOperatorRepo) Count(ctx context.Context) (int, error) {
	n, err := r.RDB.SCard(ctx, operatorIndexKey).Result()
	return int(n), err
}
