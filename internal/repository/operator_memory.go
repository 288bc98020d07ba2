package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
	"github.com/iliyamo/hotel-rate-configurator/internal/utils"
)

// MemoryOperatorRepo keeps operators in process memory.  Accounts are lost
// on restart.
type MemoryOperatorRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	byID    map[uint64]model.Operator
	byEmail map[string]uint64
}

func NewMemoryOperatorRepo() *MemoryOperatorRepo {
	return &MemoryOperatorRepo{byID: map[uint64]model.Operator{}, byEmail: map[string]uint64{}}
}

func (r *MemoryOperatorRepo) Create(_ context.Context, email, password string, role model.Role, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return 0, ErrEmailExists
	}
	r.nextID++
	op := model.Operator{ID: r.nextID, Email: email, PasswordHash: hash, Role: role, CreatedAt: time.Now().UTC()}
	r.byID[op.ID] = op
	r.byEmail[email] = op.ID
	return op.ID, nil
}

func (r *MemoryOperatorRepo) GetByEmail(_ context.Context, email string) (model.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return model.Operator{}, ErrOperatorNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryOperatorRepo) GetByID(_ context.Context, id uint64) (model.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byID[id]
	if !ok {
		return model.Operator{}, ErrOperatorNotFound
	}
	return op, nil
}

func (r *MemoryOperatorRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
