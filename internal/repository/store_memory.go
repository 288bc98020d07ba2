package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// MemoryStoreRepo keeps the encoded snapshot in process memory.  Going
// through the snapshot codec keeps it honest about what survives a save.
// FailSave makes the next saves fail, for tests.
type MemoryStoreRepo struct {
	mu       sync.Mutex
	payload  []byte
	saves    int
	FailSave error
}

func NewMemoryStoreRepo() *MemoryStoreRepo { return &MemoryStoreRepo{} }

func (r *MemoryStoreRepo) Load(_ context.Context) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.payload == nil {
		return nil, nil
	}
	return model.DecodeSnapshot(r.payload)
}

func (r *MemoryStoreRepo) Save(_ context.Context, s *model.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	b, err := model.EncodeSnapshot(s)
	if err != nil {
		return err
	}
	r.payload = b
	r.saves++
	return nil
}

// Saves returns how many saves succeeded.
func (r *MemoryStoreRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
