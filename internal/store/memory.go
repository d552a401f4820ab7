package store

import (
	"context"
	"sync"

	apperrors "rafiqe/internal/errors"
)

// MemoryRepository keeps the saved state in process memory.
type MemoryRepository struct {
	mu    sync.Mutex
	state *State
	saves int
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns a copy of the last saved state.
func (r *MemoryRepository) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return nil, apperrors.WithMessage(apperrors.ErrNotFound, "no saved state")
	}
	out := r.state.Clone()
	out.Phase = resumablePhase(out.Phase, out.Plans)
	return &out, nil
}

// Save stores a copy of state.
func (r *MemoryRepository) Save(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := state.Clone()
	r.state = &saved
	r.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
