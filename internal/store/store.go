// Package store persists the budget between runs. The whole state is loaded
// once at startup and written back after every successful change.
package store

import (
	"context"
	"slices"

	"rafiqe/internal/ledger"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
)

// State is everything that survives a restart.
type State struct {
	Ledger   ledger.Snapshot
	Profile  models.UserProfile
	Currency string
	Locale   models.Locale
	Phase    onboarding.Phase
	Feedback string
	Plans    []models.BudgetPlan
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Ledger.Buckets = slices.Clone(s.Ledger.Buckets)
	out.Ledger.Transactions = slices.Clone(s.Ledger.Transactions)
	out.Plans = make([]models.BudgetPlan, len(s.Plans))
	for i, p := range s.Plans {
		p.Buckets = slices.Clone(p.Buckets)
		out.Plans[i] = p
	}
	return out
}

// Repository loads and saves State. Load returns an ErrNotFound AppError
// when nothing has been saved yet.
type Repository interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
}

// resumablePhase maps a phase that cannot survive a restart onto the phase
// the user should resume from. A generation in flight is lost, and presented
// plans are only kept when they were persisted with the state.
func resumablePhase(p onboarding.Phase, plans []models.BudgetPlan) onboarding.Phase {
	switch {
	case !p.Valid():
		return onboarding.Uninitialized
	case p == onboarding.PlanGenerating:
		return onboarding.PlanError
	case p == onboarding.PlanPresented && len(plans) == 0:
		return onboarding.PlanError
	}
	return p
}
