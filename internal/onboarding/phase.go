// Package onboarding tracks where the user is on the way from a blank
// ledger to an active budget.
package onboarding

import (
	"fmt"
	"sync"

	apperrors "rafiqe/internal/errors"
)

// Phase is a step of the onboarding flow.
type Phase string

const (
	Uninitialized     Phase = "uninitialized"
	ProfileCollecting Phase = "profile_collecting"
	PlanGenerating    Phase = "plan_generating"
	PlanPresented     Phase = "plan_presented"
	PlanError         Phase = "plan_error"
	Active            Phase = "active"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

// transitions lists the phases reachable from each phase. Reset to
// Uninitialized is always allowed and is handled separately.
var transitions = map[Phase][]Phase{
	Uninitialized:     {ProfileCollecting},
	ProfileCollecting: {PlanGenerating},
	PlanGenerating:    {PlanPresented, PlanError},
	PlanError:         {PlanGenerating, Active},
	PlanPresented:     {Active, PlanGenerating},
	Active:            {},
}

// CanTransition reports whether from → to is an allowed move.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Machine guards the current phase. It is safe for concurrent use.
type Machine struct {
	mu    sync.RWMutex
	phase Phase
}

// NewMachine starts a machine in the given phase; an unknown phase starts
// it uninitialized.
func NewMachine(start Phase) *Machine {
	if !start.Valid() {
		start = Uninitialized
	}
	return &Machine{phase: start}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// IsActive reports whether onboarding has completed.
func (m *Machine) IsActive() bool {
	return m.Phase() == Active
}

// Transition moves to the given phase or fails with ErrInvalidState.
func (m *Machine) Transition(to Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.phase, to) {
		return apperrors.WithMessage(apperrors.ErrInvalidState,
			fmt.Sprintf("cannot move from %s to %s", m.phase, to))
	}
	m.phase = to
	return nil
}

// TransitionFrom moves to the given phase only if the machine is currently
// in one of the expected phases. It returns the phase it left.
func (m *Machine) TransitionFrom(to Phase, expected ...Phase) (Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.phase
	for _, e := range expected {
		if e == from && CanTransition(from, to) {
			m.phase = to
			return from, nil
		}
	}
	return from, apperrors.WithMessage(apperrors.ErrInvalidState,
		fmt.Sprintf("cannot move from %s to %s", from, to))
}

// Reset returns to the start of onboarding from any phase.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = Uninitialized
}
