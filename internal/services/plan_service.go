package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"rafiqe/internal/advisory"
	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/metrics"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
	"rafiqe/internal/reconciler"
)

const (
	maxAge      = 120
	maxChildren = 20
)

// planRun describes one plan generation.
type planRun struct {
	initial        bool
	previousIncome *decimal.Decimal
}

// StartOnboarding leaves the welcome step.
func (s *budgetService) StartOnboarding(ctx context.Context) (onboarding.Phase, error) {
	if _, err := s.machine.TransitionFrom(onboarding.ProfileCollecting, onboarding.Uninitialized); err != nil {
		return s.machine.Phase(), err
	}
	s.persist(ctx)
	return onboarding.ProfileCollecting, nil
}

// SubmitProfile stores the onboarding answers and asks for the initial
// choice of plans. It returns once the plans, or the failure, are known.
func (s *budgetService) SubmitProfile(ctx context.Context, profile models.UserProfile) (PlanState, error) {
	profile, err := normalizeProfile(profile)
	if err != nil {
		return PlanState{}, err
	}
	if _, err := s.machine.TransitionFrom(onboarding.PlanGenerating, onboarding.ProfileCollecting, onboarding.PlanError); err != nil {
		return PlanState{}, err
	}

	s.mu.Lock()
	s.profile = profile
	s.planEpoch++
	s.mu.Unlock()
	s.persist(ctx)

	return s.generatePlans(context.WithoutCancel(ctx), planRun{initial: true}), nil
}

// UpdateProfile edits the profile without asking for new plans.
func (s *budgetService) UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	profile, err := normalizeProfile(profile)
	if err != nil {
		return models.UserProfile{}, err
	}

	s.mu.Lock()
	s.profile = profile
	s.planEpoch++
	s.mu.Unlock()

	s.persist(ctx)
	return profile, nil
}

func normalizeProfile(p models.UserProfile) (models.UserProfile, error) {
	if p.Persona != "" && !p.Persona.Valid() {
		return p, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("unknown persona %q", p.Persona))
	}
	if p.Status != "" && !p.Status.Valid() {
		return p, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("unknown marital status %q", p.Status))
	}
	if p.FamilyStructure != "" && !p.FamilyStructure.Valid() {
		return p, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("unknown family structure %q", p.FamilyStructure))
	}
	if p.ChildrenCount < 0 || p.ChildrenCount > maxChildren {
		return p, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("children count must be between 0 and %d", maxChildren))
	}
	if p.Age == 0 {
		p.Age = models.DefaultAge
	}
	if p.Age < 0 || p.Age > maxAge {
		return p, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("age must be between 1 and %d", maxAge))
	}
	if p.Persona != models.PersonaLivingWithFamily {
		p.FamilyStructure = ""
	}
	p.Priorities = strings.TrimSpace(p.Priorities)
	return p, nil
}

// Plans returns the current plan generation status.
func (s *budgetService) Plans() PlanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planStateLocked()
}

func (s *budgetService) planStateLocked() PlanState {
	_, generating := s.requests[planRequest]
	return PlanState{
		Phase:      s.machine.Phase(),
		Generating: generating,
		Feedback:   s.feedback,
		Failure:    s.planFailure,
		Plans:      slices.Clone(s.plans),
	}
}

// GeneratePlans asks for plans again. During onboarding it offers a fresh
// choice of three unless regenerate asks for a single replacement; once
// the budget is active it always asks for one.
func (s *budgetService) GeneratePlans(ctx context.Context, regenerate bool) (PlanState, error) {
	switch phase := s.machine.Phase(); phase {
	case onboarding.Active:
		return s.generatePlans(context.WithoutCancel(ctx), planRun{}), nil
	case onboarding.PlanGenerating:
		// Replaces the generation in flight.
	default:
		if _, err := s.machine.TransitionFrom(onboarding.PlanGenerating, onboarding.PlanPresented, onboarding.PlanError); err != nil {
			return PlanState{}, err
		}
	}
	s.persist(ctx)
	return s.generatePlans(context.WithoutCancel(ctx), planRun{initial: !regenerate}), nil
}

// RetryPlans repeats a plan request that failed.
func (s *budgetService) RetryPlans(ctx context.Context) (PlanState, error) {
	if s.machine.IsActive() {
		s.mu.Lock()
		failed := s.planFailure != advisory.FailureNone
		s.mu.Unlock()
		if !failed {
			return PlanState{}, apperrors.WithMessage(apperrors.ErrInvalidState, "no failed plan request to retry")
		}
		return s.generatePlans(context.WithoutCancel(ctx), planRun{}), nil
	}

	if _, err := s.machine.TransitionFrom(onboarding.PlanGenerating, onboarding.PlanError); err != nil {
		return PlanState{}, err
	}
	s.persist(ctx)
	return s.generatePlans(context.WithoutCancel(ctx), planRun{initial: true}), nil
}

// generatePlans runs one cancel-and-replace plan request. A response is
// only kept while its request is the latest one; when the plan inputs moved
// while it was in flight, the request is repeated with the new inputs.
func (s *budgetService) generatePlans(parent context.Context, run planRun) PlanState {
	ctx, seq := s.begin(parent, planRequest)
	defer s.finish(planRequest, seq)

	for {
		req, epoch := s.buildPlanRequest(run)
		result := s.gateway.Plans(ctx, req)

		s.mu.Lock()
		if ctx.Err() != nil || !s.currentLocked(planRequest, seq) {
			state := s.planStateLocked()
			s.mu.Unlock()
			s.log.Infow("Discarding superseded plan response", "seq", seq)
			return state
		}
		if epoch != s.planEpoch {
			s.mu.Unlock()
			s.log.Infow("Plan inputs changed during generation, asking again", "seq", seq)
			continue
		}

		s.applyPlanResultLocked(result)
		s.endLocked(planRequest, seq)
		state := s.planStateLocked()
		s.mu.Unlock()

		s.persist(ctx)
		return state
	}
}

func (s *budgetService) buildPlanRequest(run planRun) (advisory.PlanRequest, uint64) {
	income := s.ledger.Income()

	s.mu.Lock()
	defer s.mu.Unlock()
	return advisory.PlanRequest{
		Profile:        s.profile,
		Income:         income,
		PreviousIncome: run.previousIncome,
		Currency:       s.currency,
		Locale:         s.locale,
		Initial:        run.initial,
	}, s.planEpoch
}

// applyPlanResultLocked records a plan response. Malformed plans are
// dropped; a response without any usable plan counts as a failure.
// s.mu must be held.
func (s *budgetService) applyPlanResultLocked(result advisory.PlanResult) {
	onboardingDone := s.machine.IsActive()

	failure := result.Failure
	valid := make([]models.BudgetPlan, 0, len(result.Plans))
	if !result.Failed() {
		for _, p := range result.Plans {
			if err := reconciler.ValidatePlan(p); err != nil {
				s.log.Warnw("Dropping invalid plan", "plan_id", p.ID, "error", err)
				continue
			}
			valid = append(valid, p)
		}
		if len(valid) == 0 {
			failure = advisory.FailureAPIError
		}
	}

	if failure != advisory.FailureNone {
		s.feedback = string(failure)
		s.planFailure = failure
		s.plans = []models.BudgetPlan{}
		if !onboardingDone {
			if err := s.machine.Transition(onboarding.PlanError); err != nil {
				s.log.Warnw("Could not record plan failure", "error", err)
			}
		}
		s.log.Warnw("Plan generation failed", "failure", failure)
		return
	}

	s.feedback = result.Feedback
	s.planFailure = advisory.FailureNone
	s.plans = valid
	if !onboardingDone {
		if err := s.machine.Transition(onboarding.PlanPresented); err != nil {
			s.log.Warnw("Could not present plans", "error", err)
		}
	}
	s.log.Infow("Plans ready", "count", len(valid))
}

// ApplyPlan replaces the buckets with the chosen plan and completes
// onboarding.
func (s *budgetService) ApplyPlan(ctx context.Context, planID string) ([]models.BucketWithSpending, error) {
	s.mu.Lock()
	i := slices.IndexFunc(s.plans, func(p models.BudgetPlan) bool { return p.ID == planID })
	var plan models.BudgetPlan
	if i >= 0 {
		plan = s.plans[i]
	}
	s.mu.Unlock()

	if i < 0 {
		return nil, apperrors.ErrPlanNotFound
	}
	if err := reconciler.ValidatePlan(plan); err != nil {
		return nil, err
	}
	if !s.machine.IsActive() {
		if _, err := s.machine.TransitionFrom(onboarding.Active, onboarding.PlanPresented); err != nil {
			return nil, err
		}
	}

	if _, err := s.reconciler.ApplyPlan(plan, s.ledger.Income()); err != nil {
		return nil, err
	}

	s.clearPlans()
	s.persist(ctx)
	s.refreshAdviceAsync()
	return metrics.BucketsWithSpending(s.ledger.Snapshot()), nil
}

// SkipPlans completes onboarding with the default buckets. Once the budget
// is active it only dismisses the presented plans.
func (s *budgetService) SkipPlans(ctx context.Context) ([]models.BucketWithSpending, error) {
	if !s.machine.IsActive() {
		if _, err := s.machine.TransitionFrom(onboarding.Active, onboarding.PlanPresented, onboarding.PlanError); err != nil {
			return nil, err
		}

		s.mu.Lock()
		locale := s.locale
		s.mu.Unlock()
		if _, err := s.reconciler.InstallFallback(locale); err != nil {
			return nil, err
		}
		s.refreshAdviceAsync()
	}

	s.clearPlans()
	s.persist(ctx)
	return metrics.BucketsWithSpending(s.ledger.Snapshot()), nil
}

func (s *budgetService) clearPlans() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = []models.BudgetPlan{}
	s.feedback = ""
	s.planFailure = advisory.FailureNone
}
