// Package advisory is the boundary to the external advisory service that
// proposes budget plans, advice and post-transaction suggestions. Every
// call is retried with exponential backoff and always resolves to a
// defined fallback value instead of an error.
package advisory

import (
	"context"

	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
)

// Request limits.
const (
	InitialPlanCount = 3
	RegenPlanCount   = 1
	MaxAdvice        = 3
	MaxSuggestions   = 3
)

// PlanRequest asks for budget plans tailored to the user.
type PlanRequest struct {
	Profile        models.UserProfile
	Income         decimal.Decimal
	PreviousIncome *decimal.Decimal
	Currency       models.Currency
	Locale         models.Locale
	Initial        bool
}

// Count is the number of plans to ask for: a choice of three during
// onboarding, a single replacement afterwards.
func (r PlanRequest) Count() int {
	if r.Initial {
		return InitialPlanCount
	}
	return RegenPlanCount
}

// IncomeTrend describes how income moved relative to PreviousIncome.
func (r PlanRequest) IncomeTrend() string {
	if r.PreviousIncome == nil {
		return "set"
	}
	switch r.Income.Cmp(*r.PreviousIncome) {
	case 1:
		return "increased"
	case -1:
		return "decreased"
	default:
		return "changed"
	}
}

// PlanResponse is what the collaborator returns for a plan request.
type PlanResponse struct {
	Feedback string
	Plans    []models.BudgetPlan
}

// AdviceRequest asks for general advice on the current budget.
type AdviceRequest struct {
	Profile  models.UserProfile
	Income   decimal.Decimal
	Buckets  []models.BucketWithSpending
	Currency models.Currency
	Locale   models.Locale
}

// SuggestionRequest asks for suggestions reacting to one transaction.
type SuggestionRequest struct {
	Transaction models.Transaction
	Buckets     []models.BucketWithSpending
	Income      decimal.Decimal
	Profile     models.UserProfile
	Currency    models.Currency
	Locale      models.Locale
}

// Advisor is the external advisory collaborator. Implementations may fail
// and may be slow; they must honor ctx.
type Advisor interface {
	GeneratePlans(ctx context.Context, req PlanRequest) (PlanResponse, error)
	GenerateAdvice(ctx context.Context, req AdviceRequest) ([]string, error)
	GenerateSuggestions(ctx context.Context, req SuggestionRequest) ([]models.AISuggestion, error)
	GenerateGoalImage(ctx context.Context, prompt string) (string, error)
}

// Unconfigured is the Advisor used when no advisory service is set up.
// Every call fails immediately without being retried.
type Unconfigured struct{}

var _ Advisor = Unconfigured{}

// GeneratePlans implements Advisor.
func (Unconfigured) GeneratePlans(context.Context, PlanRequest) (PlanResponse, error) {
	return PlanResponse{}, ErrNotConfigured
}

// GenerateAdvice implements Advisor.
func (Unconfigured) GenerateAdvice(context.Context, AdviceRequest) ([]string, error) {
	return nil, ErrNotConfigured
}

// GenerateSuggestions implements Advisor.
func (Unconfigured) GenerateSuggestions(context.Context, SuggestionRequest) ([]models.AISuggestion, error) {
	return nil, ErrNotConfigured
}

// GenerateGoalImage implements Advisor.
func (Unconfigured) GenerateGoalImage(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
