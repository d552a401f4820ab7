package services

import (
	"context"

	"github.com/shopspring/decimal"

	"rafiqe/internal/advisory"
	"rafiqe/internal/metrics"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
	"rafiqe/internal/pagination"
)

// SettingsUpdate carries the display settings to change; nil fields are kept.
type SettingsUpdate struct {
	Currency *string
	Locale   *models.Locale
}

// PlanState is the plan generation status shown during onboarding and after
// an income change.
type PlanState struct {
	Phase      onboarding.Phase     `json:"phase"`
	Generating bool                 `json:"generating"`
	Feedback   string               `json:"feedback"`
	Failure    advisory.FailureCode `json:"failure,omitempty"`
	Plans      []models.BudgetPlan  `json:"plans"`
}

// AppState is the whole user-visible state in one document.
type AppState struct {
	Phase          onboarding.Phase            `json:"phase"`
	Income         decimal.Decimal             `json:"income"`
	Currency       models.Currency             `json:"currency"`
	Locale         models.Locale               `json:"locale"`
	Profile        models.UserProfile          `json:"profile"`
	Summary        metrics.Summary             `json:"summary"`
	Buckets        []models.BucketWithSpending `json:"buckets"`
	Plans          PlanState                   `json:"plans"`
	Advice         []string                    `json:"advice"`
	Suggestions    []models.AISuggestion       `json:"suggestions"`
	AdvisorEnabled bool                        `json:"advisor_enabled"`
}

// Dashboard is the steady-state budget view.
type Dashboard struct {
	Summary      metrics.Summary             `json:"summary"`
	Buckets      []models.BucketWithSpending `json:"buckets"`
	Chart        []metrics.ChartSlice        `json:"chart"`
	Transactions []models.Transaction        `json:"transactions"`
	Advice       []string                    `json:"advice"`
}

// BudgetServicer is the single entry point for every user intent. It owns
// the ledger, the onboarding phase and the latest advisory output.
type BudgetServicer interface {
	State() AppState
	Dashboard(filter metrics.Filter) Dashboard

	SetIncome(ctx context.Context, income decimal.Decimal) (AppState, error)
	UpdateSettings(ctx context.Context, upd SettingsUpdate) (AppState, error)

	AddBucket(ctx context.Context, name, icon string) (models.Bucket, error)
	UpdateBucketAllocation(ctx context.Context, id string, allocated decimal.Decimal) (models.Bucket, error)
	DeleteBucket(ctx context.Context, id string) error

	RecordTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(filter metrics.Filter, page pagination.PageRequest) pagination.PageResponse[models.Transaction]

	StartOnboarding(ctx context.Context) (onboarding.Phase, error)
	SubmitProfile(ctx context.Context, profile models.UserProfile) (PlanState, error)
	UpdateProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)

	Plans() PlanState
	GeneratePlans(ctx context.Context, regenerate bool) (PlanState, error)
	RetryPlans(ctx context.Context) (PlanState, error)
	ApplyPlan(ctx context.Context, planID string) ([]models.BucketWithSpending, error)
	SkipPlans(ctx context.Context) ([]models.BucketWithSpending, error)

	Suggestions() []models.AISuggestion
	ApplySuggestion(ctx context.Context, index int) (bool, error)
	DismissSuggestions(ctx context.Context)

	Advice() []string
	RefreshAdvice(ctx context.Context) ([]string, error)

	GenerateGoalImage(ctx context.Context, goal string) (string, error)

	Reset(ctx context.Context) (AppState, error)

	// Close cancels in-flight advisory work and waits for it to stop.
	Close()
}
