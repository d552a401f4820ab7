// Package reconciler turns advisory output, whole budget plans and
// individual suggestion actions, into ledger mutations without breaking
// the ledger's allocation invariants.
package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/ledger"
	"rafiqe/internal/models"
)

// MinPlanBuckets is the entry count advisory plans promise to meet.
const MinPlanBuckets = 5

var (
	hundred          = decimal.NewFromInt(100)
	percentTolerance = decimal.RequireFromString("0.5")
)

// AdviceRefresher is notified after a suggestion changed the ledger.
type AdviceRefresher func(ctx context.Context)

// Reconciler applies plans and suggestion actions to a ledger store.
type Reconciler struct {
	store     *ledger.Store
	log       *zap.SugaredLogger
	refresher AdviceRefresher
}

// New creates a Reconciler for the given store.
func New(store *ledger.Store, log *zap.SugaredLogger) *Reconciler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{store: store, log: log}
}

// OnSuggestionApplied registers the hook that refreshes advice after a
// suggestion action has been applied.
func (r *Reconciler) OnSuggestionApplied(fn AdviceRefresher) {
	r.refresher = fn
}

// ValidatePlan checks a plan before it may touch the ledger: it needs at
// least one entry, unique non-empty ids, no negative percents and a
// percent total of 100 within tolerance.
func ValidatePlan(plan models.BudgetPlan) error {
	if len(plan.Buckets) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidPlan, "plan has no buckets")
	}

	seen := make(map[string]struct{}, len(plan.Buckets))
	for _, b := range plan.Buckets {
		if strings.TrimSpace(b.ID) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidPlan, "plan bucket is missing an id")
		}
		if _, dup := seen[b.ID]; dup {
			return apperrors.WithMessage(apperrors.ErrInvalidPlan, fmt.Sprintf("plan bucket %q appears twice", b.ID))
		}
		seen[b.ID] = struct{}{}
		if strings.TrimSpace(b.Name) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidPlan, fmt.Sprintf("plan bucket %q is missing a name", b.ID))
		}
		if b.Percent.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrInvalidPlan, fmt.Sprintf("plan bucket %q has a negative percent", b.ID))
		}
	}

	total := plan.PercentTotal()
	if total.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return apperrors.WithMessage(apperrors.ErrInvalidPlan, fmt.Sprintf("plan percents sum to %s, expected 100", total))
	}
	return nil
}

// PlanBuckets builds the bucket set a plan produces for the given income.
func PlanBuckets(plan models.BudgetPlan, income decimal.Decimal) ([]models.Bucket, error) {
	if err := ValidatePlan(plan); err != nil {
		return nil, err
	}

	buckets := make([]models.Bucket, len(plan.Buckets))
	for i, pb := range plan.Buckets {
		buckets[i] = models.Bucket{
			ID:                 pb.ID,
			Name:               strings.TrimSpace(pb.Name),
			Icon:               pb.Icon,
			Allocated:          income.Mul(pb.Percent).Div(hundred).Round(0),
			RecommendedPercent: pb.Percent,
			Color:              PaletteColor(i),
		}
	}
	return buckets, nil
}

// ApplyPlan replaces the entire bucket set with the plan's buckets. Prior
// buckets are discarded; their transactions stay in the history.
func (r *Reconciler) ApplyPlan(plan models.BudgetPlan, income decimal.Decimal) ([]models.Bucket, error) {
	buckets, err := PlanBuckets(plan, income)
	if err != nil {
		r.log.Warnw("rejected budget plan", "plan_id", plan.ID, "error", err)
		return nil, err
	}
	if len(buckets) < MinPlanBuckets {
		r.log.Warnw("budget plan has fewer buckets than promised",
			"plan_id", plan.ID, "buckets", len(buckets), "expected_min", MinPlanBuckets)
	}

	if err := r.store.ReplaceBuckets(buckets); err != nil {
		return nil, err
	}

	r.log.Infow("applied budget plan", "plan_id", plan.ID, "buckets", len(buckets), "income", income.String())
	return buckets, nil
}

// InstallFallback replaces the bucket set with the fixed default buckets.
func (r *Reconciler) InstallFallback(locale models.Locale) ([]models.Bucket, error) {
	buckets := FallbackBuckets(locale)
	if err := r.store.ReplaceBuckets(buckets); err != nil {
		return nil, err
	}
	r.log.Infow("installed fallback buckets", "buckets", len(buckets))
	return buckets, nil
}

// ApplySuggestionAction applies a suggestion action to the ledger. Ids that
// no longer resolve make the corresponding side a no-op; they never cause
// an error. It reports whether the ledger changed, and when it did, the
// advice refresher is signalled.
//
// A Reallocate moves at most what the source bucket currently holds: asking
// to move 500 out of a bucket allocated 300 takes 300 from it and credits
// the target with 300, not 500, so the total allocation is unchanged. The
// full amount is credited only when the source bucket no longer exists.
func (r *Reconciler) ApplySuggestionAction(ctx context.Context, action models.SuggestionAction) (bool, error) {
	var mutate func([]models.Bucket, decimal.Decimal) ([]models.Bucket, bool)

	switch a := action.(type) {
	case models.Reallocate:
		mutate = func(buckets []models.Bucket, _ decimal.Decimal) ([]models.Bucket, bool) {
			return reallocate(buckets, a)
		}
	case models.AdjustTarget:
		mutate = func(buckets []models.Bucket, _ decimal.Decimal) ([]models.Bucket, bool) {
			return adjustTarget(buckets, a)
		}
	case nil:
		return false, apperrors.WithMessage(apperrors.ErrValidation, "suggestion has no action")
	default:
		return false, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("unsupported suggestion action %T", action))
	}

	changed := false
	err := r.store.ModifyBuckets(func(buckets []models.Bucket, income decimal.Decimal) ([]models.Bucket, bool) {
		next, ok := mutate(buckets, income)
		changed = ok
		return next, ok
	})
	if err != nil {
		return false, err
	}

	if !changed {
		r.log.Infow("suggestion action was a no-op", "type", action.Type())
		return false, nil
	}

	r.log.Infow("applied suggestion action", "type", action.Type())
	if r.refresher != nil {
		r.refresher(ctx)
	}
	return true, nil
}

// reallocate moves allocation between two buckets. The amount taken from
// the source is capped at what it holds, so no allocation goes negative and
// the total is conserved when both sides resolve.
func reallocate(buckets []models.Bucket, a models.Reallocate) ([]models.Bucket, bool) {
	if !a.Amount.IsPositive() || a.FromID == a.ToID {
		return buckets, false
	}

	from, to := indexOf(buckets, a.FromID), indexOf(buckets, a.ToID)
	if from < 0 && to < 0 {
		return buckets, false
	}

	moved := a.Amount
	if from >= 0 {
		moved = decimal.Min(moved, buckets[from].Allocated)
		buckets[from].Allocated = buckets[from].Allocated.Sub(moved)
	}
	if to >= 0 {
		buckets[to].Allocated = buckets[to].Allocated.Add(moved)
	}
	return buckets, moved.IsPositive()
}

func adjustTarget(buckets []models.Bucket, a models.AdjustTarget) ([]models.Bucket, bool) {
	i := indexOf(buckets, a.TargetBucketID)
	if i < 0 {
		return buckets, false
	}

	target := decimal.Max(a.NewTarget, decimal.Zero)
	if buckets[i].Allocated.Equal(target) {
		return buckets, false
	}
	buckets[i].Allocated = target
	return buckets, true
}

func indexOf(buckets []models.Bucket, id string) int {
	for i, b := range buckets {
		if b.ID == id {
			return i
		}
	}
	return -1
}
