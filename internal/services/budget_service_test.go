package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rafiqe/internal/advisory"
	"rafiqe/internal/metrics"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
	"rafiqe/internal/pagination"
	"rafiqe/internal/store"
	"rafiqe/internal/testutil"
)

// mockAdvisor implements advisory.Advisor with overridable behavior.
type mockAdvisor struct {
	GeneratePlansFn       func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error)
	GenerateAdviceFn      func(ctx context.Context, req advisory.AdviceRequest) ([]string, error)
	GenerateSuggestionsFn func(ctx context.Context, req advisory.SuggestionRequest) ([]models.AISuggestion, error)
	GenerateGoalImageFn   func(ctx context.Context, prompt string) (string, error)
}

func (m *mockAdvisor) GeneratePlans(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
	if m.GeneratePlansFn != nil {
		return m.GeneratePlansFn(ctx, req)
	}
	plans := make([]models.BudgetPlan, req.Count())
	for i := range plans {
		plans[i] = testutil.TestPlan(string(rune('a'+i)), 30, 25, 20, 15, 10)
	}
	return advisory.PlanResponse{Feedback: "Looks healthy", Plans: plans}, nil
}

func (m *mockAdvisor) GenerateAdvice(ctx context.Context, req advisory.AdviceRequest) ([]string, error) {
	if m.GenerateAdviceFn != nil {
		return m.GenerateAdviceFn(ctx, req)
	}
	return []string{"Keep an emergency fund"}, nil
}

func (m *mockAdvisor) GenerateSuggestions(ctx context.Context, req advisory.SuggestionRequest) ([]models.AISuggestion, error) {
	if m.GenerateSuggestionsFn != nil {
		return m.GenerateSuggestionsFn(ctx, req)
	}
	return []models.AISuggestion{}, nil
}

func (m *mockAdvisor) GenerateGoalImage(ctx context.Context, prompt string) (string, error) {
	if m.GenerateGoalImageFn != nil {
		return m.GenerateGoalImageFn(ctx, prompt)
	}
	return "data:image/png;base64,AAAA", nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newTestService(t *testing.T, adv advisory.Advisor, repo store.Repository) *budgetService {
	t.Helper()

	gw := advisory.NewGateway(adv, advisory.WithRetryPolicy(advisory.RetryPolicy{
		Retries:   2,
		BaseDelay: time.Millisecond,
		Sleep:     noSleep,
	}))
	svc, err := NewBudgetService(context.Background(), Options{
		Repository: repo,
		Gateway:    gw,
		Defaults: Defaults{
			Income:   decimal.NewFromInt(5000),
			Currency: "USD",
			Locale:   models.LocaleEnglish,
		},
		AdvisorEnabled: true,
	})
	testutil.AssertNoError(t, err)

	s := svc.(*budgetService)
	t.Cleanup(s.Close)
	return s
}

// onboard drives a fresh service to PlanPresented.
func onboard(t *testing.T, s *budgetService) PlanState {
	t.Helper()
	ctx := context.Background()

	_, err := s.StartOnboarding(ctx)
	testutil.AssertNoError(t, err)
	state, err := s.SubmitProfile(ctx, models.UserProfile{Age: 30, Persona: models.PersonaSolo})
	testutil.AssertNoError(t, err)
	return state
}

// activate drives a fresh service to Active with the first offered plan.
func activate(t *testing.T, s *budgetService) {
	t.Helper()

	state := onboard(t, s)
	if len(state.Plans) == 0 {
		t.Fatal("expected plans to choose from")
	}
	_, err := s.ApplyPlan(context.Background(), state.Plans[0].ID)
	testutil.AssertNoError(t, err)
	s.bg.Wait()
}

func TestNewBudgetService(t *testing.T) {
	t.Run("fresh", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		state := s.State()
		if state.Phase != onboarding.Uninitialized {
			t.Errorf("expected uninitialized, got %s", state.Phase)
		}
		if !state.Income.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected default income 5000, got %s", state.Income)
		}
		if state.Currency.Code != "USD" {
			t.Errorf("expected USD, got %s", state.Currency.Code)
		}
		if len(state.Buckets) != 0 {
			t.Errorf("expected no buckets, got %d", len(state.Buckets))
		}
		if state.Profile.Age != models.DefaultAge {
			t.Errorf("expected default age, got %d", state.Profile.Age)
		}
	})

	t.Run("invalid_default_currency", func(t *testing.T) {
		_, err := NewBudgetService(context.Background(), Options{
			Defaults: Defaults{Currency: "XXX", Locale: models.LocaleEnglish},
		})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("restores_saved_state", func(t *testing.T) {
		repo := store.NewMemoryRepository()
		s := newTestService(t, &mockAdvisor{}, repo)
		activate(t, s)
		bucket := s.State().Buckets[0]
		_, err := s.RecordTransaction(context.Background(), models.TransactionInput{
			BucketID: bucket.ID,
			Amount:   decimal.NewFromInt(120),
			Date:     time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)
		s.Close()

		restored := newTestService(t, &mockAdvisor{}, repo)
		state := restored.State()
		if state.Phase != onboarding.Active {
			t.Errorf("expected active, got %s", state.Phase)
		}
		if len(state.Buckets) != 5 {
			t.Fatalf("expected 5 buckets, got %d", len(state.Buckets))
		}
		if !state.Summary.TotalSpent.Equal(decimal.NewFromInt(120)) {
			t.Errorf("expected spent 120, got %s", state.Summary.TotalSpent)
		}
	})
}

func TestOnboarding(t *testing.T) {
	t.Run("presents_three_plans", func(t *testing.T) {
		var got advisory.PlanRequest
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			got = req
			adv.GeneratePlansFn = nil
			return adv.GeneratePlans(ctx, req)
		}
		s := newTestService(t, adv, nil)

		state := onboard(t, s)
		if state.Phase != onboarding.PlanPresented {
			t.Errorf("expected plan_presented, got %s", state.Phase)
		}
		if len(state.Plans) != 3 {
			t.Errorf("expected 3 plans, got %d", len(state.Plans))
		}
		if state.Generating {
			t.Error("expected generation to be finished")
		}
		if state.Feedback != "Looks healthy" {
			t.Errorf("expected feedback, got %q", state.Feedback)
		}
		if !got.Initial || got.Profile.Age != 30 {
			t.Errorf("unexpected plan request: %+v", got)
		}
	})

	t.Run("submit_before_start", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		_, err := s.SubmitProfile(context.Background(), models.UserProfile{Age: 30})
		testutil.AssertAppError(t, err, "INVALID_STATE")
	})

	t.Run("invalid_profile", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		_, err := s.StartOnboarding(context.Background())
		testutil.AssertNoError(t, err)

		_, err = s.SubmitProfile(context.Background(), models.UserProfile{Age: 30, Persona: "Astronaut"})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		_, err = s.SubmitProfile(context.Background(), models.UserProfile{Age: 200})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		if s.machine.Phase() != onboarding.ProfileCollecting {
			t.Errorf("expected phase to stay profile_collecting, got %s", s.machine.Phase())
		}
	})

	t.Run("apply_plan_activates", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		state := onboard(t, s)

		buckets, err := s.ApplyPlan(context.Background(), state.Plans[1].ID)
		testutil.AssertNoError(t, err)
		s.bg.Wait()

		if len(buckets) != 5 {
			t.Fatalf("expected 5 buckets, got %d", len(buckets))
		}
		if !buckets[0].Allocated.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected 30%% of 5000, got %s", buckets[0].Allocated)
		}
		if !s.machine.IsActive() {
			t.Errorf("expected active, got %s", s.machine.Phase())
		}
		if plans := s.Plans(); len(plans.Plans) != 0 || plans.Feedback != "" {
			t.Errorf("expected plans to be cleared, got %+v", plans)
		}
		if advice := s.Advice(); len(advice) != 1 {
			t.Errorf("expected advice after activation, got %v", advice)
		}
	})

	t.Run("apply_unknown_plan", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		onboard(t, s)

		_, err := s.ApplyPlan(context.Background(), "missing")
		testutil.AssertAppError(t, err, "PLAN_NOT_FOUND")
	})

	t.Run("drops_invalid_plans", func(t *testing.T) {
		adv := &mockAdvisor{
			GeneratePlansFn: func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
				return advisory.PlanResponse{Plans: []models.BudgetPlan{
					testutil.TestPlan("short", 50, 20),
					testutil.TestPlan("good", 40, 30, 10, 10, 10),
				}}, nil
			},
		}
		s := newTestService(t, adv, nil)

		state := onboard(t, s)
		if len(state.Plans) != 1 || state.Plans[0].ID != "good" {
			t.Errorf("expected only the valid plan, got %+v", state.Plans)
		}
	})

	t.Run("only_invalid_plans_fail", func(t *testing.T) {
		adv := &mockAdvisor{
			GeneratePlansFn: func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
				return advisory.PlanResponse{Plans: []models.BudgetPlan{testutil.TestPlan("short", 50)}}, nil
			},
		}
		s := newTestService(t, adv, nil)

		state := onboard(t, s)
		if state.Phase != onboarding.PlanError {
			t.Errorf("expected plan_error, got %s", state.Phase)
		}
		if state.Failure != advisory.FailureAPIError {
			t.Errorf("expected API_ERROR, got %q", state.Failure)
		}
	})
}

func TestPlanFailures(t *testing.T) {
	t.Run("quota_then_retry", func(t *testing.T) {
		var calls atomic.Int32
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			if calls.Add(1) <= 3 {
				return advisory.PlanResponse{}, &advisory.APIError{StatusCode: 429, Message: "quota exceeded", Err: advisory.ErrRateLimited}
			}
			return advisory.PlanResponse{Plans: []models.BudgetPlan{testutil.TestPlan("later", 20, 20, 20, 20, 20)}}, nil
		}
		s := newTestService(t, adv, nil)

		state := onboard(t, s)
		if state.Phase != onboarding.PlanError {
			t.Fatalf("expected plan_error, got %s", state.Phase)
		}
		if state.Feedback != string(advisory.FailureQuotaExceeded) {
			t.Errorf("expected QUOTA_EXCEEDED feedback, got %q", state.Feedback)
		}
		if len(state.Plans) != 0 {
			t.Errorf("expected no plans, got %d", len(state.Plans))
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 attempts, got %d", calls.Load())
		}

		state, err := s.RetryPlans(context.Background())
		testutil.AssertNoError(t, err)
		if state.Phase != onboarding.PlanPresented || len(state.Plans) != 1 {
			t.Errorf("expected the retried plan, got %+v", state)
		}
		if state.Failure != advisory.FailureNone {
			t.Errorf("expected failure to clear, got %q", state.Failure)
		}
	})

	t.Run("retry_without_failure", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		onboard(t, s)

		_, err := s.RetryPlans(context.Background())
		testutil.AssertAppError(t, err, "INVALID_STATE")
	})

	t.Run("skip_installs_fallback", func(t *testing.T) {
		adv := &mockAdvisor{
			GeneratePlansFn: func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
				return advisory.PlanResponse{}, advisory.ErrServerError
			},
		}
		s := newTestService(t, adv, nil)
		onboard(t, s)

		buckets, err := s.SkipPlans(context.Background())
		testutil.AssertNoError(t, err)
		s.bg.Wait()

		if len(buckets) != 6 {
			t.Fatalf("expected 6 fallback buckets, got %d", len(buckets))
		}
		if buckets[0].ID != "health" || !buckets[0].Allocated.IsZero() {
			t.Errorf("unexpected first fallback bucket: %+v", buckets[0])
		}
		if !s.machine.IsActive() {
			t.Errorf("expected active, got %s", s.machine.Phase())
		}
		if s.Plans().Failure != advisory.FailureNone {
			t.Error("expected failure to clear after skipping")
		}
	})

	t.Run("unconfigured_advisor", func(t *testing.T) {
		s := newTestService(t, nil, nil)

		state := onboard(t, s)
		if state.Phase != onboarding.PlanError || state.Failure != advisory.FailureAPIError {
			t.Errorf("expected API_ERROR plan failure, got %+v", state)
		}
	})
}

func TestGeneratePlans(t *testing.T) {
	t.Run("regenerate_during_onboarding", func(t *testing.T) {
		var initial []bool
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			initial = append(initial, req.Initial)
			return (&mockAdvisor{}).GeneratePlans(ctx, req)
		}
		s := newTestService(t, adv, nil)
		onboard(t, s)

		state, err := s.GeneratePlans(context.Background(), true)
		testutil.AssertNoError(t, err)
		if len(state.Plans) != 1 {
			t.Errorf("expected a single replacement plan, got %d", len(state.Plans))
		}
		if len(initial) != 2 || !initial[0] || initial[1] {
			t.Errorf("unexpected initial flags: %v", initial)
		}
	})

	t.Run("before_profile", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		_, err := s.GeneratePlans(context.Background(), false)
		testutil.AssertAppError(t, err, "INVALID_STATE")
	})

	t.Run("income_change_regenerates", func(t *testing.T) {
		requests := make(chan advisory.PlanRequest, 4)
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			requests <- req
			return (&mockAdvisor{}).GeneratePlans(ctx, req)
		}
		s := newTestService(t, adv, nil)
		activate(t, s)
		<-requests

		_, err := s.SetIncome(context.Background(), decimal.NewFromInt(8000))
		testutil.AssertNoError(t, err)
		s.bg.Wait()

		req := <-requests
		if req.Initial {
			t.Error("expected a single-plan request after onboarding")
		}
		if req.PreviousIncome == nil || !req.PreviousIncome.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected previous income 5000, got %v", req.PreviousIncome)
		}
		if req.IncomeTrend() != "increased" {
			t.Errorf("expected increased trend, got %s", req.IncomeTrend())
		}
		state := s.Plans()
		if state.Phase != onboarding.Active || len(state.Plans) != 1 {
			t.Errorf("expected one presented plan while active, got %+v", state)
		}
	})

	t.Run("same_income_does_not_regenerate", func(t *testing.T) {
		var calls atomic.Int32
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			calls.Add(1)
			return (&mockAdvisor{}).GeneratePlans(ctx, req)
		}
		s := newTestService(t, adv, nil)
		activate(t, s)

		_, err := s.SetIncome(context.Background(), decimal.NewFromInt(5000))
		testutil.AssertNoError(t, err)
		s.bg.Wait()

		if calls.Load() != 1 {
			t.Errorf("expected only the onboarding request, got %d", calls.Load())
		}
	})

	t.Run("superseded_response_is_discarded", func(t *testing.T) {
		started := make(chan struct{})
		var calls atomic.Int32
		adv := &mockAdvisor{}
		adv.GeneratePlansFn = func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
			switch calls.Add(1) {
			case 1:
				return (&mockAdvisor{}).GeneratePlans(ctx, req)
			case 2:
				close(started)
				<-ctx.Done()
				return advisory.PlanResponse{Plans: []models.BudgetPlan{testutil.TestPlan("stale", 20, 20, 20, 20, 20)}}, nil
			default:
				return advisory.PlanResponse{Plans: []models.BudgetPlan{testutil.TestPlan("fresh", 20, 20, 20, 20, 20)}}, nil
			}
		}
		s := newTestService(t, adv, nil)
		activate(t, s)

		done := make(chan PlanState)
		go func() {
			state, _ := s.GeneratePlans(context.Background(), false)
			done <- state
		}()
		<-started

		state, err := s.GeneratePlans(context.Background(), false)
		testutil.AssertNoError(t, err)
		<-done

		if len(state.Plans) != 1 || state.Plans[0].ID != "fresh" {
			t.Errorf("expected fresh plan, got %+v", state.Plans)
		}
		if plans := s.Plans().Plans; len(plans) != 1 || plans[0].ID != "fresh" {
			t.Errorf("stale response overwrote plans: %+v", plans)
		}
	})
}

func TestLedgerIntents(t *testing.T) {
	t.Run("buckets_and_transactions", func(t *testing.T) {
		repo := store.NewMemoryRepository()
		s := newTestService(t, &mockAdvisor{}, repo)
		ctx := context.Background()

		bucket, err := s.AddBucket(ctx, "Coffee", "☕")
		testutil.AssertNoError(t, err)
		_, err = s.UpdateBucketAllocation(ctx, bucket.ID, decimal.NewFromInt(200))
		testutil.AssertNoError(t, err)

		tx, err := s.RecordTransaction(ctx, models.TransactionInput{
			BucketID:    bucket.ID,
			Amount:      decimal.NewFromInt(250),
			Date:        time.Now().UTC(),
			Description: "Beans",
		})
		testutil.AssertNoError(t, err)
		s.bg.Wait()

		dash := s.Dashboard(metrics.Filter{})
		if !dash.Summary.TotalSpent.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected spent 250, got %s", dash.Summary.TotalSpent)
		}
		if len(dash.Buckets) != 1 || !dash.Buckets[0].Overspent {
			t.Errorf("expected the bucket to be overspent, got %+v", dash.Buckets)
		}

		_, err = s.UpdateTransaction(ctx, tx.ID, models.TransactionInput{
			BucketID: bucket.ID,
			Amount:   decimal.NewFromInt(100),
			Date:     tx.Date,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, s.DeleteBucket(ctx, bucket.ID))
		dash = s.Dashboard(metrics.Filter{})
		if len(dash.Transactions) != 1 {
			t.Errorf("expected the orphaned transaction to remain, got %d", len(dash.Transactions))
		}

		testutil.AssertNoError(t, s.DeleteTransaction(ctx, tx.ID))
		if repo.Saves() < 6 {
			t.Errorf("expected every intent to be saved, got %d saves", repo.Saves())
		}
	})

	t.Run("not_found", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		ctx := context.Background()

		_, err := s.UpdateBucketAllocation(ctx, "missing", decimal.NewFromInt(1))
		testutil.AssertAppError(t, err, "BUCKET_NOT_FOUND")
		testutil.AssertAppError(t, s.DeleteTransaction(ctx, "missing"), "TRANSACTION_NOT_FOUND")
	})

	t.Run("list_transactions", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		ctx := context.Background()
		bucket, err := s.AddBucket(ctx, "Food", "🍔")
		testutil.AssertNoError(t, err)

		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range 5 {
			_, err := s.RecordTransaction(ctx, models.TransactionInput{
				BucketID: bucket.ID,
				Amount:   decimal.NewFromInt(int64(10 * (i + 1))),
				Date:     base.AddDate(0, 0, i),
			})
			testutil.AssertNoError(t, err)
		}
		s.bg.Wait()

		page := s.ListTransactions(metrics.Filter{}, pagination.PageRequest{Page: 1, PageSize: 2})
		if page.TotalItems != 5 || page.TotalPages != 3 {
			t.Errorf("unexpected page bounds: %+v", page)
		}
		if len(page.Data) != 2 || !page.Data[0].Amount.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected newest first, got %+v", page.Data)
		}
	})

	t.Run("currency_and_locale", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)
		ctx := context.Background()

		sar, arabic := "SAR", models.LocaleArabic
		state, err := s.UpdateSettings(ctx, SettingsUpdate{Currency: &sar, Locale: &arabic})
		testutil.AssertNoError(t, err)
		if state.Currency.Symbol != "﷼" || state.Locale != models.LocaleArabic {
			t.Errorf("unexpected settings: %+v %s", state.Currency, state.Locale)
		}

		btc := "BTC"
		_, err = s.UpdateSettings(ctx, SettingsUpdate{Currency: &btc})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("rejected_locale_keeps_currency", func(t *testing.T) {
		repo := store.NewMemoryRepository()
		s := newTestService(t, &mockAdvisor{}, repo)
		saves := repo.Saves()

		eur, french := "EUR", models.Locale("fr")
		_, err := s.UpdateSettings(context.Background(), SettingsUpdate{Currency: &eur, Locale: &french})
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")

		state := s.State()
		if state.Currency.Code != "USD" || state.Locale != models.LocaleEnglish {
			t.Errorf("rejected update changed settings: %s %s", state.Currency.Code, state.Locale)
		}
		if repo.Saves() != saves {
			t.Error("rejected update was persisted")
		}
	})

	t.Run("negative_income", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		_, err := s.SetIncome(context.Background(), decimal.NewFromInt(-1))
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})
}

func TestSuggestions(t *testing.T) {
	reallocate := models.Reallocate{FromID: "savings", ToID: "groceries", Amount: decimal.NewFromInt(100)}

	setup := func(t *testing.T) *budgetService {
		adv := &mockAdvisor{
			GeneratePlansFn: func(ctx context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
				return advisory.PlanResponse{}, advisory.ErrServerError
			},
			GenerateSuggestionsFn: func(ctx context.Context, req advisory.SuggestionRequest) ([]models.AISuggestion, error) {
				return []models.AISuggestion{
					{Text: "Move some savings to groceries", Action: reallocate},
					{Text: "Nice restraint"},
				}, nil
			},
		}
		s := newTestService(t, adv, nil)
		onboard(t, s)
		_, err := s.SkipPlans(context.Background())
		testutil.AssertNoError(t, err)
		_, err = s.UpdateBucketAllocation(context.Background(), "savings", decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)

		_, err = s.RecordTransaction(context.Background(), models.TransactionInput{
			BucketID: "groceries",
			Amount:   decimal.NewFromInt(80),
			Date:     time.Now().UTC(),
		})
		testutil.AssertNoError(t, err)
		s.bg.Wait()
		return s
	}

	t.Run("apply_action", func(t *testing.T) {
		s := setup(t)
		if len(s.Suggestions()) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(s.Suggestions()))
		}

		changed, err := s.ApplySuggestion(context.Background(), 0)
		testutil.AssertNoError(t, err)
		s.bg.Wait()
		if !changed {
			t.Error("expected the ledger to change")
		}

		snap := s.ledger.Snapshot()
		savings, _ := snap.Bucket("savings")
		groceries, _ := snap.Bucket("groceries")
		if !savings.Allocated.Equal(decimal.NewFromInt(900)) || !groceries.Allocated.Equal(decimal.NewFromInt(100)) {
			t.Errorf("unexpected allocations: savings=%s groceries=%s", savings.Allocated, groceries.Allocated)
		}
		if rest := s.Suggestions(); len(rest) != 1 || rest[0].Text != "Nice restraint" {
			t.Errorf("expected the applied suggestion to be removed, got %+v", rest)
		}
	})

	t.Run("text_only", func(t *testing.T) {
		s := setup(t)

		_, err := s.ApplySuggestion(context.Background(), 1)
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("out_of_range", func(t *testing.T) {
		s := setup(t)

		_, err := s.ApplySuggestion(context.Background(), 5)
		testutil.AssertAppError(t, err, "SUGGESTION_NOT_FOUND")
	})

	t.Run("dismiss", func(t *testing.T) {
		s := setup(t)

		s.DismissSuggestions(context.Background())
		if len(s.Suggestions()) != 0 {
			t.Error("expected no suggestions")
		}
	})
}

func TestAdvice(t *testing.T) {
	t.Run("requires_active", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		_, err := s.RefreshAdvice(context.Background())
		testutil.AssertAppError(t, err, "INVALID_STATE")
	})

	t.Run("refresh", func(t *testing.T) {
		adv := &mockAdvisor{}
		s := newTestService(t, adv, nil)
		activate(t, s)

		adv.GenerateAdviceFn = func(ctx context.Context, req advisory.AdviceRequest) ([]string, error) {
			if len(req.Buckets) != 5 {
				t.Errorf("expected 5 buckets in the advice request, got %d", len(req.Buckets))
			}
			return []string{"one", "two", "three", "four"}, nil
		}
		advice, err := s.RefreshAdvice(context.Background())
		testutil.AssertNoError(t, err)
		if len(advice) != advisory.MaxAdvice {
			t.Errorf("expected %d pieces of advice, got %d", advisory.MaxAdvice, len(advice))
		}
	})

	t.Run("failure_yields_empty", func(t *testing.T) {
		adv := &mockAdvisor{}
		s := newTestService(t, adv, nil)
		activate(t, s)

		adv.GenerateAdviceFn = func(ctx context.Context, req advisory.AdviceRequest) ([]string, error) {
			return nil, advisory.ErrServerError
		}
		advice, err := s.RefreshAdvice(context.Background())
		testutil.AssertNoError(t, err)
		if len(advice) != 0 {
			t.Errorf("expected no advice, got %v", advice)
		}
	})
}

func TestGenerateGoalImage(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		img, err := s.GenerateGoalImage(context.Background(), "A trip to Petra")
		testutil.AssertNoError(t, err)
		if img == "" {
			t.Error("expected an image")
		}
	})

	t.Run("empty_goal", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{}, nil)

		_, err := s.GenerateGoalImage(context.Background(), "  ")
		testutil.AssertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("failure_is_silent", func(t *testing.T) {
		s := newTestService(t, &mockAdvisor{
			GenerateGoalImageFn: func(ctx context.Context, prompt string) (string, error) {
				return "", advisory.ErrServerError
			},
		}, nil)

		img, err := s.GenerateGoalImage(context.Background(), "A new car")
		testutil.AssertNoError(t, err)
		if img != "" {
			t.Errorf("expected no image, got %q", img)
		}
	})
}

func TestReset(t *testing.T) {
	repo := store.NewMemoryRepository()
	s := newTestService(t, &mockAdvisor{}, repo)
	activate(t, s)
	eur := "EUR"
	_, err := s.UpdateSettings(context.Background(), SettingsUpdate{Currency: &eur})
	testutil.AssertNoError(t, err)

	state, err := s.Reset(context.Background())
	testutil.AssertNoError(t, err)

	if state.Phase != onboarding.Uninitialized {
		t.Errorf("expected uninitialized, got %s", state.Phase)
	}
	if len(state.Buckets) != 0 || len(state.Advice) != 0 {
		t.Errorf("expected an empty budget, got %+v", state)
	}
	if state.Currency.Code != "USD" {
		t.Errorf("expected default currency, got %s", state.Currency.Code)
	}

	saved, err := repo.Load(context.Background())
	testutil.AssertNoError(t, err)
	if saved.Phase != onboarding.Uninitialized || len(saved.Ledger.Buckets) != 0 {
		t.Errorf("expected the reset to be saved, got %+v", saved)
	}
}
