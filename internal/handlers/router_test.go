package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rafiqe/internal/advisory"
	"rafiqe/internal/models"
	"rafiqe/internal/services"
	"rafiqe/internal/store"
	"rafiqe/internal/testutil"
)

// fakeAdvisor answers every advisory call from canned data.
type fakeAdvisor struct {
	planErr     error
	suggestions []models.AISuggestion
}

var _ advisory.Advisor = (*fakeAdvisor)(nil)

func (f *fakeAdvisor) GeneratePlans(_ context.Context, req advisory.PlanRequest) (advisory.PlanResponse, error) {
	if f.planErr != nil {
		return advisory.PlanResponse{}, f.planErr
	}
	plans := make([]models.BudgetPlan, req.Count())
	for i := range plans {
		plans[i] = testutil.TestPlan(string(rune('a'+i)), 30, 25, 20, 15, 10)
	}
	return advisory.PlanResponse{Feedback: "Balanced", Plans: plans}, nil
}

func (f *fakeAdvisor) GenerateAdvice(context.Context, advisory.AdviceRequest) ([]string, error) {
	return []string{"Review subscriptions"}, nil
}

func (f *fakeAdvisor) GenerateSuggestions(context.Context, advisory.SuggestionRequest) ([]models.AISuggestion, error) {
	return f.suggestions, nil
}

func (f *fakeAdvisor) GenerateGoalImage(context.Context, string) (string, error) {
	return "data:image/png;base64,AAAA", nil
}

func newTestRouter(t *testing.T, adv advisory.Advisor) *gin.Engine {
	t.Helper()

	gw := advisory.NewGateway(adv, advisory.WithRetryPolicy(advisory.RetryPolicy{
		Retries:   1,
		BaseDelay: time.Millisecond,
		Sleep:     func(context.Context, time.Duration) error { return nil },
	}))
	svc, err := services.NewBudgetService(context.Background(), services.Options{
		Repository: store.NewMemoryRepository(),
		Gateway:    gw,
		Defaults: services.Defaults{
			Income:   decimal.NewFromInt(5000),
			Currency: "USD",
			Locale:   models.LocaleEnglish,
		},
		AdvisorEnabled: true,
	})
	testutil.AssertNoError(t, err)
	t.Cleanup(svc.Close)

	return NewRouter(svc)
}

// waitFor polls fn until it reports true or the deadline passes.
func waitFor(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRouter_OnboardingFlow(t *testing.T) {
	adv := &fakeAdvisor{
		suggestions: []models.AISuggestion{{
			Text: "Move some savings to groceries",
			Action: models.Reallocate{
				FromID: "a-b0",
				ToID:   "a-b1",
				Amount: decimal.NewFromInt(100),
			},
		}},
	}
	r := newTestRouter(t, adv)

	rec := doRequest(r, http.MethodPost, "/api/v1/onboarding/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["phase"] != "profile_collecting" {
		t.Fatalf("start: unexpected body %s", rec.Body.String())
	}

	rec = doRequest(r, http.MethodPost, "/api/v1/onboarding/profile", `{"persona":"Solo","status":"Single","age":30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	planState := parseJSON(t, rec)
	if planState["phase"] != "plan_presented" {
		t.Fatalf("profile: expected plan_presented, got %v", planState["phase"])
	}
	if plans := planState["plans"].([]interface{}); len(plans) != advisory.InitialPlanCount {
		t.Fatalf("profile: expected %d plans, got %d", advisory.InitialPlanCount, len(plans))
	}
	if planState["feedback"] != "Balanced" {
		t.Errorf("profile: expected feedback, got %v", planState["feedback"])
	}

	rec = doRequest(r, http.MethodPost, "/api/v1/plans/missing/apply", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("apply missing: expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "PLAN_NOT_FOUND")

	rec = doRequest(r, http.MethodPost, "/api/v1/plans/a/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	buckets := parseJSON(t, rec)["buckets"].([]interface{})
	if len(buckets) != 5 {
		t.Fatalf("apply: expected 5 buckets, got %d", len(buckets))
	}
	first := buckets[0].(map[string]interface{})
	if first["id"] != "a-b0" || first["allocated"] != float64(1500) {
		t.Errorf("apply: unexpected first bucket %v", first)
	}

	rec = doRequest(r, http.MethodPost, "/api/v1/onboarding/start", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("restart: expected 409, got %d", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/api/v1/transactions",
		`{"bucket_id":"a-b1","amount":"120","description":"Weekly shop"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("transaction: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/v1/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["total_spent"] != float64(120) || summary["net_remaining"] != float64(4880) {
		t.Errorf("dashboard: unexpected summary %v", summary)
	}

	waitFor(t, func() bool {
		rec := doRequest(r, http.MethodGet, "/api/v1/suggestions", "")
		return len(parseJSON(t, rec)["suggestions"].([]interface{})) == 1
	})

	rec = doRequest(r, http.MethodPost, "/api/v1/suggestions/0/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestion: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["changed"] != true {
		t.Fatalf("suggestion: expected a change, got %v", result)
	}
	if remaining := result["suggestions"].([]interface{}); len(remaining) != 0 {
		t.Errorf("suggestion: expected it to be consumed, got %v", remaining)
	}
	moved := result["buckets"].([]interface{})
	if moved[0].(map[string]interface{})["allocated"] != float64(1400) || moved[1].(map[string]interface{})["allocated"] != float64(1350) {
		t.Errorf("suggestion: unexpected allocations %v", moved[:2])
	}

	rec = doRequest(r, http.MethodGet, "/api/v1/transactions?bucket=a-b1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	page := parseJSON(t, rec)
	if page["total_items"] != float64(1) {
		t.Errorf("list: expected 1 transaction, got %v", page["total_items"])
	}
}

func TestRouter_PlanFailureAndSkip(t *testing.T) {
	r := newTestRouter(t, &fakeAdvisor{planErr: errors.New("quota exhausted")})

	doRequest(r, http.MethodPost, "/api/v1/onboarding/start", "")

	rec := doRequest(r, http.MethodPost, "/api/v1/onboarding/profile", `{"persona":"Family Head","children_count":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	planState := parseJSON(t, rec)
	if planState["phase"] != "plan_error" || planState["failure"] != "QUOTA_EXCEEDED" {
		t.Fatalf("profile: unexpected plan state %v", planState)
	}

	rec = doRequest(r, http.MethodPost, "/api/v1/plans/skip", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("skip: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if buckets := parseJSON(t, rec)["buckets"].([]interface{}); len(buckets) != 6 {
		t.Errorf("skip: expected 6 default buckets, got %d", len(buckets))
	}

	rec = doRequest(r, http.MethodGet, "/api/v1/state", "")
	if parseJSON(t, rec)["phase"] != "active" {
		t.Errorf("state: expected active, got %s", rec.Body.String())
	}
}

func TestRouter_Reset(t *testing.T) {
	r := newTestRouter(t, &fakeAdvisor{})

	doRequest(r, http.MethodPost, "/api/v1/onboarding/start", "")
	doRequest(r, http.MethodPost, "/api/v1/buckets", `{"name":"Coffee"}`)

	rec := doRequest(r, http.MethodPost, "/api/v1/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	state := parseJSON(t, rec)
	if state["phase"] != "uninitialized" {
		t.Errorf("reset: expected uninitialized, got %v", state["phase"])
	}
	if buckets := state["buckets"].([]interface{}); len(buckets) != 0 {
		t.Errorf("reset: expected no buckets, got %d", len(buckets))
	}
}
