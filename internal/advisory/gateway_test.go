package advisory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rafiqe/internal/models"
)

type mockAdvisor struct {
	mock.Mock
}

func (m *mockAdvisor) GeneratePlans(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(PlanResponse), args.Error(1)
}

func (m *mockAdvisor) GenerateAdvice(ctx context.Context, req AdviceRequest) ([]string, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdvisor) GenerateSuggestions(ctx context.Context, req SuggestionRequest) ([]models.AISuggestion, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.([]models.AISuggestion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdvisor) GenerateGoalImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

var _ Advisor = (*mockAdvisor)(nil)

type recordingReporter struct {
	calls []string
	codes []FailureCode
}

func (r *recordingReporter) Report(_ context.Context, call string, code FailureCode, _ error) {
	r.calls = append(r.calls, call)
	r.codes = append(r.codes, code)
}

func newTestGateway(advisor Advisor, reporter Reporter) *Gateway {
	noSleep := func(context.Context, time.Duration) error { return nil }
	return NewGateway(advisor,
		WithRetryPolicy(RetryPolicy{Retries: 3, BaseDelay: time.Millisecond, Sleep: noSleep}),
		WithReporter(reporter),
	)
}

func samplePlans(n int) []models.BudgetPlan {
	plans := make([]models.BudgetPlan, n)
	for i := range plans {
		plans[i] = models.BudgetPlan{ID: string(rune('a' + i)), Title: "Plan"}
	}
	return plans
}

func TestGateway_Plans(t *testing.T) {
	t.Run("success after transient failure", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GeneratePlans", mock.Anything, mock.Anything).Return(PlanResponse{}, ErrServerError).Once()
		advisor.On("GeneratePlans", mock.Anything, mock.Anything).
			Return(PlanResponse{Feedback: " Solid income ", Plans: samplePlans(3)}, nil).Once()

		result := newTestGateway(advisor, &recordingReporter{}).Plans(context.Background(), PlanRequest{Initial: true})

		assert.False(t, result.Failed())
		assert.Equal(t, "Solid income", result.Feedback)
		assert.Len(t, result.Plans, 3)
		advisor.AssertNumberOfCalls(t, "GeneratePlans", 2)
	})

	t.Run("caps regenerated plans at one", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GeneratePlans", mock.Anything, mock.Anything).Return(PlanResponse{Plans: samplePlans(3)}, nil)

		result := newTestGateway(advisor, &recordingReporter{}).Plans(context.Background(), PlanRequest{Initial: false})
		assert.Len(t, result.Plans, 1)
	})

	t.Run("quota exhausted after retries", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GeneratePlans", mock.Anything, mock.Anything).Return(PlanResponse{}, &APIError{StatusCode: 429, Err: ErrRateLimited})
		reporter := &recordingReporter{}

		result := newTestGateway(advisor, reporter).Plans(context.Background(), PlanRequest{Initial: true})

		assert.True(t, result.Failed())
		assert.Equal(t, FailureQuotaExceeded, result.Failure)
		assert.Equal(t, "QUOTA_EXCEEDED", result.Feedback)
		assert.NotNil(t, result.Plans)
		assert.Empty(t, result.Plans)
		advisor.AssertNumberOfCalls(t, "GeneratePlans", 4)
		assert.Equal(t, []string{"plans"}, reporter.calls)
	})

	t.Run("non-retryable failure is an API error", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GeneratePlans", mock.Anything, mock.Anything).Return(PlanResponse{}, errors.New("permission denied"))

		result := newTestGateway(advisor, &recordingReporter{}).Plans(context.Background(), PlanRequest{})

		assert.Equal(t, FailureAPIError, result.Failure)
		assert.Equal(t, "API_ERROR", result.Feedback)
		advisor.AssertNumberOfCalls(t, "GeneratePlans", 1)
	})
}

func TestGateway_Advice(t *testing.T) {
	t.Run("trims and caps", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GenerateAdvice", mock.Anything, mock.Anything).
			Return([]string{" one ", "", "two", "three", "four"}, nil)

		advice := newTestGateway(advisor, &recordingReporter{}).Advice(context.Background(), AdviceRequest{})
		assert.Equal(t, []string{"one", "two", "three"}, advice)
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GenerateAdvice", mock.Anything, mock.Anything).Return(nil, ErrServerError)

		advice := newTestGateway(advisor, &recordingReporter{}).Advice(context.Background(), AdviceRequest{})
		require.NotNil(t, advice)
		assert.Empty(t, advice)
	})
}

func TestGateway_Suggestions(t *testing.T) {
	t.Run("caps at three and drops blanks", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GenerateSuggestions", mock.Anything, mock.Anything).Return([]models.AISuggestion{
			{Text: "a"}, {Text: " "}, {Text: "b", Action: models.AdjustTarget{TargetBucketID: "x", NewTarget: decimal.NewFromInt(1)}},
			{Text: "c"}, {Text: "d"},
		}, nil)

		got := newTestGateway(advisor, &recordingReporter{}).Suggestions(context.Background(), SuggestionRequest{})
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].Text)
		assert.NotNil(t, got[1].Action)
		assert.Equal(t, "c", got[2].Text)
	})

	t.Run("failure degrades to empty", func(t *testing.T) {
		advisor := &mockAdvisor{}
		advisor.On("GenerateSuggestions", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

		got := newTestGateway(advisor, &recordingReporter{}).Suggestions(context.Background(), SuggestionRequest{})
		assert.Empty(t, got)
		advisor.AssertNumberOfCalls(t, "GenerateSuggestions", 4)
	})
}

func TestGateway_GoalImage(t *testing.T) {
	advisor := &mockAdvisor{}
	advisor.On("GenerateGoalImage", mock.Anything, "a house").Return("data:image/png;base64,AAAA", nil)
	advisor.On("GenerateGoalImage", mock.Anything, "a boat").Return("", errors.New("blocked"))

	g := newTestGateway(advisor, &recordingReporter{})

	img, ok := g.GoalImage(context.Background(), "a house")
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAAA", img)

	_, ok = g.GoalImage(context.Background(), "a boat")
	assert.False(t, ok)
}

func TestGateway_Unconfigured(t *testing.T) {
	reporter := &recordingReporter{}
	g := newTestGateway(nil, reporter)

	result := g.Plans(context.Background(), PlanRequest{Initial: true})
	assert.Equal(t, FailureAPIError, result.Failure)
	assert.Empty(t, g.Advice(context.Background(), AdviceRequest{}))
	assert.Empty(t, reporter.calls, "missing configuration is not reported as an incident")
}

func TestGateway_CanceledIsNotReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	advisor := &mockAdvisor{}
	advisor.On("GenerateAdvice", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	reporter := &recordingReporter{}

	assert.Empty(t, newTestGateway(advisor, reporter).Advice(ctx, AdviceRequest{}))
	assert.Empty(t, reporter.calls)
}

func TestPlanRequest(t *testing.T) {
	prev := decimal.NewFromInt(1000)

	assert.Equal(t, 3, PlanRequest{Initial: true}.Count())
	assert.Equal(t, 1, PlanRequest{}.Count())
	assert.Equal(t, "set", PlanRequest{Income: prev}.IncomeTrend())
	assert.Equal(t, "increased", PlanRequest{Income: decimal.NewFromInt(1500), PreviousIncome: &prev}.IncomeTrend())
	assert.Equal(t, "decreased", PlanRequest{Income: decimal.NewFromInt(500), PreviousIncome: &prev}.IncomeTrend())
	assert.Equal(t, "changed", PlanRequest{Income: prev, PreviousIncome: &prev}.IncomeTrend())
}
