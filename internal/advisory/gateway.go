package advisory

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"rafiqe/internal/models"
)

// PlanResult is the outcome of a plan request. On failure Plans is empty,
// Failure names the cause and Feedback carries the same sentinel code.
type PlanResult struct {
	Feedback string              `json:"feedback"`
	Plans    []models.BudgetPlan `json:"plans"`
	Failure  FailureCode         `json:"failure,omitempty"`
}

// Failed reports whether the request ended in a terminal failure.
func (r PlanResult) Failed() bool {
	return r.Failure != FailureNone
}

// Gateway wraps an Advisor with retries and fallback values. None of its
// methods return errors.
type Gateway struct {
	advisor  Advisor
	policy   RetryPolicy
	log      *zap.SugaredLogger
	reporter Reporter
}

// GatewayOption customizes a Gateway.
type GatewayOption func(*Gateway)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) GatewayOption {
	return func(g *Gateway) { g.policy = p }
}

// WithLogger sets the gateway logger.
func WithLogger(log *zap.SugaredLogger) GatewayOption {
	return func(g *Gateway) { g.log = log }
}

// WithReporter sets where terminal failures are reported.
func WithReporter(r Reporter) GatewayOption {
	return func(g *Gateway) { g.reporter = r }
}

// NewGateway creates a Gateway around advisor. A nil advisor behaves like
// Unconfigured.
func NewGateway(advisor Advisor, opts ...GatewayOption) *Gateway {
	if advisor == nil {
		advisor = Unconfigured{}
	}
	g := &Gateway{
		advisor:  advisor,
		policy:   DefaultRetryPolicy(),
		log:      zap.NewNop().Sugar(),
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.policy.Log == nil {
		g.policy.Log = g.log
	}
	return g
}

// Plans requests budget plans. A terminal failure yields an empty plan list
// with the failure code as feedback so the caller can offer a retry.
func (g *Gateway) Plans(ctx context.Context, req PlanRequest) PlanResult {
	resp, err := Retry(ctx, g.policy, func(ctx context.Context) (PlanResponse, error) {
		return g.advisor.GeneratePlans(ctx, req)
	})
	if err != nil {
		code := g.fail(ctx, "plans", err)
		return PlanResult{Feedback: string(code), Plans: []models.BudgetPlan{}, Failure: code}
	}

	plans := resp.Plans
	if len(plans) > req.Count() {
		plans = plans[:req.Count()]
	}
	if plans == nil {
		plans = []models.BudgetPlan{}
	}
	return PlanResult{Feedback: strings.TrimSpace(resp.Feedback), Plans: plans}
}

// Advice requests up to MaxAdvice pieces of advice; failures yield none.
func (g *Gateway) Advice(ctx context.Context, req AdviceRequest) []string {
	advice, err := Retry(ctx, g.policy, func(ctx context.Context) ([]string, error) {
		return g.advisor.GenerateAdvice(ctx, req)
	})
	if err != nil {
		g.fail(ctx, "advice", err)
		return []string{}
	}

	out := make([]string, 0, MaxAdvice)
	for _, a := range advice {
		if a = strings.TrimSpace(a); a != "" && len(out) < MaxAdvice {
			out = append(out, a)
		}
	}
	return out
}

// Suggestions requests up to MaxSuggestions reactions to a transaction;
// failures yield none.
func (g *Gateway) Suggestions(ctx context.Context, req SuggestionRequest) []models.AISuggestion {
	suggestions, err := Retry(ctx, g.policy, func(ctx context.Context) ([]models.AISuggestion, error) {
		return g.advisor.GenerateSuggestions(ctx, req)
	})
	if err != nil {
		g.fail(ctx, "suggestions", err)
		return []models.AISuggestion{}
	}

	out := make([]models.AISuggestion, 0, MaxSuggestions)
	for _, s := range suggestions {
		if strings.TrimSpace(s.Text) == "" && s.Action == nil {
			continue
		}
		if len(out) == MaxSuggestions {
			break
		}
		out = append(out, s)
	}
	return out
}

// GoalImage renders a decorative image for a savings goal. The second
// result is false when no image could be produced.
func (g *Gateway) GoalImage(ctx context.Context, prompt string) (string, bool) {
	image, err := Retry(ctx, g.policy, func(ctx context.Context) (string, error) {
		return g.advisor.GenerateGoalImage(ctx, prompt)
	})
	if err != nil {
		g.fail(ctx, "goal_image", err)
		return "", false
	}
	return image, image != ""
}

func (g *Gateway) fail(ctx context.Context, call string, err error) FailureCode {
	code := Classify(err)
	if errors.Is(err, context.Canceled) {
		g.log.Debugw("advisory call canceled", "call", call)
		return code
	}
	if errors.Is(err, ErrNotConfigured) {
		g.log.Debugw("advisory service not configured", "call", call)
		return code
	}

	g.log.Errorw("advisory call failed", "call", call, "failure", code, "error", err)
	g.reporter.Report(ctx, call, code, err)
	return code
}
