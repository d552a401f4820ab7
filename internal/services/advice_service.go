package services

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"rafiqe/internal/advisory"
	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/metrics"
	"rafiqe/internal/models"
)

// Advice returns the latest advice.
func (s *budgetService) Advice() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.advice)
}

// RefreshAdvice asks for fresh advice and waits for it. Advice is only
// available once onboarding is complete.
func (s *budgetService) RefreshAdvice(ctx context.Context) ([]string, error) {
	if !s.machine.IsActive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "advice is available once the budget is active")
	}
	if advice, ok := s.fetchAdvice(ctx); ok {
		return advice, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Advice(), nil
}

// refreshAdviceAsync refreshes advice in the background when the budget is
// active.
func (s *budgetService) refreshAdviceAsync() {
	if !s.machine.IsActive() {
		return
	}
	s.spawn(func(ctx context.Context) {
		s.fetchAdvice(ctx)
	})
}

// fetchAdvice runs one cancel-and-replace advice request and stores the
// result. It reports false when the result was discarded.
func (s *budgetService) fetchAdvice(parent context.Context) ([]string, bool) {
	ctx, seq := s.begin(parent, adviceRequest)
	defer s.finish(adviceRequest, seq)

	advice := s.gateway.Advice(ctx, s.adviceRequest())

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || !s.currentLocked(adviceRequest, seq) {
		s.log.Debugw("Discarding superseded advice", "seq", seq)
		return nil, false
	}
	s.advice = advice
	s.endLocked(adviceRequest, seq)
	return slices.Clone(advice), true
}

func (s *budgetService) adviceRequest() advisory.AdviceRequest {
	snap := s.ledger.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	return advisory.AdviceRequest{
		Profile:  s.profile,
		Income:   snap.Income,
		Buckets:  metrics.BucketsWithSpending(snap),
		Currency: s.currency,
		Locale:   s.locale,
	}
}

// reactToTransaction fetches suggestions about a new transaction and, when
// the budget is active, refreshes advice at the same time.
func (s *budgetService) reactToTransaction(ctx context.Context, tx models.Transaction) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.fetchSuggestions(gctx, tx)
		return nil
	})
	if s.machine.IsActive() {
		g.Go(func() error {
			s.fetchAdvice(gctx)
			return nil
		})
	}
	_ = g.Wait()
}

// fetchSuggestions runs one cancel-and-replace suggestion request. A newer
// transaction supersedes the suggestions of an older one.
func (s *budgetService) fetchSuggestions(parent context.Context, tx models.Transaction) {
	ctx, seq := s.begin(parent, suggestionRequest)
	defer s.finish(suggestionRequest, seq)

	snap := s.ledger.Snapshot()
	s.mu.Lock()
	req := advisory.SuggestionRequest{
		Transaction: tx,
		Buckets:     metrics.BucketsWithSpending(snap),
		Income:      snap.Income,
		Profile:     s.profile,
		Currency:    s.currency,
		Locale:      s.locale,
	}
	s.mu.Unlock()

	suggestions := s.gateway.Suggestions(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || !s.currentLocked(suggestionRequest, seq) {
		s.log.Debugw("Discarding superseded suggestions", "transaction_id", tx.ID, "seq", seq)
		return
	}
	s.suggestions = suggestions
	s.endLocked(suggestionRequest, seq)
}

// Suggestions returns the suggestions about the latest transaction.
func (s *budgetService) Suggestions() []models.AISuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.suggestions)
}

// ApplySuggestion applies the action of the suggestion at index and removes
// it from the list. Actions whose buckets no longer exist change nothing.
func (s *budgetService) ApplySuggestion(ctx context.Context, index int) (bool, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.suggestions) {
		s.mu.Unlock()
		return false, apperrors.ErrSuggestionNotFound
	}
	suggestion := s.suggestions[index]
	s.mu.Unlock()

	if suggestion.Action == nil {
		return false, apperrors.WithMessage(apperrors.ErrValidation, "suggestion has no action to apply")
	}

	changed, err := s.reconciler.ApplySuggestionAction(ctx, suggestion.Action)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if i := slices.IndexFunc(s.suggestions, func(sg models.AISuggestion) bool { return sameSuggestion(sg, suggestion) }); i >= 0 {
		s.suggestions = slices.Delete(slices.Clone(s.suggestions), i, i+1)
	}
	s.mu.Unlock()

	if changed {
		s.persist(ctx)
	}
	return changed, nil
}

func sameSuggestion(a, b models.AISuggestion) bool {
	if a.Text != b.Text {
		return false
	}
	pa, pb := models.PayloadOf(a.Action), models.PayloadOf(b.Action)
	if pa == nil || pb == nil {
		return pa == pb
	}
	return pa.Type == pb.Type && pa.FromID == pb.FromID && pa.ToID == pb.ToID && pa.TargetBucketID == pb.TargetBucketID
}

// DismissSuggestions clears the suggestion list.
func (s *budgetService) DismissSuggestions(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = []models.AISuggestion{}
}

// GenerateGoalImage renders a picture of a savings goal. The picture is
// decorative: when the service cannot provide one the result is empty.
func (s *budgetService) GenerateGoalImage(ctx context.Context, goal string) (string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "goal must not be empty")
	}
	img, ok := s.gateway.GoalImage(ctx, goal)
	if !ok {
		return "", nil
	}
	return img, nil
}
