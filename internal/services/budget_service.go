package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rafiqe/internal/advisory"
	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/ledger"
	"rafiqe/internal/metrics"
	"rafiqe/internal/models"
	"rafiqe/internal/onboarding"
	"rafiqe/internal/pagination"
	"rafiqe/internal/reconciler"
	"rafiqe/internal/store"
)

const saveTimeout = 5 * time.Second

// Defaults seed a ledger that has never been saved, and a reset one.
type Defaults struct {
	Income   decimal.Decimal
	Currency string
	Locale   models.Locale
}

// Options configures the budget service.
type Options struct {
	Repository     store.Repository
	Gateway        *advisory.Gateway
	Defaults       Defaults
	AdvisorEnabled bool
	Logger         *zap.SugaredLogger
}

// budgetService is the application controller. Its mutex guards the fields
// below it and is never held across an advisory call; the ledger and the
// onboarding machine carry their own locks.
type budgetService struct {
	ledger     *ledger.Store
	reconciler *reconciler.Reconciler
	machine    *onboarding.Machine
	gateway    *advisory.Gateway
	repo       store.Repository
	defaults   Defaults
	advisorOn  bool
	log        *zap.SugaredLogger

	baseCtx    context.Context
	cancelBase context.CancelFunc
	bg         sync.WaitGroup
	saveMu     sync.Mutex

	mu          sync.Mutex
	profile     models.UserProfile
	currency    models.Currency
	locale      models.Locale
	feedback    string
	planFailure advisory.FailureCode
	plans       []models.BudgetPlan
	advice      []string
	suggestions []models.AISuggestion
	planEpoch   uint64
	requests    map[requestKind]*request
	seq         uint64
}

// NewBudgetService restores the saved state, or starts from the defaults
// when nothing was saved yet.
func NewBudgetService(ctx context.Context, opts Options) (BudgetServicer, error) {
	if opts.Repository == nil {
		opts.Repository = store.NewMemoryRepository()
	}
	if opts.Gateway == nil {
		opts.Gateway = advisory.NewGateway(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	currency, ok := models.LookupCurrency(opts.Defaults.Currency)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "unsupported default currency "+opts.Defaults.Currency)
	}
	if !opts.Defaults.Locale.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "unsupported default locale "+string(opts.Defaults.Locale))
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &budgetService{
		ledger:      ledger.NewStore(opts.Defaults.Income),
		machine:     onboarding.NewMachine(onboarding.Uninitialized),
		gateway:     opts.Gateway,
		repo:        opts.Repository,
		defaults:    opts.Defaults,
		advisorOn:   opts.AdvisorEnabled,
		log:         opts.Logger,
		baseCtx:     baseCtx,
		cancelBase:  cancel,
		profile:     models.DefaultProfile(),
		currency:    currency,
		locale:      opts.Defaults.Locale,
		plans:       []models.BudgetPlan{},
		advice:      []string{},
		suggestions: []models.AISuggestion{},
		requests:    make(map[requestKind]*request),
	}
	s.reconciler = reconciler.New(s.ledger, s.log.Named("reconciler"))
	s.reconciler.OnSuggestionApplied(func(context.Context) { s.refreshAdviceAsync() })

	saved, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		if err := s.restore(*saved); err != nil {
			cancel()
			return nil, err
		}
		s.log.Infow("Restored saved budget", "phase", s.machine.Phase(), "version", s.ledger.Version())
	case errors.Is(err, apperrors.ErrNotFound):
		s.log.Infow("Starting a new budget", "currency", currency.Code, "locale", s.locale)
	default:
		cancel()
		return nil, err
	}

	return s, nil
}

func (s *budgetService) restore(saved store.State) error {
	if err := s.ledger.Restore(saved.Ledger); err != nil {
		return err
	}
	s.machine = onboarding.NewMachine(saved.Phase)

	if c, ok := models.LookupCurrency(saved.Currency); ok {
		s.currency = c
	}
	if saved.Locale.Valid() {
		s.locale = saved.Locale
	}
	s.profile = saved.Profile
	s.feedback = saved.Feedback
	if saved.Plans != nil {
		s.plans = saved.Plans
	}
	if s.machine.Phase() == onboarding.PlanError {
		s.planFailure = failureFromFeedback(saved.Feedback)
	}
	return nil
}

// failureFromFeedback recovers the failure code stored in place of feedback.
func failureFromFeedback(feedback string) advisory.FailureCode {
	if advisory.FailureCode(feedback) == advisory.FailureQuotaExceeded {
		return advisory.FailureQuotaExceeded
	}
	return advisory.FailureAPIError
}

// persist writes the current state through the repository. Failures are
// logged; the in-memory state stays authoritative.
func (s *budgetService) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	state := s.snapshotState()
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, state); err != nil {
		s.log.Errorw("Failed to save budget", "version", state.Ledger.Version, "error", err)
	}
}

func (s *budgetService) snapshotState() store.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.State{
		Ledger:   s.ledger.Snapshot(),
		Profile:  s.profile,
		Currency: s.currency.Code,
		Locale:   s.locale,
		Phase:    s.machine.Phase(),
		Feedback: s.feedback,
		Plans:    slices.Clone(s.plans),
	}
}

// State returns the full user-visible state.
func (s *budgetService) State() AppState {
	snap := s.ledger.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	return AppState{
		Phase:          s.machine.Phase(),
		Income:         snap.Income,
		Currency:       s.currency,
		Locale:         s.locale,
		Profile:        s.profile,
		Summary:        metrics.Summarize(snap),
		Buckets:        metrics.BucketsWithSpending(snap),
		Plans:          s.planStateLocked(),
		Advice:         slices.Clone(s.advice),
		Suggestions:    slices.Clone(s.suggestions),
		AdvisorEnabled: s.advisorOn,
	}
}

// Dashboard returns the budget overview with the filtered transaction list.
func (s *budgetService) Dashboard(filter metrics.Filter) Dashboard {
	snap := s.ledger.Snapshot()
	return Dashboard{
		Summary:      metrics.Summarize(snap),
		Buckets:      metrics.BucketsWithSpending(snap),
		Chart:        metrics.ChartDistribution(snap),
		Transactions: metrics.FilteredTransactions(snap, filter).Slice(),
		Advice:       s.Advice(),
	}
}

// SetIncome replaces the income. Once the budget is active, a changed
// income asks for a fresh plan that takes the previous income into account.
func (s *budgetService) SetIncome(ctx context.Context, income decimal.Decimal) (AppState, error) {
	previous := s.ledger.Income()
	if err := s.ledger.SetIncome(income); err != nil {
		return AppState{}, err
	}
	changed := !previous.Equal(income)
	if changed {
		s.bumpPlanEpoch()
	}
	s.persist(ctx)

	if changed && s.machine.IsActive() {
		s.log.Infow("Income changed, regenerating plan", "previous", previous.String(), "income", income.String())
		s.spawn(func(ctx context.Context) {
			s.generatePlans(ctx, planRun{previousIncome: &previous})
		})
	}
	return s.State(), nil
}

// UpdateSettings changes the display currency and/or the advisory locale.
// Both are validated before either is applied, so a rejected update changes
// nothing. Amounts are never converted.
func (s *budgetService) UpdateSettings(ctx context.Context, upd SettingsUpdate) (AppState, error) {
	var currency models.Currency
	if upd.Currency != nil {
		c, ok := models.LookupCurrency(*upd.Currency)
		if !ok {
			return AppState{}, apperrors.WithMessage(apperrors.ErrValidation, "unsupported currency "+*upd.Currency)
		}
		currency = c
	}
	if upd.Locale != nil && !upd.Locale.Valid() {
		return AppState{}, apperrors.WithMessage(apperrors.ErrValidation, "unsupported locale "+string(*upd.Locale))
	}

	s.mu.Lock()
	changed := false
	if upd.Currency != nil && s.currency.Code != currency.Code {
		s.currency = currency
		changed = true
	}
	if upd.Locale != nil && s.locale != *upd.Locale {
		s.locale = *upd.Locale
		changed = true
	}
	if changed {
		s.planEpoch++
	}
	s.mu.Unlock()

	if changed {
		s.persist(ctx)
	}
	return s.State(), nil
}

// AddBucket creates an empty bucket.
func (s *budgetService) AddBucket(ctx context.Context, name, icon string) (models.Bucket, error) {
	bucket, err := s.ledger.AddBucket(name, icon)
	if err != nil {
		return models.Bucket{}, err
	}
	s.persist(ctx)
	return bucket, nil
}

// UpdateBucketAllocation sets a bucket's allocation.
func (s *budgetService) UpdateBucketAllocation(ctx context.Context, id string, allocated decimal.Decimal) (models.Bucket, error) {
	bucket, err := s.ledger.UpdateBucketAllocation(id, allocated)
	if err != nil {
		return models.Bucket{}, err
	}
	s.persist(ctx)
	return bucket, nil
}

// DeleteBucket removes a bucket. Its transactions stay in the history.
func (s *budgetService) DeleteBucket(ctx context.Context, id string) error {
	if err := s.ledger.DeleteBucket(id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// RecordTransaction stores an expense, then asks for suggestions about it
// and refreshes advice in the background.
func (s *budgetService) RecordTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	tx, err := s.ledger.AddTransaction(in)
	if err != nil {
		return models.Transaction{}, err
	}
	s.persist(ctx)

	s.spawn(func(ctx context.Context) {
		s.reactToTransaction(ctx, tx)
	})
	return tx, nil
}

// UpdateTransaction edits an expense.
func (s *budgetService) UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (models.Transaction, error) {
	tx, err := s.ledger.UpdateTransaction(id, in)
	if err != nil {
		return models.Transaction{}, err
	}
	s.persist(ctx)
	return tx, nil
}

// DeleteTransaction removes an expense.
func (s *budgetService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.ledger.DeleteTransaction(id); err != nil {
		return err
	}
	s.persist(ctx)
	return nil
}

// ListTransactions returns one page of the filtered history, newest first.
func (s *budgetService) ListTransactions(filter metrics.Filter, page pagination.PageRequest) pagination.PageResponse[models.Transaction] {
	view := metrics.FilteredTransactions(s.ledger.Snapshot(), filter)
	return pagination.Page(view.Slice(), page)
}

// Reset wipes the budget and starts onboarding over.
func (s *budgetService) Reset(ctx context.Context) (AppState, error) {
	s.cancelAll()

	if err := s.ledger.Restore(ledger.Snapshot{Income: s.defaults.Income}); err != nil {
		return AppState{}, err
	}
	s.machine.Reset()

	currency, _ := models.LookupCurrency(s.defaults.Currency)
	s.mu.Lock()
	s.profile = models.DefaultProfile()
	s.currency = currency
	s.locale = s.defaults.Locale
	s.feedback = ""
	s.planFailure = advisory.FailureNone
	s.plans = []models.BudgetPlan{}
	s.advice = []string{}
	s.suggestions = []models.AISuggestion{}
	s.planEpoch++
	s.mu.Unlock()

	s.persist(ctx)
	s.log.Info("Budget reset")
	return s.State(), nil
}

// Close cancels in-flight advisory work and waits for background tasks.
func (s *budgetService) Close() {
	s.cancelBase()
	s.bg.Wait()
}

// spawn runs fn in the background until the service closes.
func (s *budgetService) spawn(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(s.baseCtx)
	}()
}

func (s *budgetService) bumpPlanEpoch() {
	s.mu.Lock()
	s.planEpoch++
	s.mu.Unlock()
}
