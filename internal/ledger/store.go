// Package ledger owns the authoritative budget state: income, buckets and
// the transaction history. Every mutation is validated first and applied
// atomically; a rejected mutation leaves the ledger untouched.
package ledger

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "rafiqe/internal/errors"
	"rafiqe/internal/models"
	"rafiqe/internal/uuid"
)

// Store is the single source of truth for the ledger. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	state Snapshot

	newID func() string
	now   func() time.Time
}

// NewStore creates an empty ledger with the given income.
func NewStore(income decimal.Decimal) *Store {
	return &Store{
		state: Snapshot{
			Income:       income,
			Buckets:      []models.Bucket{},
			Transactions: []models.Transaction{},
		},
		newID: uuid.New,
		now:   time.Now,
	}
}

// Snapshot returns a copy of the current ledger state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Version
}

// Income returns the declared income.
func (s *Store) Income() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Income
}

// Restore replaces the whole ledger with a previously taken snapshot.
// The version keeps counting upward so that observers of the old state
// can tell it has been superseded.
func (s *Store) Restore(snap Snapshot) error {
	if snap.Income.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrValidation, "income must not be negative")
	}
	if err := validateBuckets(snap.Buckets); err != nil {
		return err
	}
	if err := validateTransactions(snap.Transactions); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := snap.clone()
	if next.Buckets == nil {
		next.Buckets = []models.Bucket{}
	}
	if next.Transactions == nil {
		next.Transactions = []models.Transaction{}
	}
	next.Version = max(s.state.Version, snap.Version) + 1
	s.state = next
	return nil
}

// SetIncome replaces the declared income.
func (s *Store) SetIncome(income decimal.Decimal) error {
	if err := validateMoney("income", income); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Income = income
	s.state.Version++
	return nil
}

// AddBucket creates a bucket with no allocation.
func (s *Store) AddBucket(name, icon string) (models.Bucket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Bucket{}, apperrors.WithMessage(apperrors.ErrValidation, "bucket name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := models.Bucket{
		ID:                 s.newID(),
		Name:               name,
		Icon:               icon,
		Allocated:          decimal.Zero,
		RecommendedPercent: decimal.Zero,
		Color:              models.DefaultBucketColor,
	}
	s.state.Buckets = append(slices.Clone(s.state.Buckets), bucket)
	s.state.Version++
	return bucket, nil
}

// UpdateBucketAllocation sets a bucket's allocated ceiling.
func (s *Store) UpdateBucketAllocation(id string, allocated decimal.Decimal) (models.Bucket, error) {
	if err := validateMoney("allocation", allocated); err != nil {
		return models.Bucket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.bucketIndex(id)
	if i < 0 {
		return models.Bucket{}, apperrors.ErrBucketNotFound
	}

	buckets := slices.Clone(s.state.Buckets)
	buckets[i].Allocated = allocated
	s.state.Buckets = buckets
	s.state.Version++
	return buckets[i], nil
}

// DeleteBucket removes a bucket. Transactions that referenced it are kept
// and become orphaned.
func (s *Store) DeleteBucket(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.bucketIndex(id)
	if i < 0 {
		return apperrors.ErrBucketNotFound
	}

	s.state.Buckets = slices.Delete(slices.Clone(s.state.Buckets), i, i+1)
	s.state.Version++
	return nil
}

// ReplaceBuckets swaps in a whole new bucket set.
func (s *Store) ReplaceBuckets(buckets []models.Bucket) error {
	if err := validateBuckets(buckets); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Buckets = slices.Clone(buckets)
	s.state.Version++
	return nil
}

// ModifyBuckets runs fn against a copy of the bucket set while holding the
// write lock, so the read and the write cannot interleave with other
// mutations. fn reports whether it changed anything; unchanged results are
// not installed and do not bump the version.
func (s *Store) ModifyBuckets(fn func(buckets []models.Bucket, income decimal.Decimal) ([]models.Bucket, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(slices.Clone(s.state.Buckets), s.state.Income)
	if !changed {
		return nil
	}
	if err := validateBuckets(next); err != nil {
		return err
	}

	s.state.Buckets = next
	s.state.Version++
	return nil
}

// AddTransaction records a new expense at the head of the history.
func (s *Store) AddTransaction(in models.TransactionInput) (models.Transaction, error) {
	if err := validateTransactionInput(in); err != nil {
		return models.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasBucket(in.BucketID) {
		return models.Transaction{}, apperrors.ErrBucketNotFound
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := models.Transaction{
		ID:          s.newID(),
		BucketID:    in.BucketID,
		Amount:      in.Amount,
		Date:        date.UTC(),
		Description: strings.TrimSpace(in.Description),
	}
	s.state.Transactions = slices.Insert(slices.Clone(s.state.Transactions), 0, tx)
	s.state.Version++
	return tx, nil
}

// UpdateTransaction edits a transaction in place, keeping its position in
// the history. An orphaned transaction may keep its dangling bucket
// reference; moving it to another bucket requires that bucket to exist.
func (s *Store) UpdateTransaction(id string, in models.TransactionInput) (models.Transaction, error) {
	if err := validateTransactionInput(in); err != nil {
		return models.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.transactionIndex(id)
	if i < 0 {
		return models.Transaction{}, apperrors.ErrTransactionNotFound
	}

	current := s.state.Transactions[i]
	if in.BucketID != current.BucketID && !s.state.HasBucket(in.BucketID) {
		return models.Transaction{}, apperrors.ErrBucketNotFound
	}

	date := in.Date
	if date.IsZero() {
		date = current.Date
	}

	txs := slices.Clone(s.state.Transactions)
	txs[i] = models.Transaction{
		ID:          current.ID,
		BucketID:    in.BucketID,
		Amount:      in.Amount,
		Date:        date.UTC(),
		Description: strings.TrimSpace(in.Description),
	}
	s.state.Transactions = txs
	s.state.Version++
	return txs[i], nil
}

// DeleteTransaction removes a transaction from the history.
func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.transactionIndex(id)
	if i < 0 {
		return apperrors.ErrTransactionNotFound
	}

	s.state.Transactions = slices.Delete(slices.Clone(s.state.Transactions), i, i+1)
	s.state.Version++
	return nil
}

func validateTransactionInput(in models.TransactionInput) error {
	if !in.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrValidation, "amount must be greater than zero")
	}
	if !models.WithinMoneyScale(in.Amount) {
		return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("amount must have at most %d decimal places", models.MoneyScale))
	}
	if strings.TrimSpace(in.BucketID) == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "bucket is required")
	}
	return nil
}

func validateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrValidation, field+" must not be negative")
	}
	if !models.WithinMoneyScale(d) {
		return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("%s must have at most %d decimal places", field, models.MoneyScale))
	}
	return nil
}

// validateTransactions checks restored history. Orphaned bucket references
// are allowed; a missing id or a non-positive amount is not.
func validateTransactions(txs []models.Transaction) error {
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			return apperrors.WithMessage(apperrors.ErrValidation, "transaction id is required")
		}
		if _, dup := seen[tx.ID]; dup {
			return apperrors.WithMessage(apperrors.ErrValidation, "duplicate transaction id "+tx.ID)
		}
		seen[tx.ID] = struct{}{}
		if !tx.Amount.IsPositive() {
			return apperrors.WithMessage(apperrors.ErrValidation, "transaction "+tx.ID+" has a non-positive amount")
		}
	}
	return nil
}

func validateBuckets(buckets []models.Bucket) error {
	seen := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		if b.ID == "" {
			return apperrors.WithMessage(apperrors.ErrValidation, "bucket id is required")
		}
		if _, dup := seen[b.ID]; dup {
			return apperrors.WithMessage(apperrors.ErrValidation, "duplicate bucket id "+b.ID)
		}
		seen[b.ID] = struct{}{}
		if strings.TrimSpace(b.Name) == "" {
			return apperrors.WithMessage(apperrors.ErrValidation, "bucket name is required")
		}
		if b.Allocated.IsNegative() {
			return apperrors.WithMessage(apperrors.ErrValidation, "allocation must not be negative")
		}
	}
	return nil
}
