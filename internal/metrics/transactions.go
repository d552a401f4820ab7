package metrics

import (
	"iter"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"rafiqe/internal/ledger"
	"rafiqe/internal/models"
)

// AllBuckets is the bucket filter value that matches every transaction.
const AllBuckets = "all"

// Sort orders a filtered history.
type Sort string

const (
	SortDate   Sort = "date"
	SortAmount Sort = "amount"
)

// Valid reports whether s is empty or a known order.
func (s Sort) Valid() bool {
	return s == "" || s == SortDate || s == SortAmount
}

func (s Sort) comparator() func(a, b models.Transaction) int {
	if s == SortAmount {
		return ByAmountDesc
	}
	return ByDateDesc
}

// Filter selects transactions. Zero values match everything; nil bounds are
// unbounded and both bounds are inclusive. Sort defaults to SortDate.
type Filter struct {
	Search    string
	BucketID  string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Sort      Sort
}

func (f Filter) matches(tx models.Transaction) bool {
	if f.BucketID != "" && f.BucketID != AllBuckets && tx.BucketID != f.BucketID {
		return false
	}
	if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(tx.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// ByDateDesc orders the most recent transactions first.
func ByDateDesc(a, b models.Transaction) int {
	return b.Date.Compare(a.Date)
}

// ByAmountDesc orders the largest transactions first.
func ByAmountDesc(a, b models.Transaction) int {
	return b.Amount.Cmp(a.Amount)
}

// TransactionView is a lazily evaluated, filtered and ordered view over a
// snapshot's history. Nothing is computed until the view is iterated.
type TransactionView struct {
	source []models.Transaction
	filter Filter
	order  func(a, b models.Transaction) int
}

// FilteredTransactions returns the transactions matching f in f.Sort order,
// most recent first by default. The sort is stable, so ties keep their
// history order.
func FilteredTransactions(snap ledger.Snapshot, f Filter) TransactionView {
	return TransactionView{source: snap.Transactions, filter: f, order: f.Sort.comparator()}
}

// All iterates the view in order.
func (v TransactionView) All() iter.Seq[models.Transaction] {
	return func(yield func(models.Transaction) bool) {
		for _, tx := range v.evaluate() {
			if !yield(tx) {
				return
			}
		}
	}
}

// Slice materializes the view.
func (v TransactionView) Slice() []models.Transaction {
	out := v.evaluate()
	if out == nil {
		return []models.Transaction{}
	}
	return out
}

// Len counts the transactions in the view.
func (v TransactionView) Len() int {
	n := 0
	for _, tx := range v.source {
		if v.filter.matches(tx) {
			n++
		}
	}
	return n
}

func (v TransactionView) evaluate() []models.Transaction {
	var out []models.Transaction
	for _, tx := range v.source {
		if v.filter.matches(tx) {
			out = append(out, tx)
		}
	}
	if v.order != nil {
		slices.SortStableFunc(out, v.order)
	}
	return out
}
