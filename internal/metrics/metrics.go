// Package metrics derives every figure shown to the user from a ledger
// snapshot. All functions are pure: the same snapshot always yields the
// same result, and nothing here mutates or caches state.
package metrics

import (
	"github.com/shopspring/decimal"

	"rafiqe/internal/ledger"
	"rafiqe/internal/models"
)

// Summary bundles the headline metrics of a snapshot.
type Summary struct {
	Version        uint64          `json:"version"`
	Income         decimal.Decimal `json:"income"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	NetRemaining   decimal.Decimal `json:"net_remaining"`
	IsDeficit      bool            `json:"is_deficit"`
	OverAllocated  bool            `json:"over_allocated"`
	OrphanCount    int             `json:"orphan_count"`
}

// Summarize computes the headline metrics in one pass over the snapshot.
func Summarize(snap ledger.Snapshot) Summary {
	spent := TotalSpent(snap)
	allocated := TotalAllocated(snap)
	return Summary{
		Version:        snap.Version,
		Income:         snap.Income,
		TotalSpent:     spent,
		TotalAllocated: allocated,
		NetRemaining:   snap.Income.Sub(spent),
		IsDeficit:      spent.GreaterThan(snap.Income),
		OverAllocated:  allocated.GreaterThan(snap.Income),
		OrphanCount:    len(Orphans(snap)),
	}
}

// SpentPerBucket maps every existing bucket id to the sum of its
// transactions. Orphaned transactions are not attributed to any bucket.
func SpentPerBucket(snap ledger.Snapshot) map[string]decimal.Decimal {
	spent := make(map[string]decimal.Decimal, len(snap.Buckets))
	for _, b := range snap.Buckets {
		spent[b.ID] = decimal.Zero
	}
	for _, tx := range snap.Transactions {
		if total, ok := spent[tx.BucketID]; ok {
			spent[tx.BucketID] = total.Add(tx.Amount)
		}
	}
	return spent
}

// SpentForBucket returns the spending of one bucket. The second result is
// false when the id does not resolve to a bucket in the snapshot.
func SpentForBucket(snap ledger.Snapshot, bucketID string) (decimal.Decimal, bool) {
	if !snap.HasBucket(bucketID) {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, tx := range snap.Transactions {
		if tx.BucketID == bucketID {
			total = total.Add(tx.Amount)
		}
	}
	return total, true
}

// BucketsWithSpending decorates each bucket with its derived spending, in
// bucket order.
func BucketsWithSpending(snap ledger.Snapshot) []models.BucketWithSpending {
	spent := SpentPerBucket(snap)
	out := make([]models.BucketWithSpending, 0, len(snap.Buckets))
	for _, b := range snap.Buckets {
		s := spent[b.ID]
		out = append(out, models.BucketWithSpending{
			Bucket:    b,
			Spent:     s,
			Remaining: b.Allocated.Sub(s),
			Overspent: s.GreaterThan(b.Allocated),
		})
	}
	return out
}

// TotalSpent sums every transaction, orphaned ones included.
func TotalSpent(snap ledger.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range snap.Transactions {
		total = total.Add(tx.Amount)
	}
	return total
}

// TotalAllocated sums the allocated ceiling of every bucket.
func TotalAllocated(snap ledger.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, b := range snap.Buckets {
		total = total.Add(b.Allocated)
	}
	return total
}

// NetRemaining is income minus total spending. It may be negative.
func NetRemaining(snap ledger.Snapshot) decimal.Decimal {
	return snap.Income.Sub(TotalSpent(snap))
}

// IsDeficit reports whether spending strictly exceeds income.
func IsDeficit(snap ledger.Snapshot) bool {
	return TotalSpent(snap).GreaterThan(snap.Income)
}

// BucketOverspend reports whether a bucket's spending exceeds its
// allocation. Unknown buckets are never overspent.
func BucketOverspend(snap ledger.Snapshot, bucketID string) bool {
	b, ok := snap.Bucket(bucketID)
	if !ok {
		return false
	}
	spent, _ := SpentForBucket(snap, bucketID)
	return spent.GreaterThan(b.Allocated)
}

// Orphans returns the transactions whose bucket no longer exists, in
// history order.
func Orphans(snap ledger.Snapshot) []models.Transaction {
	var out []models.Transaction
	for _, tx := range snap.Transactions {
		if !snap.HasBucket(tx.BucketID) {
			out = append(out, tx)
		}
	}
	return out
}
