package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"rafiqe/internal/ledger"
	"rafiqe/internal/models"

	"github.com/shopspring/decimal"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewTestStore creates a ledger store with the given income.
func NewTestStore(t *testing.T, income int64) *ledger.Store {
	t.Helper()
	return ledger.NewStore(decimal.NewFromInt(income))
}

// CreateTestBucket adds a bucket with a unique name and the given allocation.
func CreateTestBucket(t *testing.T, store *ledger.Store, allocated int64) models.Bucket {
	t.Helper()

	bucket, err := store.AddBucket(fmt.Sprintf("Test Bucket %d", nextID()), "🧪")
	if err != nil {
		t.Fatalf("failed to create test bucket: %v", err)
	}
	if allocated != 0 {
		bucket, err = store.UpdateBucketAllocation(bucket.ID, decimal.NewFromInt(allocated))
		if err != nil {
			t.Fatalf("failed to allocate test bucket: %v", err)
		}
	}
	return bucket
}

// CreateTestTransaction records an expense against bucketID.
func CreateTestTransaction(t *testing.T, store *ledger.Store, bucketID string, amount int64) models.Transaction {
	t.Helper()

	tx, err := store.AddTransaction(models.TransactionInput{
		BucketID:    bucketID,
		Amount:      decimal.NewFromInt(amount),
		Date:        time.Now().UTC(),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
	})
	if err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// TestPlan builds a valid plan with one bucket per percent.
func TestPlan(id string, percents ...int64) models.BudgetPlan {
	plan := models.BudgetPlan{ID: id, Title: "Plan " + id, Description: "test plan"}
	for i, p := range percents {
		plan.Buckets = append(plan.Buckets, models.PlanBucket{
			ID:      fmt.Sprintf("%s-b%d", id, i),
			Name:    fmt.Sprintf("Bucket %d", i),
			Icon:    "📦",
			Percent: decimal.NewFromInt(p),
		})
	}
	return plan
}
