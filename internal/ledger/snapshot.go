package ledger

import (
	"slices"

	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
)

// Snapshot is an immutable, point-in-time copy of the ledger. Callers may
// hold on to it freely; later mutations of the store never show through.
type Snapshot struct {
	Version      uint64               `json:"version"`
	Income       decimal.Decimal      `json:"income"`
	Buckets      []models.Bucket      `json:"buckets"`
	Transactions []models.Transaction `json:"transactions"`
}

// Bucket looks up a bucket by id.
func (s Snapshot) Bucket(id string) (models.Bucket, bool) {
	i := s.bucketIndex(id)
	if i < 0 {
		return models.Bucket{}, false
	}
	return s.Buckets[i], true
}

// HasBucket reports whether id resolves to a bucket in the snapshot.
func (s Snapshot) HasBucket(id string) bool {
	return s.bucketIndex(id) >= 0
}

// Transaction looks up a transaction by id.
func (s Snapshot) Transaction(id string) (models.Transaction, bool) {
	i := s.transactionIndex(id)
	if i < 0 {
		return models.Transaction{}, false
	}
	return s.Transactions[i], true
}

func (s Snapshot) bucketIndex(id string) int {
	return slices.IndexFunc(s.Buckets, func(b models.Bucket) bool { return b.ID == id })
}

func (s Snapshot) transactionIndex(id string) int {
	return slices.IndexFunc(s.Transactions, func(t models.Transaction) bool { return t.ID == id })
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Version:      s.Version,
		Income:       s.Income,
		Buckets:      slices.Clone(s.Buckets),
		Transactions: slices.Clone(s.Transactions),
	}
}
