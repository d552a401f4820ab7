package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single expense recorded against a bucket. BucketID may
// refer to a bucket that has since been deleted; such transactions are
// orphaned but still count toward total spending.
type Transaction struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	BucketID    string          `gorm:"not null;size:64;index" json:"bucket_id"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"size:255" json:"description"`
	Position    int             `gorm:"not null;default:0" json:"-"`
}

// TransactionInput carries the caller-supplied fields of a new or edited transaction.
type TransactionInput struct {
	BucketID    string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}
