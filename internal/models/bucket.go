package models

import "github.com/shopspring/decimal"

// DefaultBucketColor is the color given to buckets created by hand.
const DefaultBucketColor = "#333"

// Bucket is a named spending envelope. Spending is never stored on the
// bucket; it is always derived from the transaction history.
type Bucket struct {
	ID                 string          `gorm:"primaryKey;size:64" json:"id"`
	Name               string          `gorm:"not null;size:100" json:"name"`
	Icon               string          `gorm:"size:32" json:"icon"`
	Allocated          decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"allocated"`
	RecommendedPercent decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"recommended_percent"`
	Color              string          `gorm:"size:16" json:"color"`
	Position           int             `gorm:"not null;default:0" json:"-"`
}

// BucketWithSpending is a bucket decorated with its derived spending figures.
type BucketWithSpending struct {
	Bucket
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Overspent bool            `json:"overspent"`
}
